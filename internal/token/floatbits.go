package token

import "math"

func uint32ToFloat32(bits uint32) float32 { return math.Float32frombits(bits) }

func uint64ToFloat64(bits uint64) float64 { return math.Float64frombits(bits) }
