package format

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Facts holds the format-level, "is it audio" properties of a parsed file,
// as opposed to the (possibly absent) metadata tags describing the work.
// Each field is set at most once per parse: the first assignment wins and
// any later assignment is ignored (see setOnce). A later assignment with a
// differing value is dropped silently; no warning is recorded for it.
type Facts struct {
	Container   Container
	TagSystems  []TagSystem
	Duration    float64 // seconds
	Bitrate     int     // bits/s
	SampleRate  int     // Hz
	BitsPerSample int
	NumChannels int
	NumSamples  uint64 // frames
	Codec       string
	CodecProfile string
	Tool        string // encoder identification
	Lossless    bool
	AudioMD5    [16]byte

	set map[string]bool
}

// AddTagSystem records the presence of a tag system, ignoring duplicates.
func (f *Facts) AddTagSystem(ts TagSystem) {
	for _, existing := range f.TagSystems {
		if existing == ts {
			return
		}
	}
	f.TagSystems = append(f.TagSystems, ts)
}

// setOnce records that field has now been assigned, returning true if this
// is the first assignment (the caller should keep the new value) or false
// if a value was already present (the caller must keep the existing value).
func (f *Facts) setOnce(field string) (first bool) {
	if f.set == nil {
		f.set = make(map[string]bool)
	}
	first = !f.set[field]
	f.set[field] = true
	return first
}

// SetDuration assigns Duration if unset, reporting whether it changed the
// observable value.
func (f *Facts) SetDuration(v float64) bool {
	if !f.setOnce("duration") {
		return false
	}
	f.Duration = v
	return true
}

// SetBitrate assigns Bitrate if unset.
func (f *Facts) SetBitrate(v int) bool {
	if !f.setOnce("bitrate") {
		return false
	}
	f.Bitrate = v
	return true
}

// SetSampleRate assigns SampleRate if unset.
func (f *Facts) SetSampleRate(v int) bool {
	if !f.setOnce("sampleRate") {
		return false
	}
	f.SampleRate = v
	return true
}

// SetBitsPerSample assigns BitsPerSample if unset.
func (f *Facts) SetBitsPerSample(v int) bool {
	if !f.setOnce("bitsPerSample") {
		return false
	}
	f.BitsPerSample = v
	return true
}

// SetNumChannels assigns NumChannels if unset.
func (f *Facts) SetNumChannels(v int) bool {
	if !f.setOnce("numChannels") {
		return false
	}
	f.NumChannels = v
	return true
}

// SetNumSamples assigns NumSamples if unset.
func (f *Facts) SetNumSamples(v uint64) bool {
	if !f.setOnce("numSamples") {
		return false
	}
	f.NumSamples = v
	return true
}

// SetCodec assigns Codec if unset.
func (f *Facts) SetCodec(v string) bool {
	if !f.setOnce("codec") {
		return false
	}
	f.Codec = v
	return true
}

// SetCodecProfile assigns CodecProfile if unset.
func (f *Facts) SetCodecProfile(v string) bool {
	if !f.setOnce("codecProfile") {
		return false
	}
	f.CodecProfile = v
	return true
}

// SetTool assigns Tool if unset.
func (f *Facts) SetTool(v string) bool {
	if !f.setOnce("tool") {
		return false
	}
	f.Tool = v
	return true
}

// SetLossless assigns Lossless if unset.
func (f *Facts) SetLossless(v bool) bool {
	if !f.setOnce("lossless") {
		return false
	}
	f.Lossless = v
	return true
}

// SetAudioMD5 assigns AudioMD5 if unset (and non-zero).
func (f *Facts) SetAudioMD5(v [16]byte) bool {
	if v == ([16]byte{}) {
		return false
	}
	if !f.setOnce("audioMD5") {
		return false
	}
	f.AudioMD5 = v
	return true
}

// DeriveDuration fills Duration from NumSamples/SampleRate when both are
// known and Duration is still unset, falling back to fileSize*8/Bitrate,
// per the spec's duration-fallback design note.
func (f *Facts) DeriveDuration(fileSize int64) {
	if f.set != nil && f.set["duration"] {
		return
	}
	if f.NumSamples > 0 && f.SampleRate > 0 {
		f.SetDuration(float64(f.NumSamples) / float64(f.SampleRate))
		return
	}
	if fileSize > 0 && f.Bitrate > 0 {
		f.SetDuration(float64(fileSize) * 8 / float64(f.Bitrate))
	}
}

// String renders a one-line summary of the format facts, using
// go-humanize's thousands separators, e.g.
// "mpeg: MPEG 1 Layer 3, 44,100 Hz, 2 ch, 128,000 bps (00:03:42)".
func (f *Facts) String() string {
	secs := int64(f.Duration)
	return fmt.Sprintf("%s: %s, %s Hz, %d ch, %s bps (%02d:%02d:%02d)",
		f.Container, f.Codec, humanize.Comma(int64(f.SampleRate)),
		f.NumChannels, humanize.Comma(int64(f.Bitrate)),
		secs/3600, (secs/60)%60, secs%60)
}
