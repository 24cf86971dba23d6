// Copyright 2015, David Howden
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
The tag tool reads metadata from media files (as supported by the tag library).
*/
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	tag "github.com/hvianna/music-metadata"
	"github.com/hvianna/music-metadata/mbz"
)

var raw bool
var extractMBZ bool

var usage = func() {
	fmt.Fprintf(os.Stderr, "usage: %s [optional flags] filename\n", os.Args[0])
	flag.PrintDefaults()
}

func init() {
	flag.BoolVar(&raw, "raw", false, "show raw tag data")
	flag.BoolVar(&extractMBZ, "mbz", false, "extract MusicBrainz tag data (if available)")

	flag.Usage = usage
}

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		return
	}

	b, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Printf("error loading file: %v", err)
		return
	}

	res, err := tag.ParseFromBuffer(b, tag.Options{Native: raw, FileSize: int64(len(b))})
	if err != nil {
		fmt.Printf("error reading file: %v\n", err)
		return
	}

	printMetadata(res)

	if raw {
		fmt.Println()
		fmt.Println()

		for id, values := range tag.OrderTags(res) {
			for _, v := range values {
				fmt.Printf("%#v: %#v\n", id, v.AsInterface())
			}
		}
	}

	if extractMBZ {
		b, err := json.MarshalIndent(mbz.Extract(res.Common), "", "  ")
		if err != nil {
			fmt.Printf("error marshalling MusicBrainz info: %v\n", err)
			return
		}

		fmt.Printf("\nMusicBrainz Info:\n%v\n", string(b))
	}
}

func printMetadata(res *tag.Result) {
	fmt.Printf("Container: %v\n", res.Format.Container)
	fmt.Printf("Tag Systems: %v\n", res.Format.TagSystems)

	v := res.Common
	fmt.Printf(" Title: %v\n", v.Title)
	fmt.Printf(" Album: %v\n", v.Album)
	fmt.Printf(" Artist: %v\n", v.Artist)
	fmt.Printf(" Composer: %v\n", v.Composer)
	fmt.Printf(" Genre: %v\n", v.Genre)
	fmt.Printf(" Year: %v\n", v.Year)

	fmt.Printf(" Track: %v of %v\n", v.Track.No, v.Track.Of)
	fmt.Printf(" Disc: %v of %v\n", v.Disk.No, v.Disk.Of)

	fmt.Printf(" Pictures: %v\n", len(v.Picture))
	fmt.Printf(" Lyrics: %v\n", v.Lyrics)
}
