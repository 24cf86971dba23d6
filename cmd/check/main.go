// Copyright 2015, David Howden
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
The check tool parses every audio file under a directory tree and reports
decoding errors and (optionally) duplicate-audio hash collisions.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tag "github.com/hvianna/music-metadata"
)

var path string
var sum bool

func init() {
	flag.StringVar(&path, "path", "", "path to directory containing audio files")
	flag.BoolVar(&sum, "sum", false, "compute the audio-content checksum of each file, to find duplicates")
}

func main() {
	flag.Parse()

	if path == "" {
		fmt.Println("you must specify -path")
		flag.Usage()
		os.Exit(1)
	}

	p := &processor{
		decodingErrors: make(map[string]int),
		hashErrors:     make(map[string]int),
		hashes:         make(map[string]int),
	}

	done := make(chan bool)
	go func() {
		p.do(walkPath(path))
		fmt.Println(p)
		close(done)
	}()
	<-done
}

func walkPath(root string) <-chan string {
	ch := make(chan string)
	fn := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ch <- path
		return nil
	}

	go func() {
		err := filepath.Walk(root, fn)
		if err != nil {
			fmt.Println(err)
		}
		close(ch)
	}()
	return ch
}

type processor struct {
	decodingErrors map[string]int
	hashErrors     map[string]int
	hashes         map[string]int
}

func (p *processor) String() string {
	result := ""
	for k, v := range p.decodingErrors {
		result += fmt.Sprintf("%v : %v\n", k, v)
	}
	for k, v := range p.hashErrors {
		result += fmt.Sprintf("%v : %v\n", k, v)
	}
	for k, v := range p.hashes {
		if v > 1 {
			result += fmt.Sprintf("duplicate audio hash %v : %v files\n", k, v)
		}
	}
	return result
}

func (p *processor) do(ch <-chan string) {
	for path := range ch {
		func() {
			defer func() {
				if r := recover(); r != nil {
					fmt.Printf("Panicing at: %v\n", path)
					panic(r)
				}
			}()
			tf, err := os.Open(path)
			if err != nil {
				p.decodingErrors["error opening file"]++
				return
			}
			defer tf.Close()

			b, err := os.ReadFile(path)
			if err != nil {
				p.decodingErrors["error reading file"]++
				return
			}
			if _, err := tag.ParseFromBuffer(b, tag.Options{FileSize: int64(len(b))}); err != nil {
				fmt.Println("PARSE:", path, err.Error())
				p.decodingErrors[err.Error()]++
			}

			if sum {
				if _, err := tf.Seek(0, os.SEEK_SET); err != nil {
					fmt.Println("DIED:", path, "error seeking back to 0:", err)
					return
				}
				h, err := tag.Sum(tf)
				if err != nil {
					fmt.Println("SUM:", path, err.Error())
					p.hashErrors[err.Error()]++
					return
				}
				p.hashes[h]++
			}
		}()
	}
}
