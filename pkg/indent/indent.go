// Copyright 2015 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package indent prefixes every line of written text with a fixed string,
// used by cmd/gestaltctl's tree-dump output.
package indent

import (
	"bytes"
	"io"
)

// String prefixes every line of s with prefix.
func String(prefix, s string) string {
	return string(Bytes([]byte(prefix), []byte(s)))
}

// Bytes prefixes every line of b with prefix.
func Bytes(prefix, b []byte) []byte {
	var buf bytes.Buffer
	atBOL := true
	for _, c := range b {
		if atBOL {
			buf.Write(prefix)
			atBOL = false
		}
		buf.WriteByte(c)
		if c == '\n' {
			atBOL = true
		}
	}
	return buf.Bytes()
}

// writer implements io.Writer, prefixing every line written to out with
// prefix. Its Write expands the whole argument slice into one prefixed
// buffer and issues a single underlying write, so a short underlying write
// is attributed back to however many whole input bytes it covers.
type writer struct {
	out    io.Writer
	prefix []byte
	atBOL  bool
}

// NewWriter returns an io.Writer that copies to out, prefixing every line
// with prefix.
func NewWriter(out io.Writer, prefix string) io.Writer {
	return &writer{out: out, prefix: []byte(prefix), atBOL: true}
}

func (w *writer) Write(p []byte) (int, error) {
	var buf bytes.Buffer
	// positions[i] is the index into p that produced buf's i'th byte, or -1
	// if that byte belongs to an inserted prefix.
	positions := make([]int, 0, len(p)+len(w.prefix)*2)
	atBOL := w.atBOL
	for i, c := range p {
		if atBOL {
			buf.Write(w.prefix)
			for range w.prefix {
				positions = append(positions, -1)
			}
			atBOL = false
		}
		buf.WriteByte(c)
		positions = append(positions, i)
		if c == '\n' {
			atBOL = true
		}
	}

	out := buf.Bytes()
	wn, err := w.out.Write(out)
	if wn > len(out) {
		wn = len(out)
	}
	if wn < 0 {
		wn = 0
	}

	n := 0
	for i := 0; i < wn; i++ {
		if positions[i] != -1 {
			n = positions[i] + 1
		}
	}
	if wn == len(out) {
		w.atBOL = atBOL
	}
	return n, err
}
