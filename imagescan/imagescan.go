// Copyright 2025 The bgesav authors
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

// Package imagescan locates JPEG streams embedded in byte strings and
// decodes them. Save payloads store screenshots and portraits as raw JPEG
// data concatenated inside CBOR byte-string leaves.
package imagescan

import (
	"bytes"
	"image"

	"github.com/gen2brain/jpegn"
)

var (
	jpegStart = []byte{0xff, 0xd8}
	jpegEnd   = []byte{0xff, 0xd9}
)

// Candidate is one located JPEG stream. Image is nil and Err is set when
// the stream failed to decode; a failed candidate does not affect the
// extraction of later ones
type Candidate struct {
	Offset int
	Data   []byte
	Image  image.Image
	Err    error
}

// Scan locates candidate JPEG streams without decoding them. Candidates
// are non-overlapping, leftmost-first: scanning resumes immediately after
// each matched end marker. A start marker with no end marker after it is
// not a candidate
func Scan(data []byte) []Candidate {
	var found []Candidate
	pos := 0
	for {
		start := bytes.Index(data[pos:], jpegStart)
		if start < 0 {
			break
		}
		start += pos
		end := bytes.Index(data[start+len(jpegStart):], jpegEnd)
		if end < 0 {
			break
		}
		end += start + len(jpegStart) + len(jpegEnd)
		found = append(found, Candidate{
			Offset: start,
			Data:   data[start:end],
		})
		pos = end
	}
	return found
}

// Extract scans for JPEG streams and decodes each in place. Decode
// failures are recorded per candidate. An empty result means the byte
// string holds no image and should be displayed as hex instead
func Extract(data []byte) []Candidate {
	candidates := Scan(data)
	for i := range candidates {
		img, err := jpegn.Decode(bytes.NewReader(candidates[i].Data))
		if err != nil {
			candidates[i].Err = err
			continue
		}
		candidates[i].Image = img
	}
	return candidates
}
