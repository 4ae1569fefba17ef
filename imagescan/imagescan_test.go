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

package imagescan_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/savetools/bgesav/imagescan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeTestJpeg produces a real JPEG stream of the given size
func encodeTestJpeg(t *testing.T, w int, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 0x80, G: 0x40, B: 0x20, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestScan(t *testing.T) {
	testDefs := []struct {
		name            string
		data            []byte
		expectedOffsets []int
		expectedSizes   []int
	}{
		{
			name: "two streams left to right",
			data: []byte{
				0xff, 0xd8, 0xaa, 0xbb, 0xff, 0xd9,
				0xff, 0xd8, 0xcc, 0xff, 0xd9,
			},
			expectedOffsets: []int{0, 6},
			expectedSizes:   []int{6, 5},
		},
		{
			name:            "no start marker",
			data:            []byte{0x00, 0x01, 0xff, 0xd9},
			expectedOffsets: nil,
			expectedSizes:   nil,
		},
		{
			name:            "start marker without end marker",
			data:            []byte{0xff, 0xd8, 0x01, 0x02},
			expectedOffsets: nil,
			expectedSizes:   nil,
		},
		{
			name:            "empty input",
			data:            nil,
			expectedOffsets: nil,
			expectedSizes:   nil,
		},
		{
			// A second start marker inside a stream belongs to that
			// stream; scanning resumes after the end marker
			name: "nested start marker",
			data: []byte{
				0xff, 0xd8, 0xff, 0xd8, 0xff, 0xd9,
			},
			expectedOffsets: []int{0},
			expectedSizes:   []int{6},
		},
		{
			name: "surrounding garbage",
			data: []byte{
				0x10, 0x20, 0xff, 0xd8, 0x00, 0xff, 0xd9, 0x30,
			},
			expectedOffsets: []int{2},
			expectedSizes:   []int{5},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			found := imagescan.Scan(testDef.data)
			require.Len(t, found, len(testDef.expectedOffsets))
			for i, candidate := range found {
				assert.Equal(t, testDef.expectedOffsets[i], candidate.Offset)
				assert.Len(t, candidate.Data, testDef.expectedSizes[i])
			}
		})
	}
}

func TestExtractDecodesRealStreams(t *testing.T) {
	first := encodeTestJpeg(t, 8, 8)
	second := encodeTestJpeg(t, 16, 4)
	data := append(append([]byte{}, first...), second...)

	candidates := imagescan.Extract(data)
	require.Len(t, candidates, 2)

	require.NoError(t, candidates[0].Err)
	require.NotNil(t, candidates[0].Image)
	assert.Equal(t, 8, candidates[0].Image.Bounds().Dx())
	assert.Equal(t, 8, candidates[0].Image.Bounds().Dy())

	require.NoError(t, candidates[1].Err)
	require.NotNil(t, candidates[1].Image)
	assert.Equal(t, 16, candidates[1].Image.Bounds().Dx())
	assert.Equal(t, 4, candidates[1].Image.Bounds().Dy())
}

func TestExtractIsolatesDecodeFailures(t *testing.T) {
	valid := encodeTestJpeg(t, 8, 8)
	// A marker pair around garbage scans as a candidate but fails decode
	garbage := []byte{0xff, 0xd8, 0x00, 0x01, 0x02, 0xff, 0xd9}
	data := append(append([]byte{}, garbage...), valid...)

	candidates := imagescan.Extract(data)
	require.Len(t, candidates, 2)
	assert.Error(t, candidates[0].Err)
	assert.Nil(t, candidates[0].Image)
	require.NoError(t, candidates[1].Err)
	assert.NotNil(t, candidates[1].Image)
}

func TestExtractNoImages(t *testing.T) {
	assert.Empty(t, imagescan.Extract([]byte("plain opaque binary")))
}
