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

package savefile

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const hexDumpWidth = 16

// HexDump renders data as lines of hex digits followed by their printable
// ASCII form, 16 bytes per line
func HexDump(data []byte) string {
	var sb strings.Builder
	for off := 0; off < len(data); off += hexDumpWidth {
		end := min(off+hexDumpWidth, len(data))
		chunk := data[off:end]
		ascii := make([]byte, len(chunk))
		for i, b := range chunk {
			if b >= 0x20 && b < 0x7f {
				ascii[i] = b
			} else {
				ascii[i] = '.'
			}
		}
		fmt.Fprintf(
			&sb,
			"%-*s %s\n",
			hexDumpWidth*2,
			hex.EncodeToString(chunk),
			ascii,
		)
	}
	return sb.String()
}

// HeaderField is one labeled header field rendered as hex, for display
type HeaderField struct {
	Name  string
	Value string
}

// Describe returns the header fields as labeled hex strings, plus the
// leading payload bytes, in container order
func (s *SaveFile) Describe() []HeaderField {
	payloadPreview := s.Payload
	if len(payloadPreview) > 64 {
		payloadPreview = payloadPreview[:64]
	}
	return []HeaderField{
		{Name: "Signature", Value: hex.EncodeToString(s.Signature[:])},
		{Name: "Declared Size", Value: hex.EncodeToString(s.DeclaredSize[:])},
		{Name: "Separator 1", Value: hex.EncodeToString([]byte{s.Sep1})},
		{Name: "Unknown", Value: hex.EncodeToString(s.Unknown[:])},
		{Name: "Separator 2", Value: hex.EncodeToString([]byte{s.Sep2})},
		{Name: "Payload (first 64 bytes)", Value: hex.EncodeToString(payloadPreview)},
		{Name: "Separator 3", Value: hex.EncodeToString([]byte{s.Trailer})},
	}
}
