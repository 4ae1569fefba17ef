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

// Package savefile implements the outer binary container of BGE 20th
// Anniversary save files: a fixed 26-byte header, a CBOR payload, and a
// single trailer byte.
package savefile

import (
	"errors"
	"fmt"
	"strconv"
)

// Field boundaries within the container, all fixed offsets
const (
	SignatureSize    = 8
	DeclaredSizeSize = 8
	UnknownSize      = 8

	signatureOffset    = 0
	declaredSizeOffset = 8
	sep1Offset         = 16
	unknownOffset      = 17
	sep2Offset         = 25
	PayloadOffset      = 26

	// HeaderSize is the fixed header length preceding the payload
	HeaderSize = PayloadOffset
	// MinSize is the smallest well-formed container: header plus trailer
	MinSize = HeaderSize + 1
)

// ErrMalformedContainer is returned when the raw bytes are too short to
// contain the fixed header and trailer
var ErrMalformedContainer = errors.New(
	"malformed container: shorter than header plus trailer",
)

// SaveFile represents a split save-file container. The payload is the
// embedded CBOR document; all other fields are opaque and preserved
// byte-for-byte on Join
type SaveFile struct {
	Signature    [SignatureSize]byte
	DeclaredSize [DeclaredSizeSize]byte
	Sep1         byte
	// Unknown is an undocumented 8-byte header field. We treat it as an
	// opaque pass-through rather than guessing its meaning
	Unknown [UnknownSize]byte
	Sep2    byte
	Payload []byte
	Trailer byte
}

// Split slices raw container bytes into the fixed header fields, the CBOR
// payload, and the trailer byte
func Split(raw []byte) (*SaveFile, error) {
	if len(raw) < MinSize {
		return nil, ErrMalformedContainer
	}
	s := &SaveFile{
		Sep1:    raw[sep1Offset],
		Sep2:    raw[sep2Offset],
		Trailer: raw[len(raw)-1],
	}
	copy(s.Signature[:], raw[signatureOffset:declaredSizeOffset])
	copy(s.DeclaredSize[:], raw[declaredSizeOffset:sep1Offset])
	copy(s.Unknown[:], raw[unknownOffset:sep2Offset])
	s.Payload = make([]byte, len(raw)-MinSize)
	copy(s.Payload, raw[PayloadOffset:len(raw)-1])
	return s, nil
}

// Join is the exact inverse of Split: the concatenation of the container
// fields in container order. Join(Split(x)) == x for any well-formed x
func (s *SaveFile) Join() []byte {
	raw := make([]byte, 0, HeaderSize+len(s.Payload)+1)
	raw = append(raw, s.Signature[:]...)
	raw = append(raw, s.DeclaredSize[:]...)
	raw = append(raw, s.Sep1)
	raw = append(raw, s.Unknown[:]...)
	raw = append(raw, s.Sep2)
	raw = append(raw, s.Payload...)
	raw = append(raw, s.Trailer)
	return raw
}

// PayloadSize parses the declared-size header field as ASCII hex
func (s *SaveFile) PayloadSize() (int, error) {
	size, err := strconv.ParseUint(string(s.DeclaredSize[:]), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("parse declared size %q: %w", s.DeclaredSize, err)
	}
	return int(size), nil
}

// SizeConsistent reports whether the declared size matches the actual
// payload length. A stale declared size is not fatal on open, but must be
// corrected on save
func (s *SaveFile) SizeConsistent() bool {
	size, err := s.PayloadSize()
	return err == nil && size == len(s.Payload)
}

// SetPayload replaces the payload and recomputes the declared-size field
func (s *SaveFile) SetPayload(payload []byte) {
	s.Payload = payload
	s.DeclaredSize = EncodeSize(len(payload))
}

// EncodeSize renders a payload length as the 8-digit ASCII hex form used by
// the declared-size header field
func EncodeSize(n int) [DeclaredSizeSize]byte {
	var out [DeclaredSizeSize]byte
	copy(out[:], fmt.Sprintf("%08x", n))
	return out
}

// PatchSize rewrites the declared-size field in place in raw container
// bytes, deriving the payload length from the overall file length. Used by
// the surgical save path, which never re-splits the file
func PatchSize(raw []byte) error {
	if len(raw) < MinSize {
		return ErrMalformedContainer
	}
	size := EncodeSize(len(raw) - MinSize)
	copy(raw[declaredSizeOffset:sep1Offset], size[:])
	return nil
}
