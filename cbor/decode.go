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

package cbor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	_cbor "github.com/fxamacker/cbor/v2"
	"github.com/x448/float16"
)

var (
	cachedDecMode     _cbor.DecMode
	cachedDecModeErr  error
	cachedDecModeOnce sync.Once
)

// getDecMode returns a cached DecMode, initializing it on first use.
// Uses sync.Once for thread-safe lazy initialization.
// Returns the cached error if initialization failed.
func getDecMode() (_cbor.DecMode, error) {
	cachedDecModeOnce.Do(func() {
		decOptions := _cbor.DecOptions{
			// This defaults to 32, but save payloads in the wild nest deeper
			MaxNestedLevels: maxNesting,
		}
		cachedDecMode, cachedDecModeErr = decOptions.DecMode()
	})
	return cachedDecMode, cachedDecModeErr
}

// Decode decodes a single CBOR item from the front of dataBytes into dest
// and returns the number of bytes consumed
func Decode(dataBytes []byte, dest any) (int, error) {
	data := bytes.NewReader(dataBytes)
	decMode, err := getDecMode()
	if err != nil {
		return 0, err
	}
	dec := decMode.NewDecoder(data)
	err = dec.Decode(dest)
	return dec.NumBytesRead(), err
}

// Nesting depth limit for tree decoding, matching the decoder mode's
// MaxNestedLevels
const maxNesting = 256

// DecodeError describes a failure to decode the payload into a tree,
// including the byte offset where decoding stopped
type DecodeError struct {
	Offset int
	Err    error
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("decode CBOR at offset %d: %s", e.Offset, e.Err)
}

func (e DecodeError) Unwrap() error {
	return e.Err
}

var errIndefiniteLength = errors.New(
	"indefinite-length maps and arrays are not supported",
)

// headInfo parses a CBOR item head and returns its argument value and the
// head length in bytes. For maps and arrays the argument is the entry
// count; for tags it is the tag number. indefinite is set for the
// indefinite-length marker, in which case the argument is meaningless
func headInfo(data []byte) (arg uint64, headLen int, indefinite bool, err error) {
	if len(data) == 0 {
		return 0, 0, false, io.ErrUnexpectedEOF
	}
	additional := data[0] & 0x1f
	switch {
	case additional <= CborMaxUintSimple:
		return uint64(additional), 1, false, nil
	case additional == 24:
		headLen = 2
	case additional == 25:
		headLen = 3
	case additional == 26:
		headLen = 5
	case additional == 27:
		headLen = 9
	case additional == cborIndefinite:
		return 0, 1, true, nil
	default:
		return 0, 0, false, fmt.Errorf(
			"invalid additional info: %d",
			additional,
		)
	}
	if len(data) < headLen {
		return 0, 0, false, io.ErrUnexpectedEOF
	}
	for _, b := range data[1:headLen] {
		arg = arg<<8 | uint64(b)
	}
	return arg, headLen, false, nil
}

// ArrayInfo extracts the element count and header size from CBOR array
// data. Returns (count, headerSize, isIndefinite). Count is -1 for
// invalid headers
func ArrayInfo(data []byte) (int, int, bool) {
	return containerInfo(data, CborTypeArray)
}

// MapInfo extracts the entry count and header size from CBOR map data.
// Returns (count, headerSize, isIndefinite). Count is -1 for invalid
// headers
func MapInfo(data []byte) (int, int, bool) {
	return containerInfo(data, CborTypeMap)
}

func containerInfo(data []byte, majorType uint8) (int, int, bool) {
	if len(data) == 0 || data[0]&CborTypeMask != majorType {
		return -1, 0, false
	}
	arg, headLen, indefinite, err := headInfo(data)
	if err != nil {
		return -1, 0, false
	}
	if indefinite {
		return 0, headLen, true
	}
	if arg > uint64(maxDecodeItems) {
		return -1, 0, false
	}
	return int(arg), headLen, false
}

// Upper bound on container entry counts. Anything larger than this cannot
// fit in a real payload and indicates a corrupt header
const maxDecodeItems = 1 << 28

// DecodeTree decodes a CBOR payload into a value tree, preserving map
// entry order and per-node raw encodings. The payload must contain exactly
// one top-level item
func DecodeTree(data []byte) (*Tree, error) {
	d := &treeDecoder{
		data: data,
		tree: &Tree{root: InvalidNode},
	}
	root, err := d.decodeNode(0)
	if err != nil {
		var decErr DecodeError
		if errors.As(err, &decErr) {
			return nil, err
		}
		return nil, DecodeError{Offset: d.pos, Err: err}
	}
	if d.pos != len(data) {
		return nil, DecodeError{
			Offset: d.pos,
			Err:    errors.New("trailing bytes after top-level item"),
		}
	}
	d.tree.root = root
	return d.tree, nil
}

type treeDecoder struct {
	data []byte
	pos  int
	tree *Tree
}

func (d *treeDecoder) decodeNode(depth int) (NodeID, error) {
	if depth > maxNesting {
		return InvalidNode, DecodeError{
			Offset: d.pos,
			Err:    errors.New("max nesting depth exceeded"),
		}
	}
	if d.pos >= len(d.data) {
		return InvalidNode, DecodeError{
			Offset: d.pos,
			Err:    io.ErrUnexpectedEOF,
		}
	}
	start := d.pos
	switch d.data[d.pos] & CborTypeMask {
	case CborTypeMap:
		count, headLen, indefinite := MapInfo(d.data[d.pos:])
		if indefinite {
			return InvalidNode, DecodeError{Offset: d.pos, Err: errIndefiniteLength}
		}
		if count < 0 {
			return InvalidNode, DecodeError{
				Offset: d.pos,
				Err:    errors.New("invalid map header"),
			}
		}
		d.pos += headLen
		pairs := make([]Pair, 0, count)
		for range count {
			key, err := d.decodeNode(depth + 1)
			if err != nil {
				return InvalidNode, err
			}
			value, err := d.decodeNode(depth + 1)
			if err != nil {
				return InvalidNode, err
			}
			pairs = append(pairs, Pair{Key: key, Value: value})
		}
		return d.tree.alloc(Node{
			kind:  KindMap,
			pairs: pairs,
			raw:   d.data[start:d.pos],
		}), nil
	case CborTypeArray:
		count, headLen, indefinite := ArrayInfo(d.data[d.pos:])
		if indefinite {
			return InvalidNode, DecodeError{Offset: d.pos, Err: errIndefiniteLength}
		}
		if count < 0 {
			return InvalidNode, DecodeError{
				Offset: d.pos,
				Err:    errors.New("invalid array header"),
			}
		}
		d.pos += headLen
		elems := make([]NodeID, 0, count)
		for range count {
			elem, err := d.decodeNode(depth + 1)
			if err != nil {
				return InvalidNode, err
			}
			elems = append(elems, elem)
		}
		return d.tree.alloc(Node{
			kind:  KindArray,
			elems: elems,
			raw:   d.data[start:d.pos],
		}), nil
	case CborTypeTag:
		number, headLen, indefinite, err := headInfo(d.data[d.pos:])
		if err != nil || indefinite {
			return InvalidNode, DecodeError{
				Offset: d.pos,
				Err:    errors.New("invalid tag header"),
			}
		}
		d.pos += headLen
		content, err := d.decodeNode(depth + 1)
		if err != nil {
			return InvalidNode, err
		}
		return d.tree.alloc(Node{
			kind:    KindTag,
			uintVal: number,
			elems:   []NodeID{content},
			raw:     d.data[start:d.pos],
		}), nil
	default:
		return d.decodeScalar()
	}
}

// decodeScalar decodes a single non-container item via the library
// decoder and maps it onto the scalar node kinds
func (d *treeDecoder) decodeScalar() (NodeID, error) {
	start := d.pos
	var value any
	consumed, err := Decode(d.data[d.pos:], &value)
	if err != nil {
		return InvalidNode, DecodeError{Offset: d.pos, Err: err}
	}
	d.pos += consumed
	node := Node{raw: d.data[start:d.pos]}
	switch v := value.(type) {
	case nil:
		node.kind = KindNull
	case bool:
		node.kind = KindBool
		node.boolVal = v
	case uint64:
		node.kind = KindUint
		node.uintVal = v
	case int64:
		node.kind = KindNegInt
		node.intVal = v
	case float64:
		node.kind = KindFloat
		node.floatVal = v
	case float32:
		node.kind = KindFloat
		node.floatVal = float64(v)
	case string:
		node.kind = KindText
		node.textVal = v
	case []byte:
		node.kind = KindBytes
		node.bytesVal = v
	default:
		return InvalidNode, DecodeError{
			Offset: start,
			Err:    fmt.Errorf("unsupported scalar type: %T", value),
		}
	}
	// Half-width floats keep their exact wire value and are flagged so
	// that re-encoding can stay half-width
	if node.kind == KindFloat && d.data[start] == cborFloat16Prefix {
		node.half = true
		bits := uint16(d.data[start+1])<<8 | uint16(d.data[start+2])
		node.floatVal = float64(float16.Frombits(bits).Float32())
	}
	return d.tree.alloc(node), nil
}
