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
	"errors"
	"fmt"
	"math"
	"sync"

	_cbor "github.com/fxamacker/cbor/v2"
	"github.com/x448/float16"
)

var (
	cachedEncMode     _cbor.EncMode
	cachedEncModeErr  error
	cachedEncModeOnce sync.Once
)

func getEncMode() (_cbor.EncMode, error) {
	cachedEncModeOnce.Do(func() {
		encOptions := _cbor.EncOptions{
			// Make sure that maps have ordered keys
			Sort: _cbor.SortCoreDeterministic,
		}
		cachedEncMode, cachedEncModeErr = encOptions.EncMode()
	})
	return cachedEncMode, cachedEncModeErr
}

// Encode encodes a plain Go value as deterministic CBOR
func Encode(data any) ([]byte, error) {
	em, err := getEncMode()
	if err != nil {
		return nil, err
	}
	return em.Marshal(data)
}

// Encode re-encodes the tree into payload bytes. Nodes that were not
// edited emit their retained original encodings, so a tree with no edits
// reproduces the decoded payload byte-for-byte. Containers on the path to
// an edited leaf re-emit their original headers followed by re-encoded
// children; entry counts never change, so the headers stay valid
func (t *Tree) Encode() ([]byte, error) {
	if t.root == InvalidNode {
		return nil, errors.New("tree has no root")
	}
	enc, _, err := t.encodeNode(t.root)
	return enc, err
}

// encodeNode returns the encoding of a subtree and whether anything in it
// was dirty
func (t *Tree) encodeNode(id NodeID) ([]byte, bool, error) {
	n := t.Node(id)
	if n == nil {
		return nil, false, ErrUnknownNode
	}
	switch n.kind {
	case KindMap:
		children := make([]NodeID, 0, len(n.pairs)*2)
		for _, pair := range n.pairs {
			children = append(children, pair.Key, pair.Value)
		}
		return t.encodeContainer(n, children)
	case KindArray, KindTag:
		return t.encodeContainer(n, n.elems)
	default:
		if !n.Dirty() {
			return n.raw, false, nil
		}
		enc, err := encodeScalar(n)
		return enc, true, err
	}
}

func (t *Tree) encodeContainer(n *Node, children []NodeID) ([]byte, bool, error) {
	encoded := make([][]byte, 0, len(children))
	dirty := false
	total := 0
	for _, child := range children {
		enc, childDirty, err := t.encodeNode(child)
		if err != nil {
			return nil, false, err
		}
		dirty = dirty || childDirty
		encoded = append(encoded, enc)
		total += len(enc)
	}
	if !dirty {
		return n.raw, false, nil
	}
	// Scalar-only editing means the container itself still has its
	// original header; reuse it and splice in the re-encoded children
	_, headLen, _, err := headInfo(n.raw)
	if err != nil {
		return nil, false, fmt.Errorf("container header: %w", err)
	}
	out := make([]byte, 0, headLen+total)
	out = append(out, n.raw[:headLen]...)
	for _, enc := range encoded {
		out = append(out, enc...)
	}
	return out, true, nil
}

// EncodeScalar encodes a plain Go scalar value exactly the way Tree.Encode
// encodes an edited leaf. The surgical save path uses this so that both
// strategies produce identical bytes for the same edit
func EncodeScalar(value any) ([]byte, error) {
	var t Tree
	id := t.alloc(Node{kind: KindNull})
	if err := t.SetScalar(id, value); err != nil {
		return nil, err
	}
	return encodeScalar(t.Node(id))
}

func encodeScalar(n *Node) ([]byte, error) {
	if n.kind == KindFloat {
		return encodeFloat(n.floatVal), nil
	}
	return Encode(n.Scalar())
}

// encodeFloat emits the shortest float encoding that preserves the value,
// per the deterministic encoding rules
func encodeFloat(f float64) []byte {
	if math.IsNaN(f) {
		return []byte{cborFloat16Prefix, 0x7e, 0x00}
	}
	if f32 := float32(f); float64(f32) == f {
		if float16.PrecisionFromfloat32(f32) == float16.PrecisionExact {
			bits := float16.Fromfloat32(f32).Bits()
			return []byte{cborFloat16Prefix, byte(bits >> 8), byte(bits)}
		}
		bits := math.Float32bits(f32)
		return []byte{
			cborFloat32Prefix,
			byte(bits >> 24), byte(bits >> 16), byte(bits >> 8), byte(bits),
		}
	}
	bits := math.Float64bits(f)
	return []byte{
		cborFloat64Prefix,
		byte(bits >> 56), byte(bits >> 48), byte(bits >> 40), byte(bits >> 32),
		byte(bits >> 24), byte(bits >> 16), byte(bits >> 8), byte(bits),
	}
}
