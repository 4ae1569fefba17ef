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
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
)

// NodeID addresses a node within a Tree arena. IDs are stable for the
// lifetime of the tree; nodes are never removed or reordered
type NodeID int

// InvalidNode is the zero-value-adjacent "no node" ID
const InvalidNode NodeID = -1

// Kind is the variant tag of a Node
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindUint
	KindNegInt
	KindFloat
	KindText
	KindBytes
	KindArray
	KindMap
	KindTag
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindUint:
		return "uint"
	case KindNegInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBytes:
		return "bytes"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindTag:
		return "tag"
	default:
		return "invalid"
	}
}

// Pair is one map entry. Map keys are arbitrary nodes, not just strings
type Pair struct {
	Key   NodeID
	Value NodeID
}

// Node is a tagged variant: a map, an array, a tag wrapper, or a scalar.
// Exactly the fields implied by the kind are populated. Each node retains
// the raw CBOR it was decoded from until it is edited
type Node struct {
	kind     Kind
	boolVal  bool
	uintVal  uint64 // KindUint value, or tag number for KindTag
	intVal   int64  // KindNegInt value (always negative)
	floatVal float64
	half     bool // KindFloat decoded from a half-width encoding
	textVal  string
	bytesVal []byte
	elems    []NodeID // KindArray elements, or single KindTag content
	pairs    []Pair   // KindMap entries, in wire order
	raw      []byte   // original encoding; nil once edited
}

func (n *Node) Kind() Kind { return n.kind }

func (n *Node) Bool() bool { return n.boolVal }

func (n *Node) Uint() uint64 { return n.uintVal }

func (n *Node) Int() int64 { return n.intVal }

func (n *Node) Float() float64 { return n.floatVal }

// Half reports whether a KindFloat node was decoded from a half-width
// encoding
func (n *Node) Half() bool { return n.half }

func (n *Node) Text() string { return n.textVal }

// Bytes returns the byte-string value for a KindBytes node
func (n *Node) Bytes() []byte { return n.bytesVal }

// TagNumber returns the tag number for a KindTag node
func (n *Node) TagNumber() uint64 { return n.uintVal }

// Elems returns array elements, or the single tag content node
func (n *Node) Elems() []NodeID { return n.elems }

// Pairs returns map entries in wire order
func (n *Node) Pairs() []Pair { return n.pairs }

// Raw returns the original CBOR encoding of this node, or nil if the node
// has been edited since decode
func (n *Node) Raw() []byte { return n.raw }

// Dirty reports whether this node has been edited since decode. It does
// not consider descendants; see Tree.Encode for subtree handling
func (n *Node) Dirty() bool { return n.raw == nil }

// IsScalar reports whether the node is a leaf value rather than a
// container
func (n *Node) IsScalar() bool {
	switch n.kind {
	case KindMap, KindArray, KindTag:
		return false
	}
	return true
}

// Scalar returns the node's value as a plain Go value. Containers return
// nil
func (n *Node) Scalar() any {
	switch n.kind {
	case KindNull:
		return nil
	case KindBool:
		return n.boolVal
	case KindUint:
		return n.uintVal
	case KindNegInt:
		return n.intVal
	case KindFloat:
		return n.floatVal
	case KindText:
		return n.textVal
	case KindBytes:
		return n.bytesVal
	}
	return nil
}

// String renders the node for display. Byte strings render as hex, the
// same way map keys made from them do
func (n *Node) String() string {
	switch n.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(n.boolVal)
	case KindUint:
		return strconv.FormatUint(n.uintVal, 10)
	case KindNegInt:
		return strconv.FormatInt(n.intVal, 10)
	case KindFloat:
		return strconv.FormatFloat(n.floatVal, 'g', -1, 64)
	case KindText:
		return n.textVal
	case KindBytes:
		return hex.EncodeToString(n.bytesVal)
	case KindArray:
		return fmt.Sprintf("array(%d)", len(n.elems))
	case KindMap:
		return fmt.Sprintf("map(%d)", len(n.pairs))
	case KindTag:
		return fmt.Sprintf("tag(%d)", n.uintVal)
	default:
		return "invalid"
	}
}

// ScalarEquals compares the node's scalar value against a plain Go value,
// normalizing across the integer kinds. Containers never match
func (n *Node) ScalarEquals(v any) bool {
	switch v := v.(type) {
	case string:
		return n.kind == KindText && n.textVal == v
	case bool:
		return n.kind == KindBool && n.boolVal == v
	case uint64:
		return n.kind == KindUint && n.uintVal == v
	case int:
		return n.ScalarEquals(int64(v))
	case int64:
		if v >= 0 {
			return n.kind == KindUint && n.uintVal == uint64(v)
		}
		return n.kind == KindNegInt && n.intVal == v
	case float64:
		return n.kind == KindFloat && n.floatVal == v
	case []byte:
		return n.kind == KindBytes && string(n.bytesVal) == string(v)
	case nil:
		return n.kind == KindNull
	}
	return false
}

// Tree is an arena of nodes produced by decoding a CBOR payload. Nodes are
// addressed by stable NodeIDs; navigation is top-down from Root. Mutation
// happens only through the Tree's explicit entry points
type Tree struct {
	nodes []Node
	root  NodeID
}

// Root returns the ID of the top-level value
func (t *Tree) Root() NodeID { return t.root }

// Len returns the number of nodes in the arena
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node for the given ID, or nil if the ID is out of
// range. The returned node is for reading; use SetScalar to mutate
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[id]
}

var (
	// ErrUnknownNode is returned when a NodeID does not address a node
	ErrUnknownNode = errors.New("unknown node ID")
	// ErrNotScalar is returned when a scalar operation targets a container
	ErrNotScalar = errors.New("node is not a scalar")
)

// SetScalar overwrites a scalar leaf with a new value, which may be of a
// different scalar kind than the old one. Accepted value types: nil, bool,
// int64, uint64, float64, string, []byte. The node's retained raw encoding
// is discarded, marking it dirty for re-encode
func (t *Tree) SetScalar(id NodeID, value any) error {
	n := t.Node(id)
	if n == nil {
		return ErrUnknownNode
	}
	if !n.IsScalar() {
		return fmt.Errorf("%w: %s", ErrNotScalar, n.kind)
	}
	next := Node{}
	switch v := value.(type) {
	case nil:
		next.kind = KindNull
	case bool:
		next.kind = KindBool
		next.boolVal = v
	case uint64:
		next.kind = KindUint
		next.uintVal = v
	case int:
		return t.SetScalar(id, int64(v))
	case int64:
		if v >= 0 {
			next.kind = KindUint
			next.uintVal = uint64(v)
		} else {
			next.kind = KindNegInt
			next.intVal = v
		}
	case float64:
		next.kind = KindFloat
		next.floatVal = v
	case string:
		next.kind = KindText
		next.textVal = v
	case []byte:
		next.kind = KindBytes
		next.bytesVal = v
	default:
		return fmt.Errorf("unsupported scalar value type: %T", value)
	}
	*n = next
	return nil
}

// MapLookup finds the value node for the given key value in a KindMap
// node. The second return is false when the key is absent
func (t *Tree) MapLookup(id NodeID, key any) (NodeID, bool) {
	n := t.Node(id)
	if n == nil || n.kind != KindMap {
		return InvalidNode, false
	}
	for _, pair := range n.pairs {
		if t.Node(pair.Key).ScalarEquals(key) {
			return pair.Value, true
		}
	}
	return InvalidNode, false
}

func (t *Tree) alloc(n Node) NodeID {
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}
