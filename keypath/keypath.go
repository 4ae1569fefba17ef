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

// Package keypath addresses single nodes inside a decoded value tree by an
// ordered sequence of map-key and array-index steps.
package keypath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/savetools/bgesav/cbor"
)

// Step is one traversal step: either a MapKey or an ArrayIndex
type Step interface {
	fmt.Stringer
	isStep()
}

// MapKey steps into a map by key value. Keys are scalars and need not be
// strings; integer and byte-string keys are addressable programmatically
type MapKey struct {
	Value any
}

func (MapKey) isStep() {}

func (s MapKey) String() string {
	switch v := s.Value.(type) {
	case string:
		return v
	case []byte:
		return fmt.Sprintf("h'%x'", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ArrayIndex steps into an array by position
type ArrayIndex struct {
	Index int
}

func (ArrayIndex) isStep() {}

func (s ArrayIndex) String() string {
	return "[" + strconv.Itoa(s.Index) + "]"
}

// Path is an ordered sequence of steps, applied strictly left to right
type Path []Step

// String renders the path in the display form used throughout the editor,
// e.g. "stats > items > [2] > name"
func (p Path) String() string {
	parts := make([]string, 0, len(p))
	for _, step := range p {
		parts = append(parts, step.String())
	}
	return strings.Join(parts, " > ")
}

// Append returns a copy of the path with one more step. The receiver is
// never modified, so paths built during tree walks don't alias
func (p Path) Append(step Step) Path {
	next := make(Path, 0, len(p)+1)
	next = append(next, p...)
	next = append(next, step)
	return next
}

// Parse builds a path from string tokens: a token of the form "[n]" is an
// array index, anything else is a text map key. Non-text map keys cannot
// be expressed in this form; build those paths directly
func Parse(tokens ...string) (Path, error) {
	path := make(Path, 0, len(tokens))
	for _, token := range tokens {
		if strings.HasPrefix(token, "[") {
			if !strings.HasSuffix(token, "]") {
				return nil, fmt.Errorf("malformed index step %q", token)
			}
			index, err := strconv.Atoi(token[1 : len(token)-1])
			if err != nil || index < 0 {
				return nil, fmt.Errorf("malformed index step %q", token)
			}
			path = append(path, ArrayIndex{Index: index})
			continue
		}
		path = append(path, MapKey{Value: token})
	}
	return path, nil
}

// ErrPathNotFound is returned when a step's key or index is absent from
// the node it is applied to
var ErrPathNotFound = errors.New("path not found")

// TypeMismatchError is returned when a step kind does not match the node
// kind it is applied to, e.g. an array index applied to a map. This is
// never coerced
type TypeMismatchError struct {
	Step Step
	Kind cbor.Kind
}

func (e TypeMismatchError) Error() string {
	switch e.Step.(type) {
	case ArrayIndex:
		return fmt.Sprintf(
			"array index %s applied to %s node",
			e.Step,
			e.Kind,
		)
	default:
		return fmt.Sprintf("map key %q applied to %s node", e.Step, e.Kind)
	}
}

// Resolve walks the path from the tree root and returns the addressed
// node's ID. Resolution is strict: absent keys and out-of-range indexes
// are ErrPathNotFound, and step/node kind mismatches are
// TypeMismatchError. Tag wrappers are transparent: steps apply to the
// tag content, and a path ending at a tag resolves to its content
func Resolve(tree *cbor.Tree, path Path) (cbor.NodeID, error) {
	current := unwrapTags(tree, tree.Root())
	for i, step := range path {
		node := tree.Node(current)
		if node == nil {
			return cbor.InvalidNode, fmt.Errorf(
				"%w: %s",
				ErrPathNotFound,
				path[:i+1],
			)
		}
		switch step := step.(type) {
		case MapKey:
			if node.Kind() != cbor.KindMap {
				return cbor.InvalidNode, TypeMismatchError{
					Step: step,
					Kind: node.Kind(),
				}
			}
			next, ok := tree.MapLookup(current, step.Value)
			if !ok {
				return cbor.InvalidNode, fmt.Errorf(
					"%w: %s",
					ErrPathNotFound,
					path[:i+1],
				)
			}
			current = unwrapTags(tree, next)
		case ArrayIndex:
			if node.Kind() != cbor.KindArray {
				return cbor.InvalidNode, TypeMismatchError{
					Step: step,
					Kind: node.Kind(),
				}
			}
			elems := node.Elems()
			if step.Index < 0 || step.Index >= len(elems) {
				return cbor.InvalidNode, fmt.Errorf(
					"%w: %s",
					ErrPathNotFound,
					path[:i+1],
				)
			}
			current = unwrapTags(tree, elems[step.Index])
		}
	}
	return current, nil
}

// unwrapTags skips through nested tag wrappers to the tagged content
func unwrapTags(tree *cbor.Tree, id cbor.NodeID) cbor.NodeID {
	for {
		node := tree.Node(id)
		if node == nil || node.Kind() != cbor.KindTag || len(node.Elems()) == 0 {
			return id
		}
		id = node.Elems()[0]
	}
}
