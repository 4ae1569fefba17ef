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

package editor

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/savetools/bgesav/cbor"
	"github.com/savetools/bgesav/imagescan"
	"github.com/savetools/bgesav/keypath"
)

// DisplayKind classifies a display node for the presentation layer
type DisplayKind int

const (
	DisplayMap DisplayKind = iota
	DisplayArray
	DisplayScalar
	// DisplayHex is a byte-string leaf with no embedded images, projected
	// as hex text
	DisplayHex
	// DisplayImage is one JPEG stream found inside a byte-string leaf
	DisplayImage
)

// DisplayNode is a presentation projection of the value tree. It is
// derived and read-only: edits are addressed through Path back onto the
// authoritative tree, never applied to the projection
type DisplayNode struct {
	Label    string
	Kind     DisplayKind
	Value    string
	Path     keypath.Path
	Editable bool
	Children []*DisplayNode
	// Image dimensions and decode outcome, for DisplayImage nodes
	Width  int
	Height int
	Err    error
}

// DisplayTree projects the session's tree for presentation. Byte-string
// leaves containing JPEG streams become image children; other byte
// strings become their hex text
func (s *Session) DisplayTree() (*DisplayNode, error) {
	if s.tree == nil {
		return nil, ErrNoFile
	}
	return s.project(s.tree.Root(), "root", nil), nil
}

func (s *Session) project(
	id cbor.NodeID,
	label string,
	path keypath.Path,
) *DisplayNode {
	node := s.tree.Node(id)
	display := &DisplayNode{
		Label: label,
		Path:  path,
	}
	switch node.Kind() {
	case cbor.KindMap:
		display.Kind = DisplayMap
		display.Value = node.String()
		for _, pair := range node.Pairs() {
			key := s.tree.Node(pair.Key)
			childPath := path
			if key.IsScalar() {
				childPath = path.Append(keypath.MapKey{Value: key.Scalar()})
			}
			// byte-string keys are leaves too: when one holds images, show
			// them under their own entry. The key itself is not editable,
			// so the entry carries the map's path
			if key.Kind() == cbor.KindBytes {
				keyDisplay := &DisplayNode{
					Label: fmt.Sprintf("%s (key)", key.String()),
					Path:  path,
				}
				s.projectBytes(keyDisplay, key.Bytes())
				if keyDisplay.Kind == DisplayArray {
					display.Children = append(display.Children, keyDisplay)
				}
			}
			display.Children = append(
				display.Children,
				s.project(pair.Value, key.String(), childPath),
			)
		}
	case cbor.KindArray:
		display.Kind = DisplayArray
		display.Value = node.String()
		for i, elem := range node.Elems() {
			display.Children = append(
				display.Children,
				s.project(
					elem,
					fmt.Sprintf("[%d]", i),
					path.Append(keypath.ArrayIndex{Index: i}),
				),
			)
		}
	case cbor.KindTag:
		// tag wrappers are transparent for addressing: the content keeps
		// the wrapper's path
		display.Kind = DisplayArray
		display.Value = node.String()
		for _, elem := range node.Elems() {
			display.Children = append(
				display.Children,
				s.project(elem, "content", path),
			)
		}
	case cbor.KindBytes:
		s.projectBytes(display, node.Bytes())
	default:
		display.Kind = DisplayScalar
		display.Value = node.String()
		display.Editable = node.IsScalar()
	}
	return display
}

// projectBytes replaces a byte-string leaf by its embedded images, or by
// hex text when it holds none
func (s *Session) projectBytes(display *DisplayNode, data []byte) {
	candidates := imagescan.Extract(data)
	if len(candidates) == 0 {
		display.Kind = DisplayHex
		display.Value = hex.EncodeToString(data)
		return
	}
	display.Kind = DisplayArray
	display.Value = fmt.Sprintf("images(%d)", len(candidates))
	for i, candidate := range candidates {
		child := &DisplayNode{
			Label: fmt.Sprintf("Image %d", i),
			Kind:  DisplayImage,
			Path:  display.Path,
			Err:   candidate.Err,
		}
		if candidate.Image != nil {
			bounds := candidate.Image.Bounds()
			child.Width = bounds.Dx()
			child.Height = bounds.Dy()
			child.Value = fmt.Sprintf("%dx%d JPEG", child.Width, child.Height)
		} else {
			child.Value = fmt.Sprintf("image could not be decoded: %s", candidate.Err)
		}
		display.Children = append(display.Children, child)
	}
}

// Describe renders the detail text for the node at the given path: its
// key path, value, and type
func (s *Session) Describe(path keypath.Path) (string, error) {
	if s.tree == nil {
		return "", ErrNoFile
	}
	id, err := keypath.Resolve(s.tree, path)
	if err != nil {
		return "", err
	}
	node := s.tree.Node(id)
	typeName := node.Kind().String()
	if node.Kind() == cbor.KindFloat && node.Half() {
		typeName += " (half-width)"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Key Path: %s\n", path)
	fmt.Fprintf(&sb, "Value: %s\n", node)
	fmt.Fprintf(&sb, "Type: %s", typeName)
	return sb.String(), nil
}
