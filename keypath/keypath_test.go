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

package keypath_test

import (
	"errors"
	"testing"

	"github.com/savetools/bgesav/cbor"
	"github.com/savetools/bgesav/internal/test"
	"github.com/savetools/bgesav/keypath"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// {"a": [1, 2, {"b": 5}]}
func testTree(t *testing.T) *cbor.Tree {
	t.Helper()
	tree, err := cbor.DecodeTree(test.DecodeHexString("a16161830102a1616205"))
	require.NoError(t, err)
	return tree
}

func TestResolve(t *testing.T) {
	tree := testTree(t)
	path, err := keypath.Parse("a", "[2]", "b")
	require.NoError(t, err)
	id, err := keypath.Resolve(tree, path)
	require.NoError(t, err)
	node := tree.Node(id)
	assert.Equal(t, cbor.KindUint, node.Kind())
	assert.Equal(t, uint64(5), node.Uint())
}

func TestResolveEmptyPathIsRoot(t *testing.T) {
	tree := testTree(t)
	id, err := keypath.Resolve(tree, nil)
	require.NoError(t, err)
	assert.Equal(t, tree.Root(), id)
}

func TestResolveNotFound(t *testing.T) {
	tree := testTree(t)
	testDefs := [][]string{
		{"a", "[9]"},
		{"missing"},
		{"a", "[2]", "nope"},
	}
	for _, testDef := range testDefs {
		path, err := keypath.Parse(testDef...)
		require.NoError(t, err)
		_, err = keypath.Resolve(tree, path)
		if !errors.Is(err, keypath.ErrPathNotFound) {
			t.Fatalf("expected ErrPathNotFound for %v, got: %v", testDef, err)
		}
	}

	// A negative index can't come from Parse, but the Path type is exported
	// and presentation collaborators build paths directly
	path := keypath.Path{
		keypath.MapKey{Value: "a"},
		keypath.ArrayIndex{Index: -1},
	}
	_, err := keypath.Resolve(tree, path)
	if !errors.Is(err, keypath.ErrPathNotFound) {
		t.Fatalf("expected ErrPathNotFound for negative index, got: %v", err)
	}
}

func TestResolveTypeMismatch(t *testing.T) {
	tree := testTree(t)
	// Array index applied to a map node
	path := keypath.Path{keypath.ArrayIndex{Index: 0}}
	_, err := keypath.Resolve(tree, path)
	var mismatchErr keypath.TypeMismatchError
	require.ErrorAs(t, err, &mismatchErr)
	assert.Equal(t, cbor.KindMap, mismatchErr.Kind)

	// Map key applied to an array node
	path = keypath.Path{
		keypath.MapKey{Value: "a"},
		keypath.MapKey{Value: "b"},
	}
	_, err = keypath.Resolve(tree, path)
	require.ErrorAs(t, err, &mismatchErr)
	assert.Equal(t, cbor.KindArray, mismatchErr.Kind)

	// Any step applied to a scalar node
	path = keypath.Path{
		keypath.MapKey{Value: "a"},
		keypath.ArrayIndex{Index: 0},
		keypath.MapKey{Value: "b"},
	}
	_, err = keypath.Resolve(tree, path)
	require.ErrorAs(t, err, &mismatchErr)
	assert.Equal(t, cbor.KindUint, mismatchErr.Kind)
}

func TestParse(t *testing.T) {
	testDefs := []struct {
		tokens      []string
		expected    keypath.Path
		expectError bool
	}{
		{
			tokens: []string{"a", "[2]", "b"},
			expected: keypath.Path{
				keypath.MapKey{Value: "a"},
				keypath.ArrayIndex{Index: 2},
				keypath.MapKey{Value: "b"},
			},
		},
		{
			// Digits without brackets are text keys, not indexes
			tokens:   []string{"12"},
			expected: keypath.Path{keypath.MapKey{Value: "12"}},
		},
		{tokens: []string{"[2"}, expectError: true},
		{tokens: []string{"[-1]"}, expectError: true},
		{tokens: []string{"[x]"}, expectError: true},
	}
	for _, testDef := range testDefs {
		path, err := keypath.Parse(testDef.tokens...)
		if testDef.expectError {
			assert.Errorf(t, err, "expected parse error for %v", testDef.tokens)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, testDef.expected, path)
	}
}

func TestPathString(t *testing.T) {
	path := keypath.Path{
		keypath.MapKey{Value: "stats"},
		keypath.ArrayIndex{Index: 2},
		keypath.MapKey{Value: []byte{0xab, 0xcd}},
		keypath.MapKey{Value: uint64(7)},
	}
	assert.Equal(t, "stats > [2] > h'abcd' > 7", path.String())
}

func TestPathAppendNoAliasing(t *testing.T) {
	base := keypath.Path{keypath.MapKey{Value: "a"}}
	left := base.Append(keypath.MapKey{Value: "b"})
	right := base.Append(keypath.MapKey{Value: "c"})
	assert.Equal(t, "a > b", left.String())
	assert.Equal(t, "a > c", right.String())
	assert.Equal(t, "a", base.String())
}
