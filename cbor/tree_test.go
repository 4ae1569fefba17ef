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

package cbor_test

import (
	"testing"

	"github.com/savetools/bgesav/cbor"
	"github.com/savetools/bgesav/internal/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var decodeTestDefs = []struct {
	cborHex      string
	expectedKind cbor.Kind
	expectError  bool
}{
	// {}
	{cborHex: "a0", expectedKind: cbor.KindMap},
	// []
	{cborHex: "80", expectedKind: cbor.KindArray},
	// [1, 2, 3]
	{cborHex: "83010203", expectedKind: cbor.KindArray},
	// {"a": [1, 2, {"b": 5}]}
	{cborHex: "a16161830102a1616205", expectedKind: cbor.KindMap},
	// {h'abcd': 1} (bytestring map key)
	{cborHex: "a142abcd01", expectedKind: cbor.KindMap},
	// 100
	{cborHex: "1864", expectedKind: cbor.KindUint},
	// -5
	{cborHex: "24", expectedKind: cbor.KindNegInt},
	// 1.0 (half width)
	{cborHex: "f93c00", expectedKind: cbor.KindFloat},
	// 1.1 (double width)
	{cborHex: "fb3ff199999999999a", expectedKind: cbor.KindFloat},
	// "foo"
	{cborHex: "63666f6f", expectedKind: cbor.KindText},
	// h'010203'
	{cborHex: "43010203", expectedKind: cbor.KindBytes},
	// true
	{cborHex: "f5", expectedKind: cbor.KindBool},
	// null
	{cborHex: "f6", expectedKind: cbor.KindNull},
	// 2(h'0102') (bignum tag)
	{cborHex: "c2420102", expectedKind: cbor.KindTag},
	// Truncated array
	{cborHex: "830102", expectError: true},
	// Trailing bytes after top-level item
	{cborHex: "0001", expectError: true},
	// Indefinite-length array
	{cborHex: "9f0102ff", expectError: true},
	// Indefinite-length map
	{cborHex: "bf616101ff", expectError: true},
	// Empty input
	{cborHex: "", expectError: true},
}

func TestDecodeTree(t *testing.T) {
	for _, testDef := range decodeTestDefs {
		data := test.DecodeHexString(testDef.cborHex)
		tree, err := cbor.DecodeTree(data)
		if testDef.expectError {
			if err == nil {
				t.Fatalf("expected decode error for %s, got none", testDef.cborHex)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected decode error for %s: %s", testDef.cborHex, err)
		}
		root := tree.Node(tree.Root())
		if root.Kind() != testDef.expectedKind {
			t.Fatalf(
				"expected root kind %s for %s, got %s",
				testDef.expectedKind,
				testDef.cborHex,
				root.Kind(),
			)
		}
	}
}

func TestCanonicalRoundTrip(t *testing.T) {
	for _, testDef := range decodeTestDefs {
		if testDef.expectError {
			continue
		}
		data := test.DecodeHexString(testDef.cborHex)
		tree, err := cbor.DecodeTree(data)
		require.NoError(t, err)
		enc, err := tree.Encode()
		require.NoError(t, err)
		assert.Equalf(
			t,
			data,
			enc,
			"re-encode of %s did not reproduce input",
			testDef.cborHex,
		)
	}
}

func TestDecodeOrderPreserved(t *testing.T) {
	// {"b": 1, "a": 2} with keys deliberately out of sorted order
	tree, err := cbor.DecodeTree(test.DecodeHexString("a2616201616102"))
	require.NoError(t, err)
	root := tree.Node(tree.Root())
	require.Len(t, root.Pairs(), 2)
	assert.Equal(t, "b", tree.Node(root.Pairs()[0].Key).Text())
	assert.Equal(t, "a", tree.Node(root.Pairs()[1].Key).Text())
}

func TestDecodeScalarValues(t *testing.T) {
	tree, err := cbor.DecodeTree(test.DecodeHexString("a16161830102a1616205"))
	require.NoError(t, err)
	root := tree.Node(tree.Root())
	require.Equal(t, cbor.KindMap, root.Kind())
	require.Len(t, root.Pairs(), 1)
	key := tree.Node(root.Pairs()[0].Key)
	assert.Equal(t, "a", key.Text())
	arr := tree.Node(root.Pairs()[0].Value)
	require.Equal(t, cbor.KindArray, arr.Kind())
	require.Len(t, arr.Elems(), 3)
	assert.Equal(t, uint64(1), tree.Node(arr.Elems()[0]).Uint())
	assert.Equal(t, uint64(2), tree.Node(arr.Elems()[1]).Uint())
	inner := tree.Node(arr.Elems()[2])
	require.Equal(t, cbor.KindMap, inner.Kind())
	val, ok := tree.MapLookup(arr.Elems()[2], "b")
	require.True(t, ok)
	assert.Equal(t, uint64(5), tree.Node(val).Uint())
}

func TestDecodeHalfFloat(t *testing.T) {
	tree, err := cbor.DecodeTree(test.DecodeHexString("f93c00"))
	require.NoError(t, err)
	root := tree.Node(tree.Root())
	assert.Equal(t, 1.0, root.Float())
	assert.True(t, root.Half())
}

func TestSetScalarReencode(t *testing.T) {
	testDefs := []struct {
		name        string
		newValue    any
		expectedHex string
	}{
		{
			name:        "int edit",
			newValue:    int64(80),
			expectedHex: "a16161830102a161621850",
		},
		{
			name:        "negative int edit",
			newValue:    int64(-5),
			expectedHex: "a16161830102a1616224",
		},
		{
			name:        "text edit changes scalar kind",
			newValue:    "hi",
			expectedHex: "a16161830102a16162626869",
		},
		{
			name:        "bool edit",
			newValue:    true,
			expectedHex: "a16161830102a16162f5",
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			tree, err := cbor.DecodeTree(
				test.DecodeHexString("a16161830102a1616205"),
			)
			require.NoError(t, err)
			arrID, ok := tree.MapLookup(tree.Root(), "a")
			require.True(t, ok)
			innerID := tree.Node(arrID).Elems()[2]
			leafID, ok := tree.MapLookup(innerID, "b")
			require.True(t, ok)
			require.NoError(t, tree.SetScalar(leafID, testDef.newValue))
			assert.True(t, tree.Node(leafID).Dirty())
			enc, err := tree.Encode()
			require.NoError(t, err)
			assert.Equal(t, test.DecodeHexString(testDef.expectedHex), enc)
		})
	}
}

func TestSetScalarErrors(t *testing.T) {
	tree, err := cbor.DecodeTree(test.DecodeHexString("a16161830102a1616205"))
	require.NoError(t, err)
	assert.ErrorIs(
		t,
		tree.SetScalar(tree.Root(), int64(1)),
		cbor.ErrNotScalar,
	)
	assert.ErrorIs(
		t,
		tree.SetScalar(cbor.NodeID(9999), int64(1)),
		cbor.ErrUnknownNode,
	)
	assert.ErrorIs(
		t,
		tree.SetScalar(cbor.InvalidNode, int64(1)),
		cbor.ErrUnknownNode,
	)
}

func TestEncodeScalar(t *testing.T) {
	testDefs := []struct {
		value       any
		expectedHex string
	}{
		{value: uint64(80), expectedHex: "1850"},
		{value: int64(-5), expectedHex: "24"},
		{value: "80", expectedHex: "623830"},
		{value: true, expectedHex: "f5"},
		{value: nil, expectedHex: "f6"},
		{value: []byte{0x01}, expectedHex: "4101"},
		// 1.5 fits exactly in a half-width float
		{value: 1.5, expectedHex: "f93e00"},
		// 100000 fits in single but not half width
		{value: 100000.0, expectedHex: "fa47c35000"},
		// 1.1 requires double width
		{value: 1.1, expectedHex: "fb3ff199999999999a"},
	}
	for _, testDef := range testDefs {
		enc, err := cbor.EncodeScalar(testDef.value)
		if err != nil {
			t.Fatalf("unexpected error for %v: %s", testDef.value, err)
		}
		if string(enc) != string(test.DecodeHexString(testDef.expectedHex)) {
			t.Fatalf(
				"expected %s for %v, got %x",
				testDef.expectedHex,
				testDef.value,
				enc,
			)
		}
	}
}

func TestMapLookupByteStringKey(t *testing.T) {
	tree, err := cbor.DecodeTree(test.DecodeHexString("a142abcd01"))
	require.NoError(t, err)
	val, ok := tree.MapLookup(tree.Root(), []byte{0xab, 0xcd})
	require.True(t, ok)
	assert.Equal(t, uint64(1), tree.Node(val).Uint())
	_, ok = tree.MapLookup(tree.Root(), []byte{0xab})
	assert.False(t, ok)
	_, ok = tree.MapLookup(tree.Root(), "abcd")
	assert.False(t, ok)
}

func TestNodeString(t *testing.T) {
	testDefs := []struct {
		cborHex  string
		expected string
	}{
		{cborHex: "1864", expected: "100"},
		{cborHex: "24", expected: "-5"},
		{cborHex: "63666f6f", expected: "foo"},
		{cborHex: "43010203", expected: "010203"},
		{cborHex: "f5", expected: "true"},
		{cborHex: "f6", expected: "null"},
		{cborHex: "83010203", expected: "array(3)"},
		{cborHex: "a0", expected: "map(0)"},
		{cborHex: "c2420102", expected: "tag(2)"},
	}
	for _, testDef := range testDefs {
		tree, err := cbor.DecodeTree(test.DecodeHexString(testDef.cborHex))
		require.NoError(t, err)
		assert.Equal(t, testDef.expected, tree.Node(tree.Root()).String())
	}
}
