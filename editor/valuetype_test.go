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
	"testing"
)

func TestParseValueType(t *testing.T) {
	testDefs := []struct {
		input       string
		expected    ValueType
		expectError bool
	}{
		{input: "int", expected: TypeInt},
		{input: "Float", expected: TypeFloat},
		{input: "BOOL", expected: TypeBool},
		{input: "text", expected: TypeText},
		{input: "str", expected: TypeText},
		{input: "complex", expectError: true},
	}
	for _, testDef := range testDefs {
		valueType, err := ParseValueType(testDef.input)
		if testDef.expectError {
			if err == nil {
				t.Fatalf("expected error for %q, got none", testDef.input)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %s", testDef.input, err)
		}
		if valueType != testDef.expected {
			t.Fatalf(
				"expected %s for %q, got %s",
				testDef.expected,
				testDef.input,
				valueType,
			)
		}
	}
}

func TestCastValue(t *testing.T) {
	testDefs := []struct {
		text          string
		valueType     ValueType
		expected      any
		expectWarning bool
	}{
		{text: "80", valueType: TypeInt, expected: int64(80)},
		{text: "-3", valueType: TypeInt, expected: int64(-3)},
		{text: "1.25", valueType: TypeFloat, expected: 1.25},
		{text: "true", valueType: TypeBool, expected: true},
		{text: "TrUe", valueType: TypeBool, expected: true},
		{text: "1", valueType: TypeBool, expected: true},
		{text: "0", valueType: TypeBool, expected: false},
		{text: "false", valueType: TypeBool, expected: false},
		{text: "anything", valueType: TypeText, expected: "anything"},
		// Unparseable numerics fall back to raw text with a warning
		{text: "8O", valueType: TypeInt, expected: "8O", expectWarning: true},
		{text: "1.2.3", valueType: TypeFloat, expected: "1.2.3", expectWarning: true},
	}
	for _, testDef := range testDefs {
		value, warning := castValue(testDef.text, testDef.valueType)
		if testDef.expectWarning && warning == nil {
			t.Fatalf("expected cast warning for %q as %s", testDef.text, testDef.valueType)
		}
		if !testDef.expectWarning && warning != nil {
			t.Fatalf("unexpected cast warning for %q: %s", testDef.text, warning)
		}
		if value != testDef.expected {
			t.Fatalf(
				"expected %v for %q as %s, got %v",
				testDef.expected,
				testDef.text,
				testDef.valueType,
				value,
			)
		}
	}
}
