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
	"fmt"
	"strconv"
	"strings"
)

// ValueType is the type a user declares for replacement text
type ValueType int

const (
	TypeInt ValueType = iota
	TypeFloat
	TypeBool
	TypeText
)

func (v ValueType) String() string {
	switch v {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeText:
		return "text"
	default:
		return "unknown"
	}
}

// ParseValueType parses the string form used by config files and CLI flags
func ParseValueType(s string) (ValueType, error) {
	switch strings.ToLower(s) {
	case "int":
		return TypeInt, nil
	case "float":
		return TypeFloat, nil
	case "bool":
		return TypeBool, nil
	case "text", "str", "string":
		return TypeText, nil
	default:
		return TypeText, fmt.Errorf("unknown value type %q", s)
	}
}

// CastError reports replacement text that could not be parsed as its
// declared type. It is a warning, not a failure: the value falls back to
// raw text
type CastError struct {
	Input string
	Type  ValueType
	Err   error
}

func (e CastError) Error() string {
	return fmt.Sprintf(
		"cannot cast %q to %s, keeping raw text: %s",
		e.Input,
		e.Type,
		e.Err,
	)
}

func (e CastError) Unwrap() error {
	return e.Err
}

// castValue converts user-entered text to its declared type. Booleans map
// case-insensitive "true" and "1" to true and everything else to false.
// Failed int/float parses fall back to the raw text and return a
// CastError alongside
func castValue(text string, typ ValueType) (any, error) {
	switch typ {
	case TypeInt:
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return text, CastError{Input: text, Type: typ, Err: err}
		}
		return v, nil
	case TypeFloat:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return text, CastError{Input: text, Type: typ, Err: err}
		}
		return v, nil
	case TypeBool:
		return strings.EqualFold(text, "true") || text == "1", nil
	default:
		return text, nil
	}
}
