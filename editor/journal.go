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
	"github.com/savetools/bgesav/keypath"
)

// EditRecord is one journaled edit: the addressed leaf, the value it held
// when the file was opened, and the user's replacement
type EditRecord struct {
	Path keypath.Path
	// OriginalRaw is the leaf's encoding as it appears in the opened file.
	// The surgical save strategy searches for exactly these bytes
	OriginalRaw []byte
	// Original is the decoded value the leaf held on open
	Original any
	// Value is the typed replacement after casting
	Value   any
	NewText string
	Type    ValueType
	// Warning is set when casting fell back to raw text
	Warning error
}

// Journal collects edits in insertion order, keyed by path with
// last-write-wins semantics: editing the same leaf twice updates the
// existing record in place, keeping its position and its original value
// from the opened file
type Journal struct {
	records []*EditRecord
	index   map[string]int
}

func NewJournal() *Journal {
	return &Journal{
		index: make(map[string]int),
	}
}

// Add records an edit. A later edit to the same path replaces the
// previous replacement but never the recorded original, so the surgical
// strategy always searches for bytes that exist in the opened file
func (j *Journal) Add(record *EditRecord) {
	key := record.Path.String()
	if i, ok := j.index[key]; ok {
		existing := j.records[i]
		existing.Value = record.Value
		existing.NewText = record.NewText
		existing.Type = record.Type
		existing.Warning = record.Warning
		return
	}
	j.index[key] = len(j.records)
	j.records = append(j.records, record)
}

// Records returns the journal in insertion order
func (j *Journal) Records() []*EditRecord {
	return j.records
}

func (j *Journal) Len() int {
	return len(j.records)
}

// Reset empties the journal. Called after a successful save consumes it
func (j *Journal) Reset() {
	j.records = nil
	j.index = make(map[string]int)
}
