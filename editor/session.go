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

// Package editor ties the container splitter, tree codec, and key-path
// addressing together into an editing session: open a save file, apply
// typed edits to scalar leaves, and re-serialize with a corrected
// declared-size header field.
package editor

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/savetools/bgesav/cbor"
	"github.com/savetools/bgesav/keypath"
	"github.com/savetools/bgesav/savefile"

	"github.com/charmbracelet/log"
)

// Strategy selects how edits are re-serialized on save
type Strategy int

const (
	// StrategyFullReencode applies edits to the live tree and re-encodes
	// the whole payload. Always internally consistent; untouched regions
	// are reproduced from their retained encodings
	StrategyFullReencode Strategy = iota
	// StrategySurgicalPatch splices each edit's encoded bytes into the
	// original file by pattern search, first occurrence wins. Minimal
	// diff, but short patterns can collide with unrelated bytes
	StrategySurgicalPatch
)

func (s Strategy) String() string {
	switch s {
	case StrategyFullReencode:
		return "full-reencode"
	case StrategySurgicalPatch:
		return "surgical-patch"
	default:
		return "unknown"
	}
}

// ParseStrategy parses the string form used by config files and CLI flags
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case "full-reencode", "full", "reencode":
		return StrategyFullReencode, nil
	case "surgical-patch", "surgical", "patch":
		return StrategySurgicalPatch, nil
	default:
		return StrategyFullReencode, fmt.Errorf("unknown strategy %q", s)
	}
}

// ErrNoFile is returned by operations that require an open file
var ErrNoFile = errors.New("no file open")

// Session is one editing session over one save file. It exclusively owns
// the decoded tree; concurrent use is not supported
type Session struct {
	logger   *log.Logger
	strategy Strategy
	filePath string
	raw      []byte
	save     *savefile.SaveFile
	tree     *cbor.Tree
	journal  *Journal
}

// NewSession creates an editing session. Use Open or OpenBytes to load a
// file into it
func NewSession(options ...SessionOptionFunc) *Session {
	s := &Session{
		strategy: StrategyFullReencode,
		journal:  NewJournal(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Open reads and decodes a save file. On any failure the session keeps no
// partial state
func (s *Session) Open(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read save file: %w", err)
	}
	if err := s.OpenBytes(raw); err != nil {
		return err
	}
	s.filePath = path
	return nil
}

// OpenBytes decodes raw container bytes into a fresh session state
func (s *Session) OpenBytes(raw []byte) error {
	save, err := savefile.Split(raw)
	if err != nil {
		return err
	}
	tree, err := cbor.DecodeTree(save.Payload)
	if err != nil {
		return err
	}
	if !save.SizeConsistent() {
		s.warnf("declared payload size does not match actual payload length %d", len(save.Payload))
	}
	s.raw = raw
	s.save = save
	s.tree = tree
	s.filePath = ""
	s.journal.Reset()
	return nil
}

// Strategy returns the session's save strategy
func (s *Session) Strategy() Strategy { return s.strategy }

// FilePath returns the path the session was opened from, if any
func (s *Session) FilePath() string { return s.filePath }

// Container returns the split save file, for header display
func (s *Session) Container() *savefile.SaveFile { return s.save }

// Journal returns the session's edit journal
func (s *Session) Journal() *Journal { return s.journal }

// Tree returns the decoded value tree. Callers must not mutate it
// directly; edits go through Edit
func (s *Session) Tree() *cbor.Tree { return s.tree }

// EditResult reports one applied edit
type EditResult struct {
	Path     string
	Previous string
	Value    any
	// Warning is set when the replacement text could not be parsed as its
	// declared type and was applied as raw text instead
	Warning error
}

// Edit applies a typed replacement to the scalar leaf at the given path
// and journals it for save. The edit is visible immediately in the tree
func (s *Session) Edit(
	path keypath.Path,
	newText string,
	valueType ValueType,
) (*EditResult, error) {
	if s.tree == nil {
		return nil, ErrNoFile
	}
	id, err := keypath.Resolve(s.tree, path)
	if err != nil {
		return nil, err
	}
	node := s.tree.Node(id)
	if !node.IsScalar() {
		return nil, fmt.Errorf(
			"edit target %s is a %s node, not a scalar",
			path,
			node.Kind(),
		)
	}
	value, castErr := castValue(newText, valueType)
	if castErr != nil {
		s.warnf("edit %s: %s", path, castErr)
	}
	record := &EditRecord{
		Path:        path,
		OriginalRaw: bytes.Clone(node.Raw()),
		Original:    node.Scalar(),
		Value:       value,
		NewText:     newText,
		Type:        valueType,
		Warning:     castErr,
	}
	previous := node.String()
	if err := s.tree.SetScalar(id, value); err != nil {
		return nil, err
	}
	s.journal.Add(record)
	return &EditResult{
		Path:     path.String(),
		Previous: previous,
		Value:    value,
		Warning:  castErr,
	}, nil
}

// AmbiguousTarget reports a surgical patch whose original byte pattern
// occurred more than once in the file. The patch proceeded at the first
// occurrence; the right occurrence is not guaranteed
type AmbiguousTarget struct {
	Path    string
	Matches int
	Offset  int
}

// SaveReport describes what a save did
type SaveReport struct {
	Strategy Strategy
	Applied  int
	// NoChanges is set when the journal was empty and nothing was written
	NoChanges bool
	// Skipped lists surgical patches whose original bytes were not found
	Skipped   []string
	Ambiguous []AmbiguousTarget
	Warnings  []string
}

// Save re-serializes the session to the given path using its strategy,
// recomputing the declared-size header field. An empty journal writes
// nothing. After a successful save the journal is consumed and the
// session state is rebuilt from the written bytes
func (s *Session) Save(path string) (*SaveReport, error) {
	if s.tree == nil {
		return nil, ErrNoFile
	}
	report := &SaveReport{Strategy: s.strategy}
	if s.journal.Len() == 0 {
		report.NoChanges = true
		return report, nil
	}
	var raw []byte
	var err error
	switch s.strategy {
	case StrategySurgicalPatch:
		raw, err = s.renderSurgical(report)
	default:
		raw, err = s.renderFullReencode(report)
	}
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return nil, fmt.Errorf("write save file: %w", err)
	}
	if err := s.OpenBytes(raw); err != nil {
		return nil, fmt.Errorf("reload after save: %w", err)
	}
	s.filePath = path
	return report, nil
}

// renderFullReencode re-encodes the whole tree and rebuilds the container
// around it
func (s *Session) renderFullReencode(report *SaveReport) ([]byte, error) {
	payload, err := s.tree.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	s.save.SetPayload(payload)
	report.Applied = s.journal.Len()
	return s.save.Join(), nil
}

// renderSurgical splices each journaled edit into the original file bytes
// by searching for the edit's original encoding, in journal insertion
// order, then rewrites the declared-size field in place
func (s *Session) renderSurgical(report *SaveReport) ([]byte, error) {
	raw := bytes.Clone(s.raw)
	for _, record := range s.journal.Records() {
		pathStr := record.Path.String()
		if len(record.OriginalRaw) == 0 {
			report.Skipped = append(report.Skipped, pathStr)
			s.warnf("surgical patch %s: no original encoding, skipped", pathStr)
			continue
		}
		newBytes, err := cbor.EncodeScalar(record.Value)
		if err != nil {
			return nil, fmt.Errorf("encode replacement for %s: %w", pathStr, err)
		}
		index := bytes.Index(raw, record.OriginalRaw)
		if index < 0 {
			report.Skipped = append(report.Skipped, pathStr)
			s.warnf("surgical patch %s: original bytes not found, skipped", pathStr)
			continue
		}
		if matches := countMatches(raw, record.OriginalRaw); matches > 1 {
			report.Ambiguous = append(report.Ambiguous, AmbiguousTarget{
				Path:    pathStr,
				Matches: matches,
				Offset:  index,
			})
			s.warnf(
				"surgical patch %s: pattern %x occurs %d times, patching first occurrence at offset %d",
				pathStr,
				record.OriginalRaw,
				matches,
				index,
			)
		}
		patched := make([]byte, 0, len(raw)-len(record.OriginalRaw)+len(newBytes))
		patched = append(patched, raw[:index]...)
		patched = append(patched, newBytes...)
		patched = append(patched, raw[index+len(record.OriginalRaw):]...)
		raw = patched
		report.Applied++
	}
	if err := savefile.PatchSize(raw); err != nil {
		return nil, err
	}
	// Blind byte splicing can corrupt the payload when a pattern matched
	// inside unrelated data. Verify the result still decodes and surface
	// it, but keep the write: first-occurrence-wins is the defined
	// behavior
	if save, err := savefile.Split(raw); err == nil {
		if _, err := cbor.DecodeTree(save.Payload); err != nil {
			warning := fmt.Sprintf("patched payload no longer decodes: %s", err)
			report.Warnings = append(report.Warnings, warning)
			s.warnf("%s", warning)
		}
	}
	return raw, nil
}

func countMatches(data []byte, pattern []byte) int {
	count := 0
	for pos := 0; ; {
		index := bytes.Index(data[pos:], pattern)
		if index < 0 {
			return count
		}
		count++
		pos += index + len(pattern)
	}
}

func (s *Session) warnf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Warnf(format, args...)
	}
}
