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

// Package tui is the interactive tree browser and editor over an open
// editing session.
package tui

import (
	"encoding/hex"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/savetools/bgesav/cbor"
	"github.com/savetools/bgesav/editor"
	"github.com/savetools/bgesav/keypath"
	"github.com/savetools/bgesav/savefile"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorWhite  = lipgloss.Color("255")
	colorDim    = lipgloss.Color("240")

	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleSelected = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleNormal   = lipgloss.NewStyle().Foreground(colorWhite)
	styleDim      = lipgloss.NewStyle().Foreground(colorDim)
	styleSuccess  = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning  = lipgloss.NewStyle().Foreground(colorYellow)
	styleError    = lipgloss.NewStyle().Foreground(colorRed)
)

const maxRowValueLen = 60

// row is one visible line of the flattened tree
type row struct {
	id    string
	node  *editor.DisplayNode
	depth int
}

type mode int

const (
	modeBrowse mode = iota
	modeEdit
)

// Model is the bubbletea model for the tree editor
type Model struct {
	session *editor.Session

	root     *editor.DisplayNode
	rows     []row
	expanded map[string]bool

	cursor int
	offset int
	height int

	mode   mode
	input  string
	status string
	// statusErr renders the status line in the error style
	statusErr bool

	err error
}

// New builds a model over an already-open session
func New(session *editor.Session) (*Model, error) {
	root, err := session.DisplayTree()
	if err != nil {
		return nil, err
	}
	m := &Model{
		session:  session,
		root:     root,
		expanded: map[string]bool{"root": true},
		height:   20,
	}
	m.flatten()
	return m, nil
}

// Run opens the full-screen editor over the session and blocks until the
// user quits
func Run(session *editor.Session) error {
	m, err := New(session)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(*Model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

// flatten rebuilds the visible row list from the display tree and the
// expansion state. Row IDs are stable across rebuilds so expansion
// survives edits
func (m *Model) flatten() {
	m.rows = m.rows[:0]
	m.appendRows(m.root, "root", 0)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) appendRows(node *editor.DisplayNode, id string, depth int) {
	m.rows = append(m.rows, row{id: id, node: node, depth: depth})
	if !m.expanded[id] {
		return
	}
	for i, child := range node.Children {
		m.appendRows(child, fmt.Sprintf("%s/%d:%s", id, i, child.Label), depth+1)
	}
}

// refresh re-projects the display tree after an edit or save and
// reflattens
func (m *Model) refresh() error {
	root, err := m.session.DisplayTree()
	if err != nil {
		return err
	}
	m.root = root
	m.flatten()
	return nil
}

func (m *Model) current() *row {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return &m.rows[m.cursor]
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height - 10
		if m.height < 5 {
			m.height = 5
		}
	case tea.KeyMsg:
		if m.mode == modeEdit {
			return m.updateEdit(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			if m.cursor >= m.offset+m.height {
				m.offset = m.cursor - m.height + 1
			}
		}
	case "enter", " ":
		if r := m.current(); r != nil && len(r.node.Children) > 0 {
			m.expanded[r.id] = !m.expanded[r.id]
			m.flatten()
		}
	case "e":
		if r := m.current(); r != nil && r.node.Editable {
			m.mode = modeEdit
			m.input = ""
			m.status = ""
		}
	case "s":
		m.save()
	}
	return m, nil
}

func (m *Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.input = ""
	case "enter":
		m.commitEdit()
	case "backspace":
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.input += string(msg.Runes)
		} else if msg.Type == tea.KeySpace {
			m.input += " "
		}
	}
	return m, nil
}

// commitEdit applies the typed replacement to the current row, inferring
// the declared type from the node's current kind
func (m *Model) commitEdit() {
	r := m.current()
	if r == nil {
		m.mode = modeBrowse
		return
	}
	result, err := m.session.Edit(r.node.Path, m.input, m.inferType(r.node.Path))
	m.mode = modeBrowse
	m.input = ""
	if err != nil {
		m.setStatus(fmt.Sprintf("edit failed: %s", err), true)
		return
	}
	if err := m.refresh(); err != nil {
		m.err = err
		return
	}
	status := fmt.Sprintf("%s: %s -> %v", result.Path, result.Previous, result.Value)
	if result.Warning != nil {
		status += fmt.Sprintf(" (%s)", result.Warning)
	}
	m.setStatus(status, result.Warning != nil)
}

// inferType picks the edit type matching what the leaf already holds, so
// a plain value entry round-trips without an explicit type switch
func (m *Model) inferType(path keypath.Path) editor.ValueType {
	id, err := keypath.Resolve(m.session.Tree(), path)
	if err != nil {
		return editor.TypeText
	}
	switch m.session.Tree().Node(id).Kind() {
	case cbor.KindUint, cbor.KindNegInt:
		return editor.TypeInt
	case cbor.KindFloat:
		return editor.TypeFloat
	case cbor.KindBool:
		return editor.TypeBool
	default:
		return editor.TypeText
	}
}

func (m *Model) save() {
	path := m.session.FilePath()
	if path == "" {
		m.setStatus("no file path to save to", true)
		return
	}
	report, err := m.session.Save(path)
	if err != nil {
		m.setStatus(fmt.Sprintf("save failed: %s", err), true)
		return
	}
	if report.NoChanges {
		m.setStatus("no changes to save", false)
		return
	}
	if err := m.refresh(); err != nil {
		m.err = err
		return
	}
	status := fmt.Sprintf("saved %d edit(s) via %s", report.Applied, report.Strategy)
	warn := len(report.Skipped) > 0 || len(report.Ambiguous) > 0 || len(report.Warnings) > 0
	if len(report.Skipped) > 0 {
		status += fmt.Sprintf(", %d skipped", len(report.Skipped))
	}
	if len(report.Ambiguous) > 0 {
		status += fmt.Sprintf(", %d ambiguous", len(report.Ambiguous))
	}
	m.setStatus(status, warn)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render(fmt.Sprintf("bgesav — %s", m.session.FilePath())))
	b.WriteString("\n")
	b.WriteString(styleDim.Render("↑/↓ navigate  ⏎ expand  e edit  s save  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		b.WriteString(m.renderRow(r, i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderDetail())

	if m.mode == modeEdit {
		b.WriteString("\n")
		b.WriteString(styleTitle.Render("New value: "))
		b.WriteString(styleNormal.Render(m.input + "▌"))
	} else if m.status != "" {
		b.WriteString("\n")
		if m.statusErr {
			b.WriteString(styleError.Render(m.status))
		} else {
			b.WriteString(styleSuccess.Render(m.status))
		}
	}

	return b.String()
}

func (m *Model) renderRow(r row, selected bool) string {
	cursor := "  "
	if selected {
		cursor = "▸ "
	}
	marker := "  "
	if len(r.node.Children) > 0 {
		if m.expanded[r.id] {
			marker = "▾ "
		} else {
			marker = "▸ "
		}
	}
	value := r.node.Value
	if len(value) > maxRowValueLen {
		value = value[:maxRowValueLen] + "…"
	}
	line := fmt.Sprintf(
		"%s%s%s%s: %s",
		cursor,
		strings.Repeat("  ", r.depth),
		marker,
		r.node.Label,
		value,
	)
	switch {
	case selected:
		return styleSelected.Render(line)
	case r.node.Kind == editor.DisplayImage && r.node.Err != nil:
		return styleWarning.Render(line)
	case r.node.Editable:
		return styleNormal.Render(line)
	default:
		return styleDim.Render(line)
	}
}

// renderDetail shows the key-path/value/type panel for the selected row
func (m *Model) renderDetail() string {
	r := m.current()
	if r == nil {
		return ""
	}
	if r.node.Kind == editor.DisplayImage {
		return styleDim.Render(fmt.Sprintf(
			"Key Path: %s\n%s",
			r.node.Path,
			r.node.Value,
		))
	}
	if len(r.node.Path) == 0 {
		return styleDim.Render("Key Path: (root)")
	}
	if r.node.Kind == editor.DisplayHex {
		return styleDim.Render(fmt.Sprintf(
			"Key Path: %s\n%s",
			r.node.Path,
			hexDetail(r.node.Value),
		))
	}
	detail, err := m.session.Describe(r.node.Path)
	if err != nil {
		return styleError.Render(err.Error())
	}
	return styleDim.Render(detail)
}

const maxHexDetailBytes = 256

// hexDetail renders a byte-string leaf's hex text as an offset/hex/ascii
// dump, truncated for the panel
func hexDetail(hexText string) string {
	data, err := hex.DecodeString(hexText)
	if err != nil {
		return hexText
	}
	truncated := len(data) > maxHexDetailBytes
	if truncated {
		data = data[:maxHexDetailBytes]
	}
	out := strings.TrimRight(savefile.HexDump(data), "\n")
	if truncated {
		out += "\n…"
	}
	return out
}
