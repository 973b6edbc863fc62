// Package dialogue runs NPC conversations: a queue of lines revealed one
// character at a time, skipped to the end or advanced by the player.
package dialogue

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Line is one piece of dialogue
type Line struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Service is what blocks and actors need from the dialogue system
type Service interface {
	StartDialogue(lines []Line)
	IsDialogueActive() bool
}

// DefaultCharsPerSecond matches a 0.05 s per character typewriter
const DefaultCharsPerSecond = 20

// Manager is the typewriter implementation of Service
type Manager struct {
	CharsPerSecond float64

	lines    []Line
	index    int
	revealed float64 // characters of the current line shown so far
	active   bool
}

// NewManager creates an idle dialogue manager
func NewManager() *Manager {
	return &Manager{CharsPerSecond: DefaultCharsPerSecond}
}

// StartDialogue replaces any running conversation with lines.
// Starting with no lines leaves the manager idle.
func (m *Manager) StartDialogue(lines []Line) {
	m.lines = append([]Line(nil), lines...)
	m.index = 0
	m.revealed = 0
	m.active = len(m.lines) > 0
}

// IsDialogueActive reports whether a conversation is on screen
func (m *Manager) IsDialogueActive() bool {
	return m.active
}

// Update reveals more of the current line
func (m *Manager) Update(dt time.Duration) {
	if !m.active {
		return
	}
	m.revealed += dt.Seconds() * m.CharsPerSecond
	if full := float64(m.currentLength()); m.revealed > full {
		m.revealed = full
	}
}

// Advance finishes the current line if it is still typing, otherwise moves
// to the next line, ending the conversation after the last one.
func (m *Manager) Advance() {
	if !m.active {
		return
	}
	if !m.LineComplete() {
		m.revealed = float64(m.currentLength())
		return
	}
	m.index++
	m.revealed = 0
	if m.index >= len(m.lines) {
		m.End()
	}
}

// End closes the conversation immediately
func (m *Manager) End() {
	m.active = false
	m.lines = nil
	m.index = 0
	m.revealed = 0
}

// LineComplete reports whether the whole current line is visible
func (m *Manager) LineComplete() bool {
	return int(m.revealed) >= m.currentLength()
}

// Current returns the speaker and the visible part of the current line
func (m *Manager) Current() (speaker, text string) {
	if !m.active {
		return "", ""
	}
	line := m.lines[m.index]
	runes := []rune(line.Text)
	n := int(m.revealed)
	if n > len(runes) {
		n = len(runes)
	}
	return line.Speaker, string(runes[:n])
}

func (m *Manager) currentLength() int {
	if m.index >= len(m.lines) {
		return 0
	}
	return len([]rune(m.lines[m.index].Text))
}

// Wrap breaks text into lines of at most charsPerLine characters on word
// boundaries. Words longer than a line are kept whole.
func Wrap(text string, charsPerLine int) []string {
	if charsPerLine < 1 {
		charsPerLine = 1
	}

	var lines []string
	var current string
	for _, word := range strings.Fields(text) {
		if current != "" && utf8.RuneCountInString(current)+utf8.RuneCountInString(word)+1 > charsPerLine {
			lines = append(lines, current)
			current = ""
		}
		if current != "" {
			current += " "
		}
		current += word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
