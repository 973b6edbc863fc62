package dialogue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypewriterRevealsOverTime(t *testing.T) {
	m := NewManager()
	m.StartDialogue([]Line{{Speaker: "Alice", Text: "Hello"}})
	assert.True(t, m.IsDialogueActive())

	speaker, text := m.Current()
	assert.Equal(t, "Alice", speaker)
	assert.Equal(t, "", text)

	m.Update(100 * time.Millisecond) // 2 characters at 20/s
	_, text = m.Current()
	assert.Equal(t, "He", text)

	m.Update(time.Second)
	_, text = m.Current()
	assert.Equal(t, "Hello", text)
	assert.True(t, m.LineComplete())
}

func TestAdvanceSkipsThenMovesOn(t *testing.T) {
	m := NewManager()
	m.StartDialogue([]Line{{Text: "first"}, {Text: "second"}})

	m.Advance()
	_, text := m.Current()
	assert.Equal(t, "first", text, "first advance completes the line")

	m.Advance()
	_, text = m.Current()
	assert.Equal(t, "", text, "second advance starts the next line")

	m.Advance()
	m.Advance()
	assert.False(t, m.IsDialogueActive(), "advancing past the last line ends the dialogue")
}

func TestStartWithNoLinesStaysIdle(t *testing.T) {
	m := NewManager()
	m.StartDialogue(nil)
	assert.False(t, m.IsDialogueActive())
	m.Advance()
	m.Update(time.Second)
	assert.False(t, m.IsDialogueActive())
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits", "short line", 20, []string{"short line"}},
		{"breaks on words", "the quick brown fox", 10, []string{"the quick", "brown fox"}},
		{"long word kept", "extraordinarily long", 5, []string{"extraordinarily", "long"}},
		{"counts runes not bytes", "héllo wörld", 11, []string{"héllo wörld"}},
		{"empty", "", 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Wrap(tt.text, tt.width))
		})
	}
}
