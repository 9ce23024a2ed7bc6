// Package screens holds the state machines behind the note list and note
// detail views. They are frontend agnostic: a view renders their state and
// forwards user actions to their methods.
package screens

import (
	"strings"
	"unicode"

	"github.com/kotche/carrot-notes/internal/model"
	"github.com/kotche/carrot-notes/internal/service/notes"
)

const (
	MaxTitleLength = notes.MaxTitleLength
	MaxNoteLength  = notes.MaxNoteLength
)

// Identity is the signed-in user, if any.
type Identity interface {
	UserID() (model.UserID, bool)
}

// Navigator is implemented by the frontend to leave the current screen.
type Navigator interface {
	GoBack()
}

// normalizeInput applies the text field rules: leading whitespace is dropped
// as the user types and the value is capped at limit characters.
func normalizeInput(text string, limit int) string {
	text = strings.TrimLeftFunc(text, unicode.IsSpace)
	if runes := []rune(text); len(runes) > limit {
		text = string(runes[:limit])
	}
	return text
}
