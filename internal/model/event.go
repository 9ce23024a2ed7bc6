package model

import "time"

type EventType string

const (
	EventNoteCreated     EventType = "note.created"
	EventNoteUpdated     EventType = "note.updated"
	EventNoteToggled     EventType = "note.toggled"
	EventNoteDeleted     EventType = "note.deleted"
	EventCategoryAdded   EventType = "category.added"
	EventCategoryRenamed EventType = "category.renamed"
	EventCategoryDeleted EventType = "category.deleted"
)

// Event describes a mutation that reached the document store.
type Event struct {
	ID       string    `json:"id"`
	Type     EventType `json:"type"`
	UserID   UserID    `json:"userId,omitempty"`
	NoteID   NoteID    `json:"noteId,omitempty"`
	Category string    `json:"category,omitempty"`
	At       time.Time `json:"at"`
}
