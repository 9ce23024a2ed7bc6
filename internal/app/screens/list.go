package screens

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/kotche/carrot-notes/internal/model"
	"github.com/kotche/carrot-notes/internal/service/categories"
	"github.com/kotche/carrot-notes/internal/service/notes"
)

const (
	// CategoryPlaceholder is selected while no category has been chosen for
	// the next note. The title and body inputs are disabled in that state.
	CategoryPlaceholder = "Select an option"
	FilterAll           = "All"
	MinTitleLength      = 3
)

// DefaultCategories are seeded for users that have none.
var DefaultCategories = []string{"Home", "Shopping"}

type List struct {
	identity   Identity
	notes      notes.Service
	categories categories.Service
	logger     *slog.Logger
	now        func() time.Time

	title      string
	noteText   string
	category   string
	filter     string
	refreshing bool
	options    []string
	items      []model.Note
}

func NewList(identity Identity, notes notes.Service, categories categories.Service, logger *slog.Logger) *List {
	return &List{
		identity:   identity,
		notes:      notes,
		categories: categories,
		logger:     logger,
		now:        time.Now,
		category:   CategoryPlaceholder,
		filter:     FilterAll,
		options:    []string{CategoryPlaceholder},
		items:      []model.Note{},
	}
}

// Focus runs the screen's load effects: notes, and categories (seeding the
// defaults when the user has none). Nothing happens without a user.
func (l *List) Focus(ctx context.Context) {
	userID, ok := l.identity.UserID()
	if !ok {
		return
	}

	var (
		items   []model.Note
		options []string
		g       errgroup.Group
	)
	g.Go(func() error {
		items = l.notes.FetchNotes(ctx, userID)
		return nil
	})
	g.Go(func() error {
		options = l.loadCategories(ctx, userID)
		return nil
	})
	_ = g.Wait()

	l.items = items
	l.options = options
}

func (l *List) loadCategories(ctx context.Context, userID model.UserID) []string {
	fetched := l.categories.FetchCategories(ctx, userID)
	if len(fetched) == 0 {
		l.categories.AddCategories(ctx, userID, DefaultCategories)
		fetched = DefaultCategories
	}

	options := make([]string, 0, len(fetched)+1)
	options = append(options, CategoryPlaceholder)
	return append(options, fetched...)
}

// Refresh re-fetches the notes, with Refreshing reporting true meanwhile.
func (l *List) Refresh(ctx context.Context) {
	userID, ok := l.identity.UserID()
	if !ok {
		return
	}

	l.refreshing = true
	defer func() { l.refreshing = false }()

	fetched, err := l.notes.FetchNotesResult(ctx, userID)
	if err != nil {
		l.logger.Error("error refreshing notes", "user_id", userID, "error", err)
		return
	}
	l.items = fetched
}

func (l *List) Refreshing() bool {
	return l.refreshing
}

// CategoryOptions lists the choices for a new note's category, placeholder first.
func (l *List) CategoryOptions() []string {
	return l.options
}

func (l *List) SelectCategory(label string) {
	l.category = label
}

func (l *List) Category() string {
	return l.category
}

func (l *List) InputsEnabled() bool {
	return l.category != CategoryPlaceholder && l.category != ""
}

func (l *List) SetTitle(text string) {
	if !l.InputsEnabled() {
		return
	}
	l.title = normalizeInput(text, MaxTitleLength)
}

func (l *List) SetNote(text string) {
	if !l.InputsEnabled() {
		return
	}
	l.noteText = normalizeInput(text, MaxNoteLength)
}

func (l *List) Title() string {
	return l.title
}

func (l *List) NoteText() string {
	return l.noteText
}

func (l *List) CanAdd() bool {
	return utf8.RuneCountInString(strings.TrimSpace(l.title)) >= MinTitleLength
}

// Add creates a note from the form, re-fetches the list and clears the form.
// It is a no-op while CanAdd is false. On error the form is left as is.
func (l *List) Add(ctx context.Context) error {
	if !l.CanAdd() || !l.InputsEnabled() {
		return nil
	}
	userID, ok := l.identity.UserID()
	if !ok {
		return nil
	}

	note := model.Note{
		UserID:    userID,
		Title:     strings.TrimSpace(l.title),
		Note:      l.noteText,
		Completed: false,
		Category:  l.category,
		CreatedAt: l.now(),
	}
	if err := l.notes.AddNote(ctx, note); err != nil {
		return err
	}

	l.items = l.notes.FetchNotes(ctx, userID)
	l.resetForm()
	return nil
}

func (l *List) resetForm() {
	l.title = ""
	l.noteText = ""
	l.category = CategoryPlaceholder
}

// DeleteNote removes a note straight from the list and re-fetches.
func (l *List) DeleteNote(ctx context.Context, noteID model.NoteID) error {
	if noteID == "" {
		return nil
	}
	userID, ok := l.identity.UserID()
	if !ok {
		return nil
	}

	if err := l.notes.DeleteNote(ctx, noteID); err != nil {
		return err
	}
	l.items = l.notes.FetchNotes(ctx, userID)
	return nil
}

// FilterOptions lists the filter chips: "All" followed by every category.
func (l *List) FilterOptions() []string {
	options := make([]string, 0, len(l.options))
	options = append(options, FilterAll)
	return append(options, l.options[1:]...)
}

func (l *List) SelectFilter(label string) {
	l.filter = label
}

func (l *List) Filter() string {
	return l.filter
}

func (l *List) Notes() []model.Note {
	return l.items
}

func (l *List) FilteredNotes() []model.Note {
	if l.filter == FilterAll {
		return l.items
	}

	filtered := make([]model.Note, 0, len(l.items))
	for _, note := range l.items {
		if note.Category == l.filter {
			filtered = append(filtered, note)
		}
	}
	return filtered
}

// Count is the badge shown next to a filter chip.
func (l *List) Count(label string) int {
	if label == FilterAll {
		return len(l.items)
	}

	count := 0
	for _, note := range l.items {
		if note.Category == label {
			count++
		}
	}
	return count
}

func (l *List) Find(noteID model.NoteID) (model.Note, bool) {
	for _, note := range l.items {
		if note.ID == noteID {
			return note, true
		}
	}
	return model.Note{}, false
}
