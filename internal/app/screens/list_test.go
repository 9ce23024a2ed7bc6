package screens

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotche/carrot-notes/internal/model"
)

var fixedNow = time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)

func newTestList(svc *fakeNotes, cats *fakeCategories) *List {
	l := NewList(user("u1"), svc, cats, discardLogger())
	l.now = func() time.Time { return fixedNow }
	return l
}

func TestList_InputsDisabledWithPlaceholder(t *testing.T) {
	l := newTestList(&fakeNotes{}, &fakeCategories{})

	assert.Equal(t, CategoryPlaceholder, l.Category())
	assert.False(t, l.InputsEnabled())

	l.SetTitle("ignored")
	l.SetNote("ignored")
	assert.Empty(t, l.Title())
	assert.Empty(t, l.NoteText())

	l.SelectCategory("Home")
	assert.True(t, l.InputsEnabled())
	l.SetTitle("  Milk")
	assert.Equal(t, "Milk", l.Title())
}

func TestList_CanAdd(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  bool
	}{
		{name: "empty", title: "", want: false},
		{name: "two runes", title: "ab", want: false},
		{name: "trailing spaces do not count", title: "ab   ", want: false},
		{name: "three runes", title: "abc", want: true},
		{name: "multibyte", title: "ёжи", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestList(&fakeNotes{}, &fakeCategories{})
			l.SelectCategory("Home")
			l.SetTitle(tt.title)
			assert.Equal(t, tt.want, l.CanAdd())
		})
	}
}

func TestList_AddIsNoopWhenDisabled(t *testing.T) {
	svc := &fakeNotes{}
	l := newTestList(svc, &fakeCategories{})
	l.SelectCategory("Home")
	l.SetTitle("ab")

	require.NoError(t, l.Add(context.Background()))
	assert.Empty(t, svc.added)
	assert.Zero(t, svc.fetches)
}

func TestList_AddRefusesPlaceholderCategory(t *testing.T) {
	svc := &fakeNotes{}
	l := newTestList(svc, &fakeCategories{})
	l.SelectCategory("Home")
	l.SetTitle("Buy milk")
	l.SelectCategory(CategoryPlaceholder)

	require.NoError(t, l.Add(context.Background()))
	assert.Empty(t, svc.added)
}

func TestList_AddCreatesNoteAndResetsForm(t *testing.T) {
	svc := &fakeNotes{}
	l := newTestList(svc, &fakeCategories{})
	l.SelectCategory("Shopping")
	l.SetTitle("Buy milk  ")
	l.SetNote("two litres")

	require.NoError(t, l.Add(context.Background()))

	require.Len(t, svc.added, 1)
	assert.Equal(t, model.Note{
		UserID:    "u1",
		Title:     "Buy milk",
		Note:      "two litres",
		Completed: false,
		Category:  "Shopping",
		CreatedAt: fixedNow,
	}, svc.added[0])

	assert.Equal(t, 1, svc.fetches)
	require.Len(t, l.Notes(), 1)
	assert.Equal(t, "Buy milk", l.Notes()[0].Title)

	assert.Empty(t, l.Title())
	assert.Empty(t, l.NoteText())
	assert.Equal(t, CategoryPlaceholder, l.Category())
}

func TestList_AddErrorKeepsForm(t *testing.T) {
	boom := errors.New("permission denied")
	svc := &fakeNotes{err: boom}
	l := newTestList(svc, &fakeCategories{})
	l.SelectCategory("Home")
	l.SetTitle("Water plants")

	assert.ErrorIs(t, l.Add(context.Background()), boom)
	assert.Equal(t, "Water plants", l.Title())
	assert.Equal(t, "Home", l.Category())
}

func TestList_FocusSeedsDefaultCategories(t *testing.T) {
	cats := &fakeCategories{}
	l := newTestList(&fakeNotes{}, cats)

	l.Focus(context.Background())

	require.Len(t, cats.added, 1)
	assert.Equal(t, []string{"Home", "Shopping"}, cats.added[0])
	assert.Equal(t, []string{CategoryPlaceholder, "Home", "Shopping"}, l.CategoryOptions())
	assert.Equal(t, []string{FilterAll, "Home", "Shopping"}, l.FilterOptions())
}

func TestList_FocusKeepsExistingCategories(t *testing.T) {
	cats := &fakeCategories{labels: []string{"Work"}}
	svc := &fakeNotes{stored: []model.Note{
		{ID: "a", UserID: "u1", Title: "Mine"},
		{ID: "b", UserID: "u2", Title: "Theirs"},
	}}
	l := newTestList(svc, cats)

	l.Focus(context.Background())

	assert.Empty(t, cats.added)
	assert.Equal(t, []string{CategoryPlaceholder, "Work"}, l.CategoryOptions())
	require.Len(t, l.Notes(), 1)
	assert.Equal(t, model.NoteID("a"), l.Notes()[0].ID)
}

func TestList_FocusWithoutUser(t *testing.T) {
	svc := &fakeNotes{}
	cats := &fakeCategories{}
	l := NewList(user(""), svc, cats, discardLogger())

	l.Focus(context.Background())

	assert.Zero(t, svc.fetches)
	assert.Empty(t, cats.added)
	assert.Equal(t, []string{CategoryPlaceholder}, l.CategoryOptions())
}

func TestList_FilterAndCount(t *testing.T) {
	svc := &fakeNotes{stored: []model.Note{
		{ID: "1", UserID: "u1", Category: "Home"},
		{ID: "2", UserID: "u1", Category: "Shopping"},
		{ID: "3", UserID: "u1", Category: "Home"},
		{ID: "4", UserID: "u1"},
	}}
	l := newTestList(svc, &fakeCategories{labels: []string{"Home", "Shopping"}})
	l.Focus(context.Background())

	assert.Equal(t, FilterAll, l.Filter())
	assert.Len(t, l.FilteredNotes(), 4)
	assert.Equal(t, 4, l.Count(FilterAll))
	assert.Equal(t, 2, l.Count("Home"))
	assert.Equal(t, 1, l.Count("Shopping"))
	assert.Equal(t, 0, l.Count("Work"))

	l.SelectFilter("Home")
	filtered := l.FilteredNotes()
	require.Len(t, filtered, 2)
	assert.Equal(t, model.NoteID("1"), filtered[0].ID)
	assert.Equal(t, model.NoteID("3"), filtered[1].ID)
}

func TestList_Refresh(t *testing.T) {
	svc := &fakeNotes{stored: []model.Note{{ID: "1", UserID: "u1"}}}
	l := newTestList(svc, &fakeCategories{})

	var during bool
	svc.onFetch = func() { during = l.Refreshing() }

	l.Refresh(context.Background())

	assert.True(t, during)
	assert.False(t, l.Refreshing())
	assert.Len(t, l.Notes(), 1)
}

func TestList_RefreshErrorKeepsNotes(t *testing.T) {
	svc := &fakeNotes{stored: []model.Note{{ID: "1", UserID: "u1"}}}
	l := newTestList(svc, &fakeCategories{})
	l.Refresh(context.Background())

	svc.err = errors.New("unavailable")
	l.Refresh(context.Background())

	assert.False(t, l.Refreshing())
	assert.Len(t, l.Notes(), 1)
}

func TestList_DeleteNote(t *testing.T) {
	svc := &fakeNotes{stored: []model.Note{
		{ID: "1", UserID: "u1"},
		{ID: "2", UserID: "u1"},
	}}
	l := newTestList(svc, &fakeCategories{})
	l.Focus(context.Background())

	require.NoError(t, l.DeleteNote(context.Background(), "1"))

	assert.Equal(t, []model.NoteID{"1"}, svc.deleted)
	_, found := l.Find("1")
	assert.False(t, found)
	note, found := l.Find("2")
	assert.True(t, found)
	assert.Equal(t, model.NoteID("2"), note.ID)
}
