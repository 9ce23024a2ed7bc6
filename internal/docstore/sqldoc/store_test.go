package sqldoc_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotche/carrot-notes/internal/docstore"
	"github.com/kotche/carrot-notes/internal/docstore/sqldoc"
	"github.com/kotche/carrot-notes/internal/model"
	categories_repo "github.com/kotche/carrot-notes/internal/repository/categories"
	notes_repo "github.com/kotche/carrot-notes/internal/repository/notes"
)

// openStores returns a migrated SQLite store, plus a Postgres one when
// POSTGRES_TEST_DSN is set.
func openStores(t *testing.T) map[string]*sqldoc.Store {
	t.Helper()

	stores := map[string]*sqldoc.Store{
		sqldoc.SQLite.Name: open(t, sqldoc.SQLite, filepath.Join(t.TempDir(), "notes.db")),
	}
	if dsn := os.Getenv("POSTGRES_TEST_DSN"); dsn != "" {
		stores[sqldoc.Postgres.Name] = open(t, sqldoc.Postgres, dsn)
	}
	return stores
}

func open(t *testing.T, dialect sqldoc.Dialect, dsn string) *sqldoc.Store {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := sqldoc.Open(ctx, dialect, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate())
	require.NoError(t, store.Migrate(), "second run must be a no-op")
	return store
}

// newUser keeps runs against a shared Postgres database apart.
func newUser(t *testing.T) model.UserID {
	t.Helper()
	id, err := docstore.NewID()
	require.NoError(t, err)
	return model.UserID(id)
}

func TestStore_NotesRepository(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := notes_repo.NewDefaultRepository(store)
			user := newUser(t)

			janID, err := repo.AddNote(ctx, model.Note{
				UserID:    user,
				Title:     "Jan",
				Note:      "a",
				Category:  "Home",
				CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			})
			require.NoError(t, err)
			febID, err := repo.AddNote(ctx, model.Note{
				UserID:    user,
				Title:     "Feb",
				CreatedAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			})
			require.NoError(t, err)
			_, err = repo.AddNote(ctx, model.Note{UserID: newUser(t), Title: "Other user"})
			require.NoError(t, err)

			body := "b"
			require.NoError(t, repo.UpdateNote(ctx, janID, model.NoteUpdate{Note: &body}))
			require.NoError(t, repo.ToggleStatus(ctx, janID, true))

			missing := "x"
			err = repo.UpdateNote(ctx, "no-such-note", model.NoteUpdate{Title: &missing})
			assert.ErrorIs(t, err, model.ErrNoteNotFound)

			notes, err := repo.FetchNotes(ctx, user)
			require.NoError(t, err)
			require.Len(t, notes, 2)

			assert.Equal(t, febID, notes[0].ID)
			assert.Equal(t, "Feb", notes[0].Title)
			assert.False(t, notes[0].Completed)

			jan := notes[1]
			assert.Equal(t, janID, jan.ID)
			assert.Equal(t, "Jan", jan.Title, "partial update keeps the title")
			assert.Equal(t, "b", jan.Note)
			assert.True(t, jan.Completed)
			assert.Equal(t, "Home", jan.Category)
			assert.Equal(t, user, jan.UserID)
			assert.True(t, jan.CreatedAt.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))

			require.NoError(t, repo.ToggleStatus(ctx, janID, false))
			require.NoError(t, repo.DeleteNote(ctx, febID))

			notes, err = repo.FetchNotes(ctx, user)
			require.NoError(t, err)
			require.Len(t, notes, 1)
			assert.Equal(t, janID, notes[0].ID)
			assert.False(t, notes[0].Completed)
		})
	}
}

func TestStore_CategoriesRepository(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := categories_repo.NewDefaultRepository(store)
			user := newUser(t)

			added, err := repo.AddCategories(ctx, user, []string{"Home", "Shopping"})
			require.NoError(t, err)
			assert.Equal(t, []string{"Home", "Shopping"}, added)

			added, err = repo.AddCategories(ctx, user, []string{"Home"})
			require.NoError(t, err)
			assert.Empty(t, added)

			require.NoError(t, repo.UpdateCategory(ctx, user, "Home", "House"))

			labels, err := repo.FetchCategories(ctx, user)
			require.NoError(t, err)
			assert.Equal(t, []string{"House", "Shopping"}, labels)

			require.NoError(t, repo.DeleteCategory(ctx, user, "Shopping"))
			labels, err = repo.FetchCategories(ctx, user)
			require.NoError(t, err)
			assert.Equal(t, []string{"House"}, labels)
		})
	}
}

func TestStore_Documents(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			user, err := docstore.NewID()
			require.NoError(t, err)

			openID, err := store.Insert(ctx, "tasks", docstore.Data{"userId": user, "done": false, "n": 1})
			require.NoError(t, err)
			doneID, err := store.Insert(ctx, "tasks", docstore.Data{"userId": user, "done": true})
			require.NoError(t, err)

			docs, err := store.Query(ctx, "tasks", docstore.Where{"userId": user, "done": true})
			require.NoError(t, err)
			require.Len(t, docs, 1)
			assert.Equal(t, doneID, docs[0].ID)

			require.NoError(t, store.Update(ctx, "tasks", openID, docstore.Data{"done": true}))
			docs, err = store.Query(ctx, "tasks", docstore.Where{"userId": user, "done": true})
			require.NoError(t, err)
			require.Len(t, docs, 2)
			for _, doc := range docs {
				if doc.ID == openID {
					assert.Equal(t, float64(1), doc.Data["n"], "update merges fields")
				}
			}

			err = store.Update(ctx, "tasks", "missing", docstore.Data{"done": true})
			assert.ErrorIs(t, err, docstore.ErrNotFound)

			require.NoError(t, store.Delete(ctx, "tasks", doneID))
			require.NoError(t, store.Delete(ctx, "tasks", doneID), "deleting twice is not an error")

			docs, err = store.Query(ctx, "tasks", docstore.ByField("userId", user))
			require.NoError(t, err)
			require.Len(t, docs, 1)
			assert.Equal(t, openID, docs[0].ID)
		})
	}
}
