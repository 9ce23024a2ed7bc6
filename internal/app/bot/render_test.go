package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"

	"github.com/kotche/carrot-notes/internal/app/screens"
	"github.com/kotche/carrot-notes/internal/model"
	categories_serv "github.com/kotche/carrot-notes/internal/service/categories"
)

func TestRenderList(t *testing.T) {
	c, _ := signedUp(t)
	addNote(t, c, "Home", "Water plants")
	c.list.SelectFilter("Home")

	text := renderList(c.list, 0)
	assert.Contains(t, text, "All (1)")
	assert.Contains(t, text, "*Home (1)")
	assert.Contains(t, text, "Shopping (0)")
	assert.Contains(t, text, "1. [ ] Water plants [Home]")
	assert.Contains(t, text, "pick a category")

	c.selectCategory("Shopping")
	c.setTitle("Buy milk")
	text = renderList(c.list, 0)
	assert.Contains(t, text, `[Shopping] "Buy milk" - send /add to save`)

	markup := listMarkup(c.list, 0)
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, btnOpen, markup.InlineKeyboard[0][0].Unique)
	assert.Equal(t, btnRemove, markup.InlineKeyboard[0][1].Unique)
	require.Len(t, markup.InlineKeyboard[1], 3)
	for i, button := range markup.InlineKeyboard[1] {
		assert.Equal(t, btnFilter, button.Unique)
		assert.Equal(t, strconv.Itoa(i), button.Data)
	}
	assert.NotContains(t, text, "Page")
}

func TestRenderList_StaysWithinTelegramLimits(t *testing.T) {
	c, _ := signedUp(t)
	ctx := context.Background()

	long := strings.Repeat("д", maxCategoryLength)
	require.Equal(t, viewList, c.newCategory(ctx, long).view)

	body := strings.Repeat("b", 200)
	for i := 0; i < 25; i++ {
		c.selectCategory(long)
		c.setTitle(fmt.Sprintf("Note %02d %s", i, strings.Repeat("t", 60)))
		c.setBody(body)
		require.Equal(t, "Note added.", c.add(ctx).text)
	}
	c.selectFilter(long)

	seen := map[model.NoteID]bool{}
	pages := pageCount(25)
	require.Equal(t, 3, pages)

	for page := 0; page < pages; page++ {
		text := renderList(c.list, page)
		for _, chunk := range splitMessage(text, maxMessageLength) {
			assert.LessOrEqual(t, utf8.RuneCountInString(chunk), maxMessageLength)
		}

		markup := listMarkup(c.list, page)
		assert.LessOrEqual(t, len(markup.InlineKeyboard), notesPerPage+3)
		for _, row := range markup.InlineKeyboard {
			assert.LessOrEqual(t, len(row), filtersPerRow)
			for _, button := range row {
				assert.LessOrEqual(t, len("\f"+button.Unique+"|"+button.Data), 64, button.Text)
				if button.Unique == btnOpen {
					seen[model.NoteID(button.Data)] = true
				}
			}
		}
	}
	assert.Len(t, seen, 25)

	assert.Contains(t, renderList(c.list, 0), "Page 1/3")
	last := renderList(c.list, 99)
	assert.Contains(t, last, "Page 3/3")
	assert.Contains(t, last, "25. [ ]")
}

func TestListMarkup_PageButtons(t *testing.T) {
	c, _ := signedUp(t)
	for i := 0; i < notesPerPage*2+1; i++ {
		addNote(t, c, "Home", fmt.Sprintf("Note %02d", i))
	}

	pageRow := func(page int) []telebot.InlineButton {
		rows := listMarkup(c.list, page).InlineKeyboard
		return rows[len(rows)-2]
	}

	first := pageRow(0)
	require.Len(t, first, 1)
	assert.Equal(t, btnPage, first[0].Unique)
	assert.Equal(t, "1", first[0].Data)

	middle := pageRow(1)
	require.Len(t, middle, 2)
	assert.Equal(t, "0", middle[0].Data)
	assert.Equal(t, "2", middle[1].Data)

	last := pageRow(2)
	require.Len(t, last, 1)
	assert.Equal(t, "1", last[0].Data)
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))

	chunks := splitMessage("aaaa\nbbbb\ncc", 10)
	assert.Equal(t, []string{"aaaa\nbbbb\n", "cc"}, chunks)

	chunks = splitMessage(strings.Repeat("я", 25), 10)
	require.Len(t, chunks, 3)
	assert.Equal(t, strings.Repeat("я", 10), chunks[0])
	assert.Equal(t, strings.Repeat("я", 5), chunks[2])
	assert.Equal(t, strings.Repeat("я", 25), strings.Join(chunks, ""))
}

func TestRenderList_Empty(t *testing.T) {
	c, _ := signedUp(t)
	assert.Contains(t, renderList(c.list, 0), "No notes yet.")
}

func TestRenderDetail(t *testing.T) {
	note := model.Note{
		ID:        "1",
		Title:     "",
		Note:      "Test note",
		Category:  "Home",
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 0, 0, time.UTC),
	}
	d := screens.NewDetail(note, nil, nil)

	text := renderDetail(d)
	assert.Contains(t, text, "[ ] (untitled)")
	assert.Contains(t, text, "Category: Home")
	assert.Contains(t, text, "Test note")
	assert.NotContains(t, text, "Edited")

	markup := detailMarkup(d)
	require.Len(t, markup.InlineKeyboard, 2)
	require.Len(t, markup.InlineKeyboard[0], 1)
	assert.Equal(t, "Mark as Complete", markup.InlineKeyboard[0][0].Text)

	d.SetNote("Updated note")
	assert.Contains(t, renderDetail(d), `Edited body: "Updated note"`)
	assert.Equal(t, btnSave, detailMarkup(d).InlineKeyboard[0][0].Unique)

	d.RequestDelete()
	assert.Contains(t, renderDetail(d), "Are you sure you want to delete this note?")
	confirm := detailMarkup(d).InlineKeyboard
	require.Len(t, confirm, 1)
	assert.Equal(t, btnDeleteCancel, confirm[0][0].Unique)
	assert.Equal(t, btnDeleteConfirm, confirm[0][1].Unique)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "абв…", truncate("абвгдеж", 4))
}

func TestEndpoint(t *testing.T) {
	tb, err := telebot.NewBot(telebot.Settings{Offline: true})
	require.NoError(t, err)

	tests := []struct {
		name   string
		update telebot.Update
		want   string
	}{
		{
			name:   "command with payload",
			update: telebot.Update{Message: &telebot.Message{Text: "/title Buy milk"}},
			want:   "/title",
		},
		{
			name:   "command addressed to the bot",
			update: telebot.Update{Message: &telebot.Message{Text: "/list@carrot_notes_bot"}},
			want:   "/list",
		},
		{
			name:   "plain text",
			update: telebot.Update{Message: &telebot.Message{Text: "hello"}},
			want:   "text",
		},
		{
			name:   "button",
			update: telebot.Update{Callback: &telebot.Callback{Unique: btnToggle}},
			want:   "button:toggle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, endpoint(tb.NewContext(tt.update)))
		})
	}
}

func TestBot_ChatsAreIsolated(t *testing.T) {
	c, _ := newTestChat(t)
	b := New(nil, c.auth, c.notes, func(alerter categories_serv.Alerter) categories_serv.Service {
		return categories_serv.NewDefaultService(nil, alerter, nil, c.logger)
	}, c.logger)

	first := b.chat(42)
	assert.Same(t, first, b.chat(42))

	other := b.chat(43)
	assert.NotSame(t, first, other)

	first.Alert(context.Background(), "Error", "boom")
	assert.Empty(t, other.takeAlerts())
	assert.Equal(t, []string{"Error\nboom"}, first.takeAlerts())
}
