package bot

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/telebot.v3"

	"github.com/kotche/carrot-notes/internal/app/screens"
	"github.com/kotche/carrot-notes/internal/model"
)

const (
	btnOpen          = "open"
	btnRemove        = "remove"
	btnFilter        = "filter"
	btnPage          = "page"
	btnSave          = "save"
	btnToggle        = "toggle"
	btnDelete        = "delete"
	btnDeleteConfirm = "delete_yes"
	btnDeleteCancel  = "delete_no"
	btnBack          = "back"

	buttonTitleLength = 24
	timeLayout        = "2006-01-02 15:04"

	notesPerPage      = 10
	filtersPerRow     = 3
	maxCategoryLength = 40
	// Telegram rejects longer texts.
	maxMessageLength = 4096
)

const helpMessage = "Available commands:\n" +
	"/signup <email> <password> - create an account\n" +
	"/signin <email> <password> - sign in\n" +
	"/signout - sign out\n" +
	"/password <current> <new> - change password\n" +
	"/list - show notes\n" +
	"/refresh - reload notes\n" +
	"/category <name> - category for the next note\n" +
	"/title <text> - title of the next or open note\n" +
	"/body <text> - body of the next or open note\n" +
	"/add - add the note\n" +
	"/filter <name|All> - show one category\n" +
	"/newcategory <name> - add a category\n" +
	"/renamecategory <old> | <new> - rename a category\n" +
	"/deletecategory <name> - delete a category\n" +
	"/help - show this message"

func renderList(l *screens.List, page int) string {
	var b strings.Builder

	b.WriteString("Notes")
	for _, label := range l.FilterOptions() {
		marker := ""
		if label == l.Filter() {
			marker = "*"
		}
		fmt.Fprintf(&b, " | %s%s (%d)", marker, label, l.Count(label))
	}
	b.WriteString("\n\n")

	filtered := l.FilteredNotes()
	if len(filtered) == 0 {
		b.WriteString("No notes yet.\n")
	}
	page = clampPage(page, len(filtered))
	start, end := pageBounds(page, len(filtered))
	for i, note := range filtered[start:end] {
		fmt.Fprintf(&b, "%d. %s %s", start+i+1, statusMark(note), displayTitle(note))
		if note.Category != "" {
			fmt.Fprintf(&b, " [%s]", note.Category)
		}
		b.WriteString("\n")
		if note.Note != "" {
			fmt.Fprintf(&b, "   %s\n", note.Note)
		}
	}
	if pages := pageCount(len(filtered)); pages > 1 {
		fmt.Fprintf(&b, "Page %d/%d\n", page+1, pages)
	}

	b.WriteString("\nNew note: ")
	if !l.InputsEnabled() {
		b.WriteString("pick a category with /category <name>")
		return b.String()
	}
	fmt.Fprintf(&b, "[%s] %q", l.Category(), l.Title())
	if l.NoteText() != "" {
		fmt.Fprintf(&b, " %q", l.NoteText())
	}
	if l.CanAdd() {
		b.WriteString(" - send /add to save")
	}
	return b.String()
}

// listMarkup carries note ids, page numbers and filter indexes in button data,
// never labels, so every button fits Telegram's 64-byte callback limit.
func listMarkup(l *screens.List, page int) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	var rows [][]telebot.InlineButton

	filtered := l.FilteredNotes()
	page = clampPage(page, len(filtered))
	start, end := pageBounds(page, len(filtered))
	for _, note := range filtered[start:end] {
		rows = append(rows, []telebot.InlineButton{
			{Unique: btnOpen, Text: truncate(displayTitle(note), buttonTitleLength), Data: string(note.ID)},
			{Unique: btnRemove, Text: "Delete", Data: string(note.ID)},
		})
	}

	if pageCount(len(filtered)) > 1 {
		var nav []telebot.InlineButton
		if page > 0 {
			nav = append(nav, telebot.InlineButton{Unique: btnPage, Text: "« Prev", Data: strconv.Itoa(page - 1)})
		}
		if page < pageCount(len(filtered))-1 {
			nav = append(nav, telebot.InlineButton{Unique: btnPage, Text: "Next »", Data: strconv.Itoa(page + 1)})
		}
		rows = append(rows, nav)
	}

	var filters []telebot.InlineButton
	for i, label := range l.FilterOptions() {
		if len(filters) == filtersPerRow {
			rows = append(rows, filters)
			filters = nil
		}
		filters = append(filters, telebot.InlineButton{
			Unique: btnFilter,
			Text:   truncate(fmt.Sprintf("%s (%d)", label, l.Count(label)), buttonTitleLength),
			Data:   strconv.Itoa(i),
		})
	}
	if len(filters) > 0 {
		rows = append(rows, filters)
	}

	markup.InlineKeyboard = rows
	return markup
}

func pageCount(notes int) int {
	if notes == 0 {
		return 1
	}
	return (notes + notesPerPage - 1) / notesPerPage
}

func clampPage(page, notes int) int {
	return max(0, min(page, pageCount(notes)-1))
}

func pageBounds(page, notes int) (int, int) {
	start := min(page*notesPerPage, notes)
	return start, min(start+notesPerPage, notes)
}

// splitMessage cuts text into chunks of at most limit characters, breaking
// at line ends where it can.
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, string(current))
			current = nil
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		runes := []rune(line)
		if len(current)+len(runes) > limit {
			flush()
		}
		for len(runes) > limit {
			chunks = append(chunks, string(runes[:limit]))
			runes = runes[limit:]
		}
		current = append(current, runes...)
	}
	flush()
	return chunks
}

func renderDetail(d *screens.Detail) string {
	note := d.Note()

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", statusMark(note), displayTitle(note))
	if note.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", note.Category)
	}
	if !note.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "Created: %s\n", note.CreatedAt.Local().Format(timeLayout))
	}
	fmt.Fprintf(&b, "\n%s\n", note.Note)

	if d.CanSave() {
		fmt.Fprintf(&b, "\nEdited title: %q\nEdited body: %q\n", d.EditTitle(), d.EditNote())
	}
	if d.ConfirmingDelete() {
		b.WriteString("\nDelete Note\nAre you sure you want to delete this note?")
	}
	return strings.TrimRight(b.String(), "\n")
}

func detailMarkup(d *screens.Detail) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}

	if d.ConfirmingDelete() {
		markup.InlineKeyboard = [][]telebot.InlineButton{
			{
				telebot.InlineButton{Unique: btnDeleteCancel, Text: "Cancel"},
				telebot.InlineButton{Unique: btnDeleteConfirm, Text: "Delete"},
			},
		}
		return markup
	}

	var first []telebot.InlineButton
	if d.CanSave() {
		first = append(first, telebot.InlineButton{Unique: btnSave, Text: "Update"})
	}
	first = append(first, telebot.InlineButton{Unique: btnToggle, Text: d.StatusLabel()})

	markup.InlineKeyboard = [][]telebot.InlineButton{
		first,
		{
			telebot.InlineButton{Unique: btnDelete, Text: "Delete"},
			telebot.InlineButton{Unique: btnBack, Text: "Back"},
		},
	}
	return markup
}

func statusMark(note model.Note) string {
	if note.Completed {
		return "[x]"
	}
	return "[ ]"
}

func displayTitle(note model.Note) string {
	if strings.TrimSpace(note.Title) == "" {
		return "(untitled)"
	}
	return note.Title
}

func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit-1]) + "…"
}
