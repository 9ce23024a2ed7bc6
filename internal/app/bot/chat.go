package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/kotche/carrot-notes/internal/app/screens"
	"github.com/kotche/carrot-notes/internal/model"
	"github.com/kotche/carrot-notes/internal/service/auth"
	"github.com/kotche/carrot-notes/internal/service/categories"
	"github.com/kotche/carrot-notes/internal/service/notes"
)

type view int

const (
	viewText view = iota
	viewList
	viewDetail
)

// reply is what a chat action wants shown: a message and the screen to
// render after it.
type reply struct {
	text string
	view view
}

const (
	msgSignInFirst    = "Sign in first: /signin <email> <password> or /signup <email> <password>."
	msgPickCategory   = "Pick a category first with /category <name>."
	msgTitleTooShort  = "The title needs at least 3 characters."
	msgNoteNotFound   = "That note is no longer in your list."
	msgNoOpenNote     = "Open a note from /list first."
	msgNothingChanged = "Nothing to save."
)

// CategoriesFor binds the category service to the chat that shows its alerts.
type CategoriesFor func(alerter categories.Alerter) categories.Service

// chat is one conversation: its signed-in user and the screens it shows.
// Handlers hold mu for the whole action so a chat never runs two at once.
type chat struct {
	mu sync.Mutex

	auth       auth.Service
	notes      notes.Service
	categories categories.Service
	logger     *slog.Logger

	session *auth.Session
	list    *screens.List
	detail  *screens.Detail
	page    int

	alertsMu sync.Mutex
	alerts   []string
}

func newChat(authServ auth.Service, notesServ notes.Service, categoriesFor CategoriesFor, logger *slog.Logger) *chat {
	c := &chat{
		auth:   authServ,
		notes:  notesServ,
		logger: logger,
	}
	c.categories = categoriesFor(c)
	return c
}

func (c *chat) UserID() (model.UserID, bool) {
	return c.session.UserID()
}

// Alert queues a message; the handler delivers queued alerts before its reply.
func (c *chat) Alert(_ context.Context, title, message string) {
	c.alertsMu.Lock()
	defer c.alertsMu.Unlock()
	c.alerts = append(c.alerts, fmt.Sprintf("%s\n%s", title, message))
}

func (c *chat) takeAlerts() []string {
	c.alertsMu.Lock()
	defer c.alertsMu.Unlock()
	alerts := c.alerts
	c.alerts = nil
	return alerts
}

// GoBack closes the detail screen.
func (c *chat) GoBack() {
	c.detail = nil
}

func (c *chat) signedIn() bool {
	_, ok := c.session.UserID()
	return ok
}

func (c *chat) startSession(ctx context.Context, session *auth.Session) reply {
	c.session = session
	c.detail = nil
	c.list = screens.NewList(c, c.notes, c.categories, c.logger)
	c.page = 0
	c.list.Focus(ctx)
	return reply{text: fmt.Sprintf("Signed in as %s.", session.Email()), view: viewList}
}

func (c *chat) signUp(ctx context.Context, args string) reply {
	email, password, ok := twoArgs(args)
	if !ok {
		return reply{text: "Usage: /signup <email> <password>"}
	}
	session, err := c.auth.SignUp(ctx, email, password)
	if err != nil {
		return c.authFailure("sign up", err)
	}
	return c.startSession(ctx, session)
}

func (c *chat) signIn(ctx context.Context, args string) reply {
	email, password, ok := twoArgs(args)
	if !ok {
		return reply{text: "Usage: /signin <email> <password>"}
	}
	session, err := c.auth.SignIn(ctx, email, password)
	if err != nil {
		return c.authFailure("sign in", err)
	}
	return c.startSession(ctx, session)
}

func (c *chat) signOut() reply {
	c.session = nil
	c.list = nil
	c.page = 0
	c.detail = nil
	return reply{text: "Signed out."}
}

func (c *chat) changePassword(ctx context.Context, args string) reply {
	current, next, ok := twoArgs(args)
	if !ok {
		return reply{text: "Usage: /password <current> <new>"}
	}
	if err := c.auth.ChangePassword(ctx, c.session, current, next); err != nil {
		return c.authFailure("change password", err)
	}
	return reply{text: "Password updated."}
}

func (c *chat) authFailure(action string, err error) reply {
	c.logger.Warn("auth action failed", "action", action, "error", err)
	return reply{text: auth.Message(err)}
}

func (c *chat) showList(ctx context.Context) reply {
	if !c.signedIn() {
		return reply{text: msgSignInFirst}
	}
	c.detail = nil
	c.list.Focus(ctx)
	return reply{view: viewList}
}

func (c *chat) refresh(ctx context.Context) reply {
	if !c.signedIn() {
		return reply{text: msgSignInFirst}
	}
	c.list.Refresh(ctx)
	return reply{view: viewList}
}

func (c *chat) selectCategory(label string) reply {
	if !c.signedIn() {
		return reply{text: msgSignInFirst}
	}
	label = strings.TrimSpace(label)
	if label == "" {
		c.list.SelectCategory(screens.CategoryPlaceholder)
		return reply{text: "Category cleared.", view: viewList}
	}
	if !slices.Contains(c.list.CategoryOptions(), label) {
		return reply{text: fmt.Sprintf("Unknown category %q. Add it with /newcategory %s", label, label)}
	}
	c.list.SelectCategory(label)
	return reply{text: fmt.Sprintf("Category set to %s.", label), view: viewList}
}

// setTitle edits the open note, or the new-note form when no note is open.
func (c *chat) setTitle(text string) reply {
	if !c.signedIn() {
		return reply{text: msgSignInFirst}
	}
	if c.detail != nil {
		c.detail.SetTitle(text)
		return reply{view: viewDetail}
	}
	if !c.list.InputsEnabled() {
		return reply{text: msgPickCategory}
	}
	c.list.SetTitle(text)
	return reply{view: viewList}
}

func (c *chat) setBody(text string) reply {
	if !c.signedIn() {
		return reply{text: msgSignInFirst}
	}
	if c.detail != nil {
		c.detail.SetNote(text)
		return reply{view: viewDetail}
	}
	if !c.list.InputsEnabled() {
		return reply{text: msgPickCategory}
	}
	c.list.SetNote(text)
	return reply{view: viewList}
}

func (c *chat) add(ctx context.Context) reply {
	if !c.signedIn() {
		return reply{text: msgSignInFirst}
	}
	if !c.list.InputsEnabled() {
		return reply{text: msgPickCategory}
	}
	if !c.list.CanAdd() {
		return reply{text: msgTitleTooShort}
	}
	if err := c.list.Add(ctx); err != nil {
		return c.failure("add note", err)
	}
	return reply{text: "Note added.", view: viewList}
}

func (c *chat) selectFilter(label string) reply {
	if !c.signedIn() {
		return reply{text: msgSignInFirst}
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = screens.FilterAll
	}
	if !slices.Contains(c.list.FilterOptions(), label) {
		return reply{text: fmt.Sprintf("Unknown category %q.", label)}
	}
	c.list.SelectFilter(label)
	c.page = 0
	return reply{view: viewList}
}

// selectFilterAt selects the filter at the given position of the filter row.
func (c *chat) selectFilterAt(index string) reply {
	if !c.signedIn() {
		return reply{text: msgSignInFirst}
	}
	options := c.list.FilterOptions()
	i, err := strconv.Atoi(index)
	if err != nil || i < 0 || i >= len(options) {
		return reply{text: "That filter is gone. Send /list to reload.", view: viewList}
	}
	return c.selectFilter(options[i])
}

func (c *chat) turnPage(data string) reply {
	if !c.signedIn() {
		return reply{text: msgSignInFirst}
	}
	page, err := strconv.Atoi(data)
	if err != nil {
		return reply{view: viewList}
	}
	c.page = clampPage(page, len(c.list.FilteredNotes()))
	return reply{view: viewList}
}

func (c *chat) newCategory(ctx context.Context, label string) reply {
	userID, ok := c.session.UserID()
	if !ok {
		return reply{text: msgSignInFirst}
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return reply{text: "Usage: /newcategory <name>"}
	}
	if msg, ok := checkLabel(label); !ok {
		return reply{text: msg}
	}
	c.categories.AddCategories(ctx, userID, []string{label})
	c.list.Focus(ctx)
	return reply{view: viewList}
}

func (c *chat) renameCategory(ctx context.Context, args string) reply {
	userID, ok := c.session.UserID()
	if !ok {
		return reply{text: msgSignInFirst}
	}
	oldLabel, newLabel, found := strings.Cut(args, "|")
	oldLabel, newLabel = strings.TrimSpace(oldLabel), strings.TrimSpace(newLabel)
	if !found || oldLabel == "" || newLabel == "" {
		return reply{text: "Usage: /renamecategory <old> | <new>"}
	}
	if msg, ok := checkLabel(newLabel); !ok {
		return reply{text: msg}
	}
	c.categories.UpdateCategory(ctx, userID, oldLabel, newLabel)
	c.list.Focus(ctx)
	return reply{view: viewList}
}

// checkLabel rejects labels the screens reserve and labels too long to show.
func checkLabel(label string) (string, bool) {
	if label == screens.CategoryPlaceholder || label == screens.FilterAll {
		return fmt.Sprintf("%q is reserved, pick another name.", label), false
	}
	if utf8.RuneCountInString(label) > maxCategoryLength {
		return fmt.Sprintf("Category names can have at most %d characters.", maxCategoryLength), false
	}
	return "", true
}

func (c *chat) deleteCategory(ctx context.Context, label string) reply {
	userID, ok := c.session.UserID()
	if !ok {
		return reply{text: msgSignInFirst}
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return reply{text: "Usage: /deletecategory <name>"}
	}
	c.categories.DeleteCategory(ctx, userID, label)
	if c.list.Category() == label {
		c.list.SelectCategory(screens.CategoryPlaceholder)
	}
	if c.list.Filter() == label {
		c.list.SelectFilter(screens.FilterAll)
		c.page = 0
	}
	c.list.Focus(ctx)
	return reply{view: viewList}
}

func (c *chat) open(noteID model.NoteID) reply {
	if !c.signedIn() {
		return reply{text: msgSignInFirst}
	}
	note, ok := c.list.Find(noteID)
	if !ok {
		return reply{text: msgNoteNotFound, view: viewList}
	}
	c.detail = screens.NewDetail(note, c.notes, c)
	return reply{view: viewDetail}
}

func (c *chat) removeFromList(ctx context.Context, noteID model.NoteID) reply {
	if !c.signedIn() {
		return reply{text: msgSignInFirst}
	}
	if err := c.list.DeleteNote(ctx, noteID); err != nil {
		return c.failure("delete note", err)
	}
	return reply{text: "Note deleted.", view: viewList}
}

func (c *chat) save(ctx context.Context) reply {
	if c.detail == nil {
		return reply{text: msgNoOpenNote}
	}
	if !c.detail.CanSave() {
		return reply{text: msgNothingChanged, view: viewDetail}
	}
	if err := c.detail.Save(ctx); err != nil {
		return c.failure("update note", err)
	}
	return c.backToList(ctx, "Note updated.")
}

func (c *chat) toggle(ctx context.Context) reply {
	if c.detail == nil {
		return reply{text: msgNoOpenNote}
	}
	if err := c.detail.ToggleStatus(ctx); err != nil {
		return c.failure("update note status", err)
	}
	return c.backToList(ctx, "Status updated.")
}

func (c *chat) requestDelete() reply {
	if c.detail == nil {
		return reply{text: msgNoOpenNote}
	}
	c.detail.RequestDelete()
	return reply{view: viewDetail}
}

func (c *chat) cancelDelete() reply {
	if c.detail == nil {
		return reply{text: msgNoOpenNote}
	}
	c.detail.CancelDelete()
	return reply{view: viewDetail}
}

func (c *chat) confirmDelete(ctx context.Context) reply {
	if c.detail == nil {
		return reply{text: msgNoOpenNote}
	}
	if !c.detail.ConfirmingDelete() {
		return reply{view: viewDetail}
	}
	if err := c.detail.ConfirmDelete(ctx); err != nil {
		return c.failure("delete note", err)
	}
	return c.backToList(ctx, "Note deleted.")
}

func (c *chat) back(ctx context.Context) reply {
	c.GoBack()
	return c.backToList(ctx, "")
}

// backToList re-runs the list's load effects once the detail screen is gone.
func (c *chat) backToList(ctx context.Context, text string) reply {
	if !c.signedIn() {
		return reply{text: text}
	}
	if c.detail != nil {
		return reply{text: text, view: viewDetail}
	}
	c.list.Focus(ctx)
	return reply{text: text, view: viewList}
}

func (c *chat) failure(action string, err error) reply {
	userID, _ := c.session.UserID()
	c.logger.Error("note action failed", "action", action, "user_id", userID, "error", err)
	if errors.Is(err, context.DeadlineExceeded) {
		return reply{text: "The operation took too long. Please try again later."}
	}
	return reply{text: fmt.Sprintf("Could not %s: %v", action, err)}
}

func twoArgs(args string) (string, string, bool) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return "", "", false
	}
	return fields[0], fields[1], true
}
