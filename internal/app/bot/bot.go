// Package bot is the Telegram frontend. Each chat gets its own session and
// pair of screens; commands and inline buttons drive the screens and the
// current screen is rendered back after every action.
package bot

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gopkg.in/telebot.v3"

	"github.com/kotche/carrot-notes/infrastructure/metrics"
	"github.com/kotche/carrot-notes/internal/model"
	"github.com/kotche/carrot-notes/internal/service/auth"
	"github.com/kotche/carrot-notes/internal/service/notes"
)

const (
	longProcessTimeout = 5
)

type Bot struct {
	bot           *telebot.Bot
	auth          auth.Service
	notes         notes.Service
	categoriesFor CategoriesFor
	logger        *slog.Logger

	mu    sync.Mutex
	chats map[int64]*chat
}

func New(bot *telebot.Bot, authServ auth.Service, notesServ notes.Service, categoriesFor CategoriesFor, logger *slog.Logger) *Bot {
	return &Bot{
		bot:           bot,
		auth:          authServ,
		notes:         notesServ,
		categoriesFor: categoriesFor,
		logger:        logger,
		chats:         make(map[int64]*chat),
	}
}

func (b *Bot) Start() {
	b.bot.Use(responseTime)

	b.commandHandlers()
	b.buttonHandlers()

	b.logger.Info("bot started")
	b.bot.Start()
}

func (b *Bot) Stop() {
	b.bot.Stop()
}

func (b *Bot) chat(id int64) *chat {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.chats[id]
	if !ok {
		c = newChat(b.auth, b.notes, b.categoriesFor, b.logger.With("chat_id", id))
		b.chats[id] = c
	}
	return c
}

type action func(ctx context.Context, c *chat, tc telebot.Context) reply

// handle serializes the action within its chat, then delivers queued alerts
// and the reply.
func (b *Bot) handle(act action) telebot.HandlerFunc {
	return func(tc telebot.Context) error {
		if tc.Callback() != nil {
			defer func() { _ = tc.Respond() }()
		}

		c := b.chat(tc.Chat().ID)
		c.mu.Lock()
		defer c.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), longProcessTimeout*time.Second)
		defer cancel()

		r := act(ctx, c, tc)

		for _, alert := range c.takeAlerts() {
			if err := tc.Send(alert); err != nil {
				b.logger.Error("failed to deliver alert", "error", err)
			}
		}
		return b.send(tc, c, r)
	}
}

func (b *Bot) send(tc telebot.Context, c *chat, r reply) error {
	switch {
	case r.view == viewDetail && c.detail != nil:
		if r.text != "" {
			if err := tc.Send(r.text); err != nil {
				return err
			}
		}
		return sendChunks(tc, renderDetail(c.detail), detailMarkup(c.detail))
	case r.view == viewList && c.list != nil:
		if r.text != "" {
			if err := tc.Send(r.text); err != nil {
				return err
			}
		}
		return sendChunks(tc, renderList(c.list, c.page), listMarkup(c.list, c.page))
	case r.text != "":
		return tc.Send(r.text)
	default:
		return nil
	}
}

// sendChunks sends text in as many messages as it takes, with the markup
// on the last one.
func sendChunks(tc telebot.Context, text string, markup *telebot.ReplyMarkup) error {
	chunks := splitMessage(text, maxMessageLength)
	for _, chunk := range chunks[:len(chunks)-1] {
		if err := tc.Send(chunk); err != nil {
			return err
		}
	}
	return tc.Send(chunks[len(chunks)-1], markup)
}

func (b *Bot) commandHandlers() {
	help := func(_ context.Context, _ *chat, _ telebot.Context) reply {
		return reply{text: helpMessage}
	}
	b.bot.Handle("/start", b.handle(help))
	b.bot.Handle("/help", b.handle(help))

	b.bot.Handle("/signup", b.handle(func(ctx context.Context, c *chat, tc telebot.Context) reply {
		defer deleteSecret(tc)
		return c.signUp(ctx, tc.Message().Payload)
	}))
	b.bot.Handle("/signin", b.handle(func(ctx context.Context, c *chat, tc telebot.Context) reply {
		defer deleteSecret(tc)
		return c.signIn(ctx, tc.Message().Payload)
	}))
	b.bot.Handle("/signout", b.handle(func(_ context.Context, c *chat, _ telebot.Context) reply {
		return c.signOut()
	}))
	b.bot.Handle("/password", b.handle(func(ctx context.Context, c *chat, tc telebot.Context) reply {
		defer deleteSecret(tc)
		return c.changePassword(ctx, tc.Message().Payload)
	}))

	b.bot.Handle("/list", b.handle(func(ctx context.Context, c *chat, _ telebot.Context) reply {
		return c.showList(ctx)
	}))
	b.bot.Handle("/refresh", b.handle(func(ctx context.Context, c *chat, _ telebot.Context) reply {
		return c.refresh(ctx)
	}))
	b.bot.Handle("/category", b.handle(func(_ context.Context, c *chat, tc telebot.Context) reply {
		return c.selectCategory(tc.Message().Payload)
	}))
	b.bot.Handle("/title", b.handle(func(_ context.Context, c *chat, tc telebot.Context) reply {
		return c.setTitle(tc.Message().Payload)
	}))
	b.bot.Handle("/body", b.handle(func(_ context.Context, c *chat, tc telebot.Context) reply {
		return c.setBody(tc.Message().Payload)
	}))
	b.bot.Handle("/add", b.handle(func(ctx context.Context, c *chat, _ telebot.Context) reply {
		return c.add(ctx)
	}))
	b.bot.Handle("/filter", b.handle(func(_ context.Context, c *chat, tc telebot.Context) reply {
		return c.selectFilter(tc.Message().Payload)
	}))
	b.bot.Handle("/newcategory", b.handle(func(ctx context.Context, c *chat, tc telebot.Context) reply {
		return c.newCategory(ctx, tc.Message().Payload)
	}))
	b.bot.Handle("/renamecategory", b.handle(func(ctx context.Context, c *chat, tc telebot.Context) reply {
		return c.renameCategory(ctx, tc.Message().Payload)
	}))
	b.bot.Handle("/deletecategory", b.handle(func(ctx context.Context, c *chat, tc telebot.Context) reply {
		return c.deleteCategory(ctx, tc.Message().Payload)
	}))

	b.bot.Handle(telebot.OnText, b.handle(func(_ context.Context, _ *chat, _ telebot.Context) reply {
		return reply{text: "Unknown command. Send /help for the list of commands."}
	}))
}

func (b *Bot) buttonHandlers() {
	b.bot.Handle(&telebot.InlineButton{Unique: btnOpen}, b.handle(func(_ context.Context, c *chat, tc telebot.Context) reply {
		return c.open(model.NoteID(tc.Data()))
	}))
	b.bot.Handle(&telebot.InlineButton{Unique: btnRemove}, b.handle(func(ctx context.Context, c *chat, tc telebot.Context) reply {
		return c.removeFromList(ctx, model.NoteID(tc.Data()))
	}))
	b.bot.Handle(&telebot.InlineButton{Unique: btnFilter}, b.handle(func(_ context.Context, c *chat, tc telebot.Context) reply {
		return c.selectFilterAt(tc.Data())
	}))
	b.bot.Handle(&telebot.InlineButton{Unique: btnPage}, b.handle(func(_ context.Context, c *chat, tc telebot.Context) reply {
		return c.turnPage(tc.Data())
	}))
	b.bot.Handle(&telebot.InlineButton{Unique: btnSave}, b.handle(func(ctx context.Context, c *chat, _ telebot.Context) reply {
		return c.save(ctx)
	}))
	b.bot.Handle(&telebot.InlineButton{Unique: btnToggle}, b.handle(func(ctx context.Context, c *chat, _ telebot.Context) reply {
		return c.toggle(ctx)
	}))
	b.bot.Handle(&telebot.InlineButton{Unique: btnDelete}, b.handle(func(_ context.Context, c *chat, _ telebot.Context) reply {
		return c.requestDelete()
	}))
	b.bot.Handle(&telebot.InlineButton{Unique: btnDeleteCancel}, b.handle(func(_ context.Context, c *chat, _ telebot.Context) reply {
		return c.cancelDelete()
	}))
	b.bot.Handle(&telebot.InlineButton{Unique: btnDeleteConfirm}, b.handle(func(ctx context.Context, c *chat, _ telebot.Context) reply {
		return c.confirmDelete(ctx)
	}))
	b.bot.Handle(&telebot.InlineButton{Unique: btnBack}, b.handle(func(ctx context.Context, c *chat, _ telebot.Context) reply {
		return c.back(ctx)
	}))
}

// deleteSecret removes messages carrying a password from the chat history.
func deleteSecret(tc telebot.Context) {
	_ = tc.Delete()
}

// responseTime records how long each update takes, labelled by command or button.
func responseTime(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(tc telebot.Context) error {
		start := time.Now()
		err := next(tc)
		metrics.ResponseTimeHistogram.WithLabelValues(endpoint(tc)).Observe(time.Since(start).Seconds())
		return err
	}
}

func endpoint(tc telebot.Context) string {
	if cb := tc.Callback(); cb != nil {
		return "button:" + cb.Unique
	}
	if msg := tc.Message(); msg != nil && strings.HasPrefix(msg.Text, "/") {
		command, _, _ := strings.Cut(msg.Text, " ")
		command, _, _ = strings.Cut(command, "@")
		return command
	}
	return "text"
}
