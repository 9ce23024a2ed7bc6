package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/telebot.v3"

	"github.com/kotche/carrot-notes/infrastructure/metrics"
	"github.com/kotche/carrot-notes/infrastructure/tracing"
	"github.com/kotche/carrot-notes/internal/app/bot"
	"github.com/kotche/carrot-notes/internal/config"
	"github.com/kotche/carrot-notes/internal/docstore"
	"github.com/kotche/carrot-notes/internal/logger"
	internal_metrics "github.com/kotche/carrot-notes/internal/metrics"
	categories_repo "github.com/kotche/carrot-notes/internal/repository/categories"
	notes_repo "github.com/kotche/carrot-notes/internal/repository/notes"
	"github.com/kotche/carrot-notes/internal/service/auth"
	categories_serv "github.com/kotche/carrot-notes/internal/service/categories"
	"github.com/kotche/carrot-notes/internal/service/events"
	"github.com/kotche/carrot-notes/internal/service/kafka"
	notes_serv "github.com/kotche/carrot-notes/internal/service/notes"
)

const (
	connectTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.New(logger.Config{}).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Format:      cfg.LogConfig.Format,
		Environment: cfg.LogConfig.Environment,
		Level:       logger.ParseLevel(cfg.LogConfig.Level),
	})

	if err = cfg.RequireBotToken(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	metrics.Init()
	internal_metrics.Init()
	metrics.StartMetricsServer(cfg.MetricsConfig.Addr, log)

	if cfg.TracingConfig.Endpoint != "" {
		_, cleanup, err := tracing.InitTracing(cfg.TracingConfig.Endpoint, "carrot-notes-bot", log)
		if err != nil {
			log.Error("failed to init tracing", "error", err)
			os.Exit(1)
		}
		defer cleanup()
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	store, closeStore, err := openStore(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Error("failed to open document store", "driver", cfg.StoreConfig.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()
	store = docstore.Instrument(store)

	var publisher events.Publisher = events.Noop{}
	if cfg.KafkaConfig.Enabled {
		kafkaServ, err := kafka.New(kafka.Options{
			Brokers:           cfg.KafkaConfig.Brokers,
			Topic:             cfg.KafkaConfig.Topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}, log)
		if err != nil {
			log.Error("failed to initialize kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaServ.Close()
		publisher = events.NewBrokerPublisher(kafkaServ)
	}

	tb, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.TelegramConfig.TokenNotesBot,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		log.Error("failed to create telegram bot", "error", err)
		os.Exit(1)
	}

	notesServ := notes_serv.NewDefaultService(notes_repo.NewDefaultRepository(store), publisher, log)
	categoriesServ := categories_serv.NewDefaultService(categories_repo.NewDefaultRepository(store), nil, publisher, log)
	authServ := auth.NewDefaultService(store, log)

	botImpl := bot.New(tb, authServ, notesServ, func(alerter categories_serv.Alerter) categories_serv.Service {
		return categoriesServ.WithAlerter(alerter)
	}, log)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info("shutting down")
		botImpl.Stop()
	}()

	botImpl.Start()
}
