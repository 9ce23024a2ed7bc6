package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/telebot.v3"

	"github.com/kotche/carrot-notes/infrastructure/metrics"
	"github.com/kotche/carrot-notes/internal/app/notifier"
	"github.com/kotche/carrot-notes/internal/config"
	"github.com/kotche/carrot-notes/internal/logger"
	internal_metrics "github.com/kotche/carrot-notes/internal/metrics"
	"github.com/kotche/carrot-notes/internal/service/kafka"
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

	internal_metrics.Init()
	metrics.StartMetricsServer(cfg.MetricsConfig.Addr, log)

	kafkaServ, err := kafka.New(kafka.Options{
		Brokers:           cfg.KafkaConfig.Brokers,
		Topic:             cfg.KafkaConfig.Topic,
		GroupID:           cfg.KafkaConfig.GroupID,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}, log)
	if err != nil {
		log.Error("failed to initialize kafka", "error", err)
		os.Exit(1)
	}
	defer kafkaServ.Close()

	var sink notifier.Sink
	if cfg.TelegramConfig.TokenNotifyBot != "" && cfg.TelegramConfig.NotifyChatID != 0 {
		tb, err := telebot.NewBot(telebot.Settings{
			Token:  cfg.TelegramConfig.TokenNotifyBot,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		})
		if err != nil {
			log.Error("failed to create telegram bot", "error", err)
			os.Exit(1)
		}
		sink = notifier.NewChatSink(tb, cfg.TelegramConfig.NotifyChatID)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifierImpl := notifier.New(kafkaServ, sink, log)
	if err = notifierImpl.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("notifier stopped", "error", err)
	}
}
