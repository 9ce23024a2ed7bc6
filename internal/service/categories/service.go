package categories

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kotche/carrot-notes/internal/metrics"
	"github.com/kotche/carrot-notes/internal/model"
	"github.com/kotche/carrot-notes/internal/repository/categories"
	"github.com/kotche/carrot-notes/internal/service/events"
)

const alertTitle = "Error"

type DefaultService struct {
	repo      categories.Repository
	alerter   Alerter
	publisher events.Publisher
	logger    *slog.Logger
}

func NewDefaultService(repo categories.Repository, alerter Alerter, publisher events.Publisher, logger *slog.Logger) *DefaultService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &DefaultService{
		repo:      repo,
		alerter:   alerter,
		publisher: publisher,
		logger:    logger,
	}
}

// WithAlerter returns a copy of the service that reports to alerter.
func (d *DefaultService) WithAlerter(alerter Alerter) *DefaultService {
	cp := *d
	cp.alerter = alerter
	return &cp
}

func (d *DefaultService) FetchCategories(ctx context.Context, userID model.UserID) []string {
	labels, err := d.repo.FetchCategories(ctx, userID)
	if err != nil {
		d.alert(ctx, "Fetching categories", err)
		return []string{}
	}
	return labels
}

func (d *DefaultService) FetchCategoriesResult(ctx context.Context, userID model.UserID) ([]string, error) {
	return d.repo.FetchCategories(ctx, userID)
}

func (d *DefaultService) AddCategories(ctx context.Context, userID model.UserID, labels []string) {
	added, err := d.repo.AddCategories(ctx, userID, labels)
	for _, label := range added {
		d.publish(ctx, model.EventCategoryAdded, userID, label)
	}
	if err != nil {
		d.alert(ctx, "Adding categories", err)
	}
}

func (d *DefaultService) UpdateCategory(ctx context.Context, userID model.UserID, oldLabel, newLabel string) {
	if err := d.repo.UpdateCategory(ctx, userID, oldLabel, newLabel); err != nil {
		d.alert(ctx, "Updating categories", err)
		return
	}
	d.publish(ctx, model.EventCategoryRenamed, userID, newLabel)
}

func (d *DefaultService) DeleteCategory(ctx context.Context, userID model.UserID, label string) {
	if err := d.repo.DeleteCategory(ctx, userID, label); err != nil {
		d.alert(ctx, "Deleting categories", err)
		return
	}
	d.publish(ctx, model.EventCategoryDeleted, userID, label)
}

func (d *DefaultService) alert(ctx context.Context, action string, err error) {
	d.logger.Error("category operation failed", "action", action, "error", err)
	metrics.AlertsShown.WithLabelValues(alertTitle).Inc()
	if d.alerter != nil {
		d.alerter.Alert(ctx, alertTitle, fmt.Sprintf("%s: %s", action, err.Error()))
	}
}

func (d *DefaultService) publish(ctx context.Context, eventType model.EventType, userID model.UserID, label string) {
	event := events.New(eventType)
	event.UserID = userID
	event.Category = label
	if err := d.publisher.Publish(ctx, event); err != nil {
		d.logger.Warn("failed to publish event", "type", eventType, "error", err)
	}
}
