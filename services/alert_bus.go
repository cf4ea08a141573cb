package services

import (
	"context"

	"github.com/ronit-gandhi/meal-shame-tracker/engine"
	"github.com/ronit-gandhi/meal-shame-tracker/models"
	"go.uber.org/zap"
)

const (
	EventMealLogged    = "meal.logged"
	EventCommentPosted = "comment.posted"
)

// Event is what live clients and push subscribers receive after a write.
type Event struct {
	Kind    string           `json:"kind"`
	Entry   models.MealEntry `json:"entry"`
	Tier    engine.Tier      `json:"tier,omitempty"`
	Roast   string           `json:"roast,omitempty"`
	Comment *models.Comment  `json:"comment,omitempty"`
}

type EventSink interface {
	Emit(ctx context.Context, ev Event)
}

type nopSink struct{}

func (nopSink) Emit(context.Context, Event) {}

type Broadcaster interface {
	Broadcast(payload any)
}

type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// AlertBus fans a write out to websocket clients and push. Both legs are
// optional and neither can fail the write that triggered it.
type AlertBus struct {
	hub  Broadcaster
	push Notifier
	log  *zap.Logger
}

func NewAlertBus(hub Broadcaster, push Notifier, log *zap.Logger) *AlertBus {
	if log == nil {
		log = zap.NewNop()
	}
	return &AlertBus{hub: hub, push: push, log: log}
}

func (b *AlertBus) Emit(ctx context.Context, ev Event) {
	if b.hub != nil {
		b.hub.Broadcast(ev)
	}
	if b.push != nil {
		if err := b.push.Notify(ctx, ev); err != nil {
			b.log.Warn("push notification failed",
				zap.String("kind", ev.Kind),
				zap.String("id", ev.Entry.ID),
				zap.Error(err),
			)
		}
	}
}
