package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/queuewise/queue-intel/internal/config"
	"github.com/queuewise/queue-intel/internal/events"
)

// NotificationService handles emitting notifications for domain events.
// Delivery mechanics live outside the engine; these handlers are
// fire-and-forget stubs nothing ever waits on.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotifyConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotifyConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventAnomalyDetected, n.handleAnomalyDetected)
	n.dispatcher.Subscribe(events.EventTicketRouted, n.handleTicketRouted)
}

func (n *NotificationService) handleAnomalyDetected(ctx context.Context, event events.Event) error {
	n.logger.Info("AnomalyDetected",
		zap.String("organization_id", event.OrganizationID),
		zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketRouted(ctx context.Context, event events.Event) error {
	n.logger.Debug("TicketRouted",
		zap.String("organization_id", event.OrganizationID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)))
}
