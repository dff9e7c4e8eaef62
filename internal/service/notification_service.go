package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kabayemedia/ticketing/internal/config"
	"github.com/kabayemedia/ticketing/internal/events"
)

// NotificationService emits notifications for admission and purchase events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.PaymentConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.PaymentConfig) *NotificationService {
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
	n.dispatcher.Subscribe(events.EventEntryGranted, n.handleEntryGranted)
	n.dispatcher.Subscribe(events.EventEntryDenied, n.handleEntryDenied)
	n.dispatcher.Subscribe(events.EventTicketPurchased, n.handleTicketPurchased)
	n.dispatcher.Subscribe(events.EventPaymentSettled, n.handlePaymentSettled)
}

func (n *NotificationService) handleEntryGranted(ctx context.Context, event events.Event) error {
	n.logger.Info("EntryGranted", zap.String("ticket_ref", event.TicketRef), zap.Any("payload", event.Payload))
	n.sendWebhookStub(ctx, event)
	return nil
}

func (n *NotificationService) handleEntryDenied(ctx context.Context, event events.Event) error {
	n.logger.Info("EntryDenied", zap.String("ticket_ref", event.TicketRef), zap.Any("payload", event.Payload))
	n.sendWebhookStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketPurchased(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketPurchased", zap.String("ticket_ref", event.TicketRef), zap.Any("payload", event.Payload))
	n.sendEmailStub(ctx, event)
	return nil
}

func (n *NotificationService) handlePaymentSettled(ctx context.Context, event events.Event) error {
	n.logger.Info("PaymentSettled", zap.String("ticket_ref", event.TicketRef), zap.Any("payload", event.Payload))
	n.sendEmailStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.NotifyFromAddr) == "" {
		return
	}
	n.logger.Debug("sendEmailStub",
		zap.String("from", n.cfg.NotifyFromAddr),
		zap.String("ticket_ref", event.TicketRef),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_ref", event.TicketRef),
		zap.String("event_type", string(event.Type)))
}
