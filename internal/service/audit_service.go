package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/events"
)

// AuditService writes an audit trail line for every issue event.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.AuditConfig
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.AuditConfig) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil || !a.cfg.Enabled {
		return
	}
	a.dispatcher.Subscribe(events.EventIssueCreated, a.handleIssueCreated)
	a.dispatcher.Subscribe(events.EventIssueUpdated, a.handleIssueUpdated)
	a.dispatcher.Subscribe(events.EventIssueClosed, a.handleOpenChanged)
	a.dispatcher.Subscribe(events.EventIssueReopened, a.handleOpenChanged)
	a.dispatcher.Subscribe(events.EventIssueDeleted, a.handleIssueDeleted)
}

func (a *AuditService) handleIssueCreated(_ context.Context, event events.Event) error {
	a.logger.Info("IssueCreated", eventFields(event, zap.Any("payload", event.Payload))...)
	return nil
}

func (a *AuditService) handleIssueUpdated(_ context.Context, event events.Event) error {
	a.logger.Info("IssueUpdated", eventFields(event, zap.Any("payload", event.Payload))...)
	return nil
}

func (a *AuditService) handleOpenChanged(_ context.Context, event events.Event) error {
	msg := "IssueReopened"
	if event.Type == events.EventIssueClosed {
		msg = "IssueClosed"
	}
	a.logger.Info(msg, eventFields(event)...)
	return nil
}

func (a *AuditService) handleIssueDeleted(_ context.Context, event events.Event) error {
	a.logger.Info("IssueDeleted", eventFields(event)...)
	return nil
}

func eventFields(event events.Event, extra ...zap.Field) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("issue_id", event.IssueID),
		zap.String("project", event.Project),
		zap.Time("timestamp", event.Timestamp),
	}
	return append(fields, extra...)
}
