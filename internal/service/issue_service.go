package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/observability"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

// Operation names used for metrics and logs.
const (
	OpCreate = "create"
	OpList   = "list"
	OpUpdate = "update"
	OpDelete = "delete"
)

// IssueService implements the issue create/list/update/delete rules on top of an
// IssueRepository. It keeps no mutable state between calls.
type IssueService struct {
	issues     repository.IssueRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// IssueDependencies bundles collaborators for the issue service.
type IssueDependencies struct {
	IssueRepo  repository.IssueRepository
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	// Clock defaults to time.Now in UTC.
	Clock func() time.Time
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	svc := &IssueService{
		issues:     deps.IssueRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        deps.Clock,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.now == nil {
		svc.now = func() time.Time { return time.Now().UTC() }
	}
	return svc
}

// CreateIssue validates the payload and persists a new open issue under project.
// The stored record, including its generated id, is returned.
func (s *IssueService) CreateIssue(ctx context.Context, project string, payload Payload) (*domain.Issue, error) {
	issue, err := validateCreate(project, payload)
	if err != nil {
		return nil, s.fail(OpCreate, err)
	}

	now := s.now()
	issue.CreatedOn = now
	issue.UpdatedOn = now

	if err := s.issues.Insert(ctx, issue); err != nil {
		s.logger.Error("insert issue failed", zap.String("project", project), zap.Error(err))
		return nil, s.fail(OpCreate, apperrors.NewInternalError(err))
	}

	s.metrics.RecordOperation(OpCreate, "ok")
	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueCreated,
		IssueID: issue.ID,
		Project: issue.Project,
		Payload: events.IssueCreatedPayload{
			Title:      issue.Title,
			CreatedBy:  issue.CreatedBy,
			AssignedTo: issue.AssignedTo,
		},
	})
	return issue, nil
}

// ListIssues returns the issues of project matching the query filters. The result is
// never nil; an unknown project simply has no issues.
func (s *IssueService) ListIssues(ctx context.Context, project string, query map[string]string) ([]domain.Issue, error) {
	normalized := NormalizeFilter(project, query)
	if len(normalized.Ignored) > 0 {
		s.logger.Debug("filter keys name no issue field", zap.Strings("keys", normalized.Ignored))
	}
	if !normalized.Satisfiable {
		s.metrics.RecordOperation(OpList, "ok")
		return []domain.Issue{}, nil
	}

	issues, err := s.issues.FindMany(ctx, normalized.Filter)
	if err != nil {
		s.logger.Error("find issues failed", zap.String("project", project), zap.Error(err))
		return nil, s.fail(OpList, apperrors.NewInternalError(err))
	}
	if issues == nil {
		issues = []domain.Issue{}
	}

	s.metrics.RecordOperation(OpList, "ok")
	return issues, nil
}

// UpdateIssue merges the fields present in payload into the issue addressed by _id and
// returns that id. The issue is addressed by id alone; project is advisory.
func (s *IssueService) UpdateIssue(ctx context.Context, project string, payload Payload) (string, error) {
	id, patch, err := validateUpdate(payload)
	if err != nil {
		return id, s.fail(OpUpdate, err)
	}

	issue, err := s.issues.UpdateByID(ctx, id, patch, s.now())
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("update issue failed", zap.String("id", id), zap.Error(err))
		}
		return id, s.fail(OpUpdate, apperrors.NewUpdateFailed(id, err))
	}

	if issue.Project != project {
		s.logger.Debug("issue updated through another project's route",
			zap.String("id", id), zap.String("route_project", project), zap.String("project", issue.Project))
	}

	s.metrics.RecordOperation(OpUpdate, "ok")
	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueUpdated,
		IssueID: issue.ID,
		Project: issue.Project,
		Payload: events.IssueUpdatedPayload{Fields: patchFields(patch)},
	})
	if patch.Open != nil {
		eventType := events.EventIssueReopened
		if !*patch.Open {
			eventType = events.EventIssueClosed
		}
		s.publishEvent(ctx, events.Event{Type: eventType, IssueID: issue.ID, Project: issue.Project})
	}
	return id, nil
}

// DeleteIssue hard-deletes the issue addressed by _id and returns that id.
func (s *IssueService) DeleteIssue(ctx context.Context, project string, payload Payload) (string, error) {
	id, err := validateDelete(payload)
	if err != nil {
		return "", s.fail(OpDelete, err)
	}

	if err := s.issues.DeleteByID(ctx, id); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("delete issue failed", zap.String("id", id), zap.Error(err))
		}
		return id, s.fail(OpDelete, apperrors.NewDeleteFailed(id, err))
	}

	s.metrics.RecordOperation(OpDelete, "ok")
	s.publishEvent(ctx, events.Event{Type: events.EventIssueDeleted, IssueID: id, Project: project})
	return id, nil
}

func (s *IssueService) fail(operation string, err error) error {
	s.metrics.RecordOperation(operation, apperrors.ToDomainError(err).Code)
	return err
}

func (s *IssueService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func patchFields(patch domain.IssuePatch) []string {
	fields := []string{}
	if patch.Title != nil {
		fields = append(fields, FieldTitle)
	}
	if patch.Text != nil {
		fields = append(fields, FieldText)
	}
	if patch.CreatedBy != nil {
		fields = append(fields, FieldCreatedBy)
	}
	if patch.AssignedTo != nil {
		fields = append(fields, FieldAssignedTo)
	}
	if patch.StatusText != nil {
		fields = append(fields, FieldStatusText)
	}
	if patch.Open != nil {
		fields = append(fields, FieldOpen)
	}
	return fields
}
