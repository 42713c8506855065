package repository

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// ErrNotFound is returned when an id does not resolve to a stored issue,
// including ids the backing store cannot parse.
var ErrNotFound = errors.New("issue not found")

// IssueFilter captures equality predicates for listing. Project is always applied;
// nil fields are not filtered on.
type IssueFilter struct {
	Project    string
	ID         *string
	Title      *string
	Text       *string
	CreatedBy  *string
	AssignedTo *string
	StatusText *string
	CreatedOn  *time.Time
	UpdatedOn  *time.Time
	Open       *bool
}

// Matches evaluates the filter against an issue in memory.
func (f IssueFilter) Matches(issue *domain.Issue) bool {
	if issue.Project != f.Project {
		return false
	}
	if !stringMatches(f.ID, issue.ID) ||
		!stringMatches(f.Title, issue.Title) ||
		!stringMatches(f.Text, issue.Text) ||
		!stringMatches(f.CreatedBy, issue.CreatedBy) ||
		!stringMatches(f.AssignedTo, issue.AssignedTo) ||
		!stringMatches(f.StatusText, issue.StatusText) {
		return false
	}
	if !timeMatches(f.CreatedOn, issue.CreatedOn) || !timeMatches(f.UpdatedOn, issue.UpdatedOn) {
		return false
	}
	if f.Open != nil && *f.Open != issue.Open {
		return false
	}
	return true
}

func timeMatches(want *time.Time, got time.Time) bool {
	return want == nil || want.Equal(got)
}

func stringMatches(want *string, got string) bool {
	return want == nil || *want == got
}

// IssueRepository is the record store behind the issue engine.
type IssueRepository interface {
	// Insert persists a new issue and assigns its ID.
	Insert(ctx context.Context, issue *domain.Issue) error
	// FindMany returns matching issues in insertion order.
	FindMany(ctx context.Context, filter IssueFilter) ([]domain.Issue, error)
	// UpdateByID applies the patch atomically and returns the stored result.
	UpdateByID(ctx context.Context, id string, patch domain.IssuePatch, updatedOn time.Time) (*domain.Issue, error)
	DeleteByID(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
