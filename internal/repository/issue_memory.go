package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// memoryIssueRepository keeps issues in process memory. Used for tests and the
// "memory" store driver.
type memoryIssueRepository struct {
	mu     sync.RWMutex
	issues map[string]domain.Issue
	order  []string
}

// NewMemoryIssueRepository creates an empty in-memory repository.
func NewMemoryIssueRepository() IssueRepository {
	return &memoryIssueRepository{
		issues: make(map[string]domain.Issue),
	}
}

func (r *memoryIssueRepository) Insert(_ context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	issue.ID = uuid.NewString()
	r.issues[issue.ID] = *issue
	r.order = append(r.order, issue.ID)
	return nil
}

func (r *memoryIssueRepository) FindMany(_ context.Context, filter IssueFilter) ([]domain.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []domain.Issue{}
	for _, id := range r.order {
		issue := r.issues[id]
		if filter.Matches(&issue) {
			result = append(result, issue)
		}
	}
	return result, nil
}

func (r *memoryIssueRepository) UpdateByID(_ context.Context, id string, patch domain.IssuePatch, updatedOn time.Time) (*domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	issue, ok := r.issues[id]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(&issue, updatedOn)
	r.issues[id] = issue
	return &issue, nil
}

func (r *memoryIssueRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.issues[id]; !ok {
		return ErrNotFound
	}
	delete(r.issues, id)
	for i, candidate := range r.order {
		if candidate == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memoryIssueRepository) Ping(context.Context) error {
	return nil
}
