package domain

import "time"

// Issue is a single tracked work item scoped to a project.
type Issue struct {
	ID         string
	Project    string
	Title      string
	Text       string
	CreatedBy  string
	AssignedTo string
	StatusText string
	CreatedOn  time.Time
	UpdatedOn  time.Time
	Open       bool
}

// IssuePatch carries the fields of an update. Nil fields are left untouched.
type IssuePatch struct {
	Title      *string
	Text       *string
	CreatedBy  *string
	AssignedTo *string
	StatusText *string
	Open       *bool
}

// IsEmpty reports whether the patch would change nothing.
func (p IssuePatch) IsEmpty() bool {
	return p.Title == nil &&
		p.Text == nil &&
		p.CreatedBy == nil &&
		p.AssignedTo == nil &&
		p.StatusText == nil &&
		p.Open == nil
}

// Apply merges the patch into the issue and stamps updatedOn.
func (p IssuePatch) Apply(issue *Issue, updatedOn time.Time) {
	if p.Title != nil {
		issue.Title = *p.Title
	}
	if p.Text != nil {
		issue.Text = *p.Text
	}
	if p.CreatedBy != nil {
		issue.CreatedBy = *p.CreatedBy
	}
	if p.AssignedTo != nil {
		issue.AssignedTo = *p.AssignedTo
	}
	if p.StatusText != nil {
		issue.StatusText = *p.StatusText
	}
	if p.Open != nil {
		issue.Open = *p.Open
	}
	issue.UpdatedOn = updatedOn
}
