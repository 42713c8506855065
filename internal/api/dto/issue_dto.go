package dto

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// IssueResponse is the wire form of an issue.
type IssueResponse struct {
	ID         string    `json:"_id"`
	Project    string    `json:"project"`
	Title      string    `json:"issue_title"`
	Text       string    `json:"issue_text"`
	CreatedBy  string    `json:"created_by"`
	AssignedTo string    `json:"assigned_to"`
	StatusText string    `json:"status_text"`
	CreatedOn  time.Time `json:"created_on"`
	UpdatedOn  time.Time `json:"updated_on"`
	Open       bool      `json:"open"`
}

// ResultResponse acknowledges a successful update or delete.
type ResultResponse struct {
	Result string `json:"result"`
	ID     string `json:"_id"`
}

// ErrorResponse carries a business or internal error. ID is echoed when the error
// is tied to an addressed issue.
type ErrorResponse struct {
	Error string `json:"error"`
	ID    string `json:"_id,omitempty"`
}

// Result tokens.
const (
	ResultUpdated = "successfully updated"
	ResultDeleted = "successfully deleted"
)

// NewIssueResponse maps the domain issue onto its wire form.
func NewIssueResponse(issue *domain.Issue) IssueResponse {
	return IssueResponse{
		ID:         issue.ID,
		Project:    issue.Project,
		Title:      issue.Title,
		Text:       issue.Text,
		CreatedBy:  issue.CreatedBy,
		AssignedTo: issue.AssignedTo,
		StatusText: issue.StatusText,
		CreatedOn:  issue.CreatedOn,
		UpdatedOn:  issue.UpdatedOn,
		Open:       issue.Open,
	}
}

// NewIssueListResponse maps a slice of issues, always producing a non-nil slice.
func NewIssueListResponse(issues []domain.Issue) []IssueResponse {
	resp := make([]IssueResponse, 0, len(issues))
	for i := range issues {
		resp = append(resp, NewIssueResponse(&issues[i]))
	}
	return resp
}
