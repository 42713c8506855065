package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueCreated  EventType = "issue_created"
	EventIssueUpdated  EventType = "issue_updated"
	EventIssueClosed   EventType = "issue_closed"
	EventIssueReopened EventType = "issue_reopened"
	EventIssueDeleted  EventType = "issue_deleted"
)

// Event represents a domain event emitted by the issue service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	IssueID   string      `json:"issue_id"`
	Project   string      `json:"project"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// IssueCreatedPayload payload.
type IssueCreatedPayload struct {
	Title      string `json:"issue_title"`
	CreatedBy  string `json:"created_by"`
	AssignedTo string `json:"assigned_to,omitempty"`
}

// IssueUpdatedPayload lists the fields an update touched.
type IssueUpdatedPayload struct {
	Fields []string `json:"fields"`
}
