package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

// Wire field names shared by payloads, filters and responses.
const (
	FieldID         = "_id"
	FieldTitle      = "issue_title"
	FieldText       = "issue_text"
	FieldCreatedBy  = "created_by"
	FieldAssignedTo = "assigned_to"
	FieldStatusText = "status_text"
	FieldOpen       = "open"
	FieldProject    = "project"
	FieldCreatedOn  = "created_on"
	FieldUpdatedOn  = "updated_on"
)

// Payload is a raw request mapping as decoded from a JSON or form body.
type Payload map[string]any

// Value renders the entry for key as text. A key counts as present only when its
// text is non-empty.
func (p Payload) Value(key string) (string, bool) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return "", false
	}

	var text string
	switch v := raw.(type) {
	case string:
		text = v
	case bool:
		text = strconv.FormatBool(v)
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		text = v.String()
	case int:
		text = strconv.Itoa(v)
	default:
		text = fmt.Sprint(v)
	}
	if text == "" {
		return "", false
	}
	return text, true
}

func (p Payload) stringPtr(key string) *string {
	if val, ok := p.Value(key); ok {
		return &val
	}
	return nil
}

// parseOpen accepts exactly "true" or "false".
func parseOpen(val string) (bool, bool) {
	switch val {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

// validateCreate builds the issue fields from a create payload.
func validateCreate(project string, p Payload) (*domain.Issue, error) {
	title, okTitle := p.Value(FieldTitle)
	text, okText := p.Value(FieldText)
	createdBy, okCreatedBy := p.Value(FieldCreatedBy)
	if project == "" || !okTitle || !okText || !okCreatedBy {
		return nil, apperrors.NewMissingRequiredFields()
	}

	assignedTo, _ := p.Value(FieldAssignedTo)
	statusText, _ := p.Value(FieldStatusText)

	return &domain.Issue{
		Project:    project,
		Title:      title,
		Text:       text,
		CreatedBy:  createdBy,
		AssignedTo: assignedTo,
		StatusText: statusText,
		Open:       true,
	}, nil
}

// validateUpdate extracts the target id and the patch of present fields.
func validateUpdate(p Payload) (string, domain.IssuePatch, error) {
	id, ok := p.Value(FieldID)
	if !ok {
		return "", domain.IssuePatch{}, apperrors.NewMissingID()
	}

	patch := domain.IssuePatch{
		Title:      p.stringPtr(FieldTitle),
		Text:       p.stringPtr(FieldText),
		CreatedBy:  p.stringPtr(FieldCreatedBy),
		AssignedTo: p.stringPtr(FieldAssignedTo),
		StatusText: p.stringPtr(FieldStatusText),
	}

	if raw, ok := p.Value(FieldOpen); ok {
		open, valid := parseOpen(raw)
		if !valid {
			return id, domain.IssuePatch{}, apperrors.NewUpdateFailed(id, fmt.Errorf("invalid open value %q", raw))
		}
		patch.Open = &open
	}

	if patch.IsEmpty() {
		return id, patch, apperrors.NewNoUpdateFields(id)
	}
	return id, patch, nil
}

// validateDelete extracts the target id.
func validateDelete(p Payload) (string, error) {
	id, ok := p.Value(FieldID)
	if !ok {
		return "", apperrors.NewMissingID()
	}
	return id, nil
}

// NormalizedFilter is the outcome of mapping query parameters onto the filterable fields.
type NormalizedFilter struct {
	Filter repository.IssueFilter
	// Satisfiable is false when the query can never match, such as open=maybe or a
	// key that names no issue field.
	Satisfiable bool
	// Ignored lists query keys outside the filterable set, sorted.
	Ignored []string
}

// NormalizeFilter maps query parameters onto typed equality filters. Keys naming no
// issue field are reported in Ignored and match nothing.
func NormalizeFilter(project string, query map[string]string) NormalizedFilter {
	result := NormalizedFilter{
		Filter:      repository.IssueFilter{Project: project},
		Satisfiable: true,
	}

	for key, raw := range query {
		val := raw
		switch key {
		case FieldID:
			result.Filter.ID = &val
		case FieldTitle:
			result.Filter.Title = &val
		case FieldText:
			result.Filter.Text = &val
		case FieldCreatedBy:
			result.Filter.CreatedBy = &val
		case FieldAssignedTo:
			result.Filter.AssignedTo = &val
		case FieldStatusText:
			result.Filter.StatusText = &val
		case FieldOpen:
			open, ok := parseOpen(val)
			if !ok {
				result.Satisfiable = false
				continue
			}
			result.Filter.Open = &open
		case FieldProject:
			if val != project {
				result.Satisfiable = false
			}
		case FieldCreatedOn:
			ts, ok := parseTimestamp(val)
			if !ok {
				result.Satisfiable = false
				continue
			}
			result.Filter.CreatedOn = &ts
		case FieldUpdatedOn:
			ts, ok := parseTimestamp(val)
			if !ok {
				result.Satisfiable = false
				continue
			}
			result.Filter.UpdatedOn = &ts
		default:
			result.Ignored = append(result.Ignored, key)
			result.Satisfiable = false
		}
	}

	sort.Strings(result.Ignored)
	return result
}

// parseTimestamp accepts the RFC 3339 form issues are serialized with.
func parseTimestamp(val string) (time.Time, bool) {
	ts, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}, false
	}
	return ts.UTC(), true
}
