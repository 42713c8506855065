package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

const issueColumns = `id, project, issue_title, issue_text, created_by, assigned_to, status_text, created_on, updated_on, is_open`

// sqlDialect hides the placeholder and boolean encoding differences between drivers.
type sqlDialect struct {
	placeholder func(n int) string
	boolArg     func(b bool) any
	timeArg     func(t time.Time) any
}

var postgresDialect = sqlDialect{
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	boolArg:     func(b bool) any { return b },
	timeArg:     func(t time.Time) any { return t },
}

var sqliteDialect = sqlDialect{
	placeholder: func(int) string { return "?" },
	boolArg: func(b bool) any {
		if b {
			return 1
		}
		return 0
	},
	timeArg: func(t time.Time) any { return formatSQLiteTime(t) },
}

// buildWhere renders the filter as a WHERE clause body and its arguments.
func (d sqlDialect) buildWhere(filter IssueFilter) (string, []any) {
	clauses := []string{}
	args := []any{}

	add := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s=%s", column, d.placeholder(len(args))))
	}

	add("project", filter.Project)
	if filter.ID != nil {
		add("id", *filter.ID)
	}
	if filter.Title != nil {
		add("issue_title", *filter.Title)
	}
	if filter.Text != nil {
		add("issue_text", *filter.Text)
	}
	if filter.CreatedBy != nil {
		add("created_by", *filter.CreatedBy)
	}
	if filter.AssignedTo != nil {
		add("assigned_to", *filter.AssignedTo)
	}
	if filter.StatusText != nil {
		add("status_text", *filter.StatusText)
	}
	if filter.CreatedOn != nil {
		add("created_on", d.timeArg(*filter.CreatedOn))
	}
	if filter.UpdatedOn != nil {
		add("updated_on", d.timeArg(*filter.UpdatedOn))
	}
	if filter.Open != nil {
		add("is_open", d.boolArg(*filter.Open))
	}

	return strings.Join(clauses, " AND "), args
}

// buildSet renders the patch as a SET list. updated_on is always the last assignment.
func (d sqlDialect) buildSet(patch domain.IssuePatch, updatedOn time.Time) (string, []any) {
	sets := []string{}
	args := []any{}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=%s", column, d.placeholder(len(args))))
	}

	if patch.Title != nil {
		add("issue_title", *patch.Title)
	}
	if patch.Text != nil {
		add("issue_text", *patch.Text)
	}
	if patch.CreatedBy != nil {
		add("created_by", *patch.CreatedBy)
	}
	if patch.AssignedTo != nil {
		add("assigned_to", *patch.AssignedTo)
	}
	if patch.StatusText != nil {
		add("status_text", *patch.StatusText)
	}
	if patch.Open != nil {
		add("is_open", d.boolArg(*patch.Open))
	}
	add("updated_on", d.timeArg(updatedOn))

	return strings.Join(sets, ", "), args
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseSQLiteTime(val string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, val)
}
