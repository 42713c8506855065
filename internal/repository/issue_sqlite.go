package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

type sqliteIssueRepository struct {
	db *sql.DB
}

// NewSQLiteIssueRepository instantiates a repository over a modernc.org/sqlite handle.
func NewSQLiteIssueRepository(db *sql.DB) IssueRepository {
	return &sqliteIssueRepository{db: db}
}

func (r *sqliteIssueRepository) Insert(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (id, project, issue_title, issue_text, created_by, assigned_to, status_text, created_on, updated_on, is_open)
        VALUES (?,?,?,?,?,?,?,?,?,?)`
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, query,
		id,
		issue.Project,
		issue.Title,
		issue.Text,
		issue.CreatedBy,
		issue.AssignedTo,
		issue.StatusText,
		formatSQLiteTime(issue.CreatedOn),
		formatSQLiteTime(issue.UpdatedOn),
		sqliteDialect.boolArg(issue.Open),
	)
	if err != nil {
		return err
	}
	issue.ID = id
	return nil
}

func (r *sqliteIssueRepository) FindMany(ctx context.Context, filter IssueFilter) ([]domain.Issue, error) {
	where, args := sqliteDialect.buildWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM issues WHERE %s ORDER BY rowid ASC`, issueColumns, where)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Issue{}
	for rows.Next() {
		issue, err := scanSQLiteIssue(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *issue)
	}
	return result, rows.Err()
}

func (r *sqliteIssueRepository) UpdateByID(ctx context.Context, id string, patch domain.IssuePatch, updatedOn time.Time) (*domain.Issue, error) {
	set, args := sqliteDialect.buildSet(patch, updatedOn)
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE issues SET %s WHERE id=? RETURNING %s`, set, issueColumns)

	issue, err := scanSQLiteIssue(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return issue, nil
}

func (r *sqliteIssueRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM issues WHERE id=?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteIssueRepository) Ping(ctx context.Context) error {
	if r.db == nil {
		return errors.New("sqlite database not configured")
	}
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteIssue(row rowScanner) (*domain.Issue, error) {
	var (
		issue              domain.Issue
		createdOn, updated string
		open               int
	)
	if err := row.Scan(
		&issue.ID,
		&issue.Project,
		&issue.Title,
		&issue.Text,
		&issue.CreatedBy,
		&issue.AssignedTo,
		&issue.StatusText,
		&createdOn,
		&updated,
		&open,
	); err != nil {
		return nil, err
	}

	var err error
	if issue.CreatedOn, err = parseSQLiteTime(createdOn); err != nil {
		return nil, fmt.Errorf("parse created_on: %w", err)
	}
	if issue.UpdatedOn, err = parseSQLiteTime(updated); err != nil {
		return nil, fmt.Errorf("parse updated_on: %w", err)
	}
	issue.Open = open != 0
	return &issue, nil
}
