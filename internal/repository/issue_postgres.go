package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

type postgresIssueRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresIssueRepository instantiates a pgx-backed repository.
func NewPostgresIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &postgresIssueRepository{pool: pool}
}

func (r *postgresIssueRepository) Insert(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (project, issue_title, issue_text, created_by, assigned_to, status_text, created_on, updated_on, is_open)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_on, updated_on`
	return r.pool.QueryRow(ctx, query,
		issue.Project,
		issue.Title,
		issue.Text,
		issue.CreatedBy,
		issue.AssignedTo,
		issue.StatusText,
		issue.CreatedOn,
		issue.UpdatedOn,
		issue.Open,
	).Scan(&issue.ID, &issue.CreatedOn, &issue.UpdatedOn)
}

func (r *postgresIssueRepository) FindMany(ctx context.Context, filter IssueFilter) ([]domain.Issue, error) {
	// A malformed id can never match a UUID column.
	if filter.ID != nil && !validUUID(*filter.ID) {
		return []domain.Issue{}, nil
	}

	where, args := postgresDialect.buildWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM issues WHERE %s ORDER BY seq ASC`, issueColumns, where)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPostgresIssues(rows)
}

func (r *postgresIssueRepository) UpdateByID(ctx context.Context, id string, patch domain.IssuePatch, updatedOn time.Time) (*domain.Issue, error) {
	if !validUUID(id) {
		return nil, ErrNotFound
	}

	set, args := postgresDialect.buildSet(patch, updatedOn)
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE issues SET %s WHERE id=$%d RETURNING %s`, set, len(args), issueColumns)

	issue, err := scanPostgresIssue(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return issue, nil
}

func (r *postgresIssueRepository) DeleteByID(ctx context.Context, id string) error {
	if !validUUID(id) {
		return ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM issues WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresIssueRepository) Ping(ctx context.Context) error {
	if r.pool == nil {
		return errors.New("postgres pool not configured")
	}
	return r.pool.Ping(ctx)
}

func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func scanPostgresIssue(row pgx.Row) (*domain.Issue, error) {
	var issue domain.Issue
	if err := row.Scan(
		&issue.ID,
		&issue.Project,
		&issue.Title,
		&issue.Text,
		&issue.CreatedBy,
		&issue.AssignedTo,
		&issue.StatusText,
		&issue.CreatedOn,
		&issue.UpdatedOn,
		&issue.Open,
	); err != nil {
		return nil, err
	}
	return &issue, nil
}

func scanPostgresIssues(rows pgx.Rows) ([]domain.Issue, error) {
	result := []domain.Issue{}
	for rows.Next() {
		issue, err := scanPostgresIssue(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *issue)
	}
	return result, rows.Err()
}
