package sqlite

import (
	"context"
	"strings"

	"github.com/example/employee-portal/internal/persistence"
)

// IssueRepository implements persistence.IssueRepository over SQLite.
type IssueRepository struct {
	store *Store
}

// NewIssueRepository returns an issue repository backed by the store.
func NewIssueRepository(store *Store) *IssueRepository {
	return &IssueRepository{store: store}
}

const issueColumns = `id, title, description, priority, status, raised_by, created_at, updated_at`

// CreateIssue inserts a reported issue.
func (r *IssueRepository) CreateIssue(ctx context.Context, issue persistence.Issue) error {
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO issues (`+issueColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		issue.ID, issue.Title, issue.Description, issue.Priority, issue.Status,
		issue.RaisedBy, encodeTime(issue.CreatedAt), encodeTime(issue.UpdatedAt),
	)
	return mapError(err)
}

// UpdateIssueStatus sets the status and returns the refreshed issue.
func (r *IssueRepository) UpdateIssueStatus(ctx context.Context, id, status string) (persistence.Issue, error) {
	result, err := r.store.db.ExecContext(ctx, `
		UPDATE issues SET status = ?, updated_at = ? WHERE id = ?
	`, status, encodeTime(nowUTC()), id)
	if err != nil {
		return persistence.Issue{}, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.Issue{}, err
	}
	if affected == 0 {
		return persistence.Issue{}, persistence.ErrNotFound
	}
	return r.GetIssue(ctx, id)
}

// AddComment appends a comment and returns the refreshed issue.
func (r *IssueRepository) AddComment(ctx context.Context, comment persistence.IssueComment) (persistence.Issue, error) {
	if _, err := r.GetIssue(ctx, comment.IssueID); err != nil {
		return persistence.Issue{}, err
	}
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO issue_comments (id, issue_id, text, created_by, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, comment.ID, comment.IssueID, comment.Text, comment.CreatedBy, encodeTime(comment.CreatedAt))
	if err != nil {
		return persistence.Issue{}, mapError(err)
	}
	return r.GetIssue(ctx, comment.IssueID)
}

// GetIssue retrieves an issue with its comment thread.
func (r *IssueRepository) GetIssue(ctx context.Context, id string) (persistence.Issue, error) {
	row := r.store.db.QueryRowContext(ctx, `SELECT `+issueColumns+` FROM issues WHERE id = ?`, id)
	issue, err := scanIssue(row)
	if err != nil {
		return persistence.Issue{}, err
	}
	if issue.Comments, err = r.listComments(ctx, id); err != nil {
		return persistence.Issue{}, err
	}
	return issue, nil
}

// ListIssues returns issues matching the filter, newest first, with comments.
func (r *IssueRepository) ListIssues(ctx context.Context, filter persistence.IssueFilter) ([]persistence.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues`

	var (
		clauses []string
		args    []any
	)
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		clauses = append(clauses, "priority = ?")
		args = append(args, filter.Priority)
	}
	if filter.RaisedBy != "" {
		clauses = append(clauses, "raised_by = ?")
		args = append(args, filter.RaisedBy)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var issues []persistence.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range issues {
		if issues[i].Comments, err = r.listComments(ctx, issues[i].ID); err != nil {
			return nil, err
		}
	}
	return issues, nil
}

// DeleteIssue removes an issue; comments cascade.
func (r *IssueRepository) DeleteIssue(ctx context.Context, id string) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM issues WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (r *IssueRepository) listComments(ctx context.Context, issueID string) ([]persistence.IssueComment, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, issue_id, text, created_by, created_at
		FROM issue_comments WHERE issue_id = ? ORDER BY created_at, id
	`, issueID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var comments []persistence.IssueComment
	for rows.Next() {
		var (
			comment   persistence.IssueComment
			createdAt string
		)
		if err := rows.Scan(&comment.ID, &comment.IssueID, &comment.Text, &comment.CreatedBy, &createdAt); err != nil {
			return nil, err
		}
		if comment.CreatedAt, err = decodeTime(createdAt); err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func scanIssue(row rowScanner) (persistence.Issue, error) {
	var (
		issue     persistence.Issue
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&issue.ID, &issue.Title, &issue.Description, &issue.Priority, &issue.Status,
		&issue.RaisedBy, &createdAt, &updatedAt,
	)
	if err != nil {
		return persistence.Issue{}, mapError(err)
	}

	if issue.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.Issue{}, err
	}
	if issue.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return persistence.Issue{}, err
	}
	return issue, nil
}
