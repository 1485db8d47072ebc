package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/employee-portal/internal/persistence"
)

// PollRepository implements persistence.PollRepository over SQLite.
type PollRepository struct {
	store *Store
}

// NewPollRepository returns a poll repository backed by the store.
func NewPollRepository(store *Store) *PollRepository {
	return &PollRepository{store: store}
}

// CreatePoll inserts a poll together with its options.
func (r *PollRepository) CreatePoll(ctx context.Context, poll persistence.Poll) error {
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO polls (id, question, created_by, created_at)
		VALUES (?, ?, ?, ?)
	`, poll.ID, poll.Question, poll.CreatedBy, encodeTime(poll.CreatedAt))
	if err != nil {
		return mapError(err)
	}

	for _, option := range poll.Options {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO poll_options (id, poll_id, text, votes)
			VALUES (?, ?, ?, ?)
		`, option.ID, poll.ID, option.Text, option.Votes)
		if err != nil {
			return mapError(err)
		}
	}

	return tx.Commit()
}

// GetPoll retrieves a poll with its options.
func (r *PollRepository) GetPoll(ctx context.Context, id string) (persistence.Poll, error) {
	row := r.store.db.QueryRowContext(ctx, `
		SELECT id, question, created_by, created_at FROM polls WHERE id = ?
	`, id)

	poll, err := scanPoll(row)
	if err != nil {
		return persistence.Poll{}, err
	}
	if poll.Options, err = r.listOptions(ctx, id); err != nil {
		return persistence.Poll{}, err
	}
	return poll, nil
}

// ListPolls returns all polls with options, newest first.
func (r *PollRepository) ListPolls(ctx context.Context) ([]persistence.Poll, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, question, created_by, created_at FROM polls ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var polls []persistence.Poll
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			return nil, err
		}
		polls = append(polls, poll)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range polls {
		if polls[i].Options, err = r.listOptions(ctx, polls[i].ID); err != nil {
			return nil, err
		}
	}
	return polls, nil
}

// RecordVote registers a user's vote. The (poll_id, user_id) primary key
// rejects a second vote with ErrDuplicate.
func (r *PollRepository) RecordVote(ctx context.Context, pollID, optionID, userID string) (persistence.Poll, error) {
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return persistence.Poll{}, err
	}
	defer tx.Rollback()

	var belongs string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM poll_options WHERE id = ? AND poll_id = ?`, optionID, pollID,
	).Scan(&belongs)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Poll{}, persistence.ErrNotFound
		}
		return persistence.Poll{}, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO poll_votes (poll_id, user_id, option_id, cast_at)
		VALUES (?, ?, ?, ?)
	`, pollID, userID, optionID, encodeTime(nowUTC()))
	if err := mapError(err); err != nil {
		return persistence.Poll{}, err
	}

	_, err = tx.ExecContext(ctx, `UPDATE poll_options SET votes = votes + 1 WHERE id = ?`, optionID)
	if err != nil {
		return persistence.Poll{}, err
	}

	if err := tx.Commit(); err != nil {
		return persistence.Poll{}, err
	}
	return r.GetPoll(ctx, pollID)
}

// DeletePoll removes a poll; options and votes cascade.
func (r *PollRepository) DeletePoll(ctx context.Context, id string) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM polls WHERE id = ?`, id)
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

func (r *PollRepository) listOptions(ctx context.Context, pollID string) ([]persistence.PollOption, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, poll_id, text, votes FROM poll_options WHERE poll_id = ? ORDER BY id
	`, pollID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var options []persistence.PollOption
	for rows.Next() {
		var option persistence.PollOption
		if err := rows.Scan(&option.ID, &option.PollID, &option.Text, &option.Votes); err != nil {
			return nil, err
		}
		options = append(options, option)
	}
	return options, rows.Err()
}

func scanPoll(row rowScanner) (persistence.Poll, error) {
	var (
		poll      persistence.Poll
		createdAt string
	)
	if err := row.Scan(&poll.ID, &poll.Question, &poll.CreatedBy, &createdAt); err != nil {
		return persistence.Poll{}, mapError(err)
	}

	var err error
	if poll.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.Poll{}, err
	}
	return poll, nil
}
