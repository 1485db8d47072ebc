package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/example/employee-portal/internal/persistence"
	"github.com/example/employee-portal/internal/policy"
)

// PollService runs portal polls with one vote per user.
type PollService struct {
	polls       persistence.PollRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

func NewPollService(polls persistence.PollRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *PollService {
	if idGenerator == nil {
		idGenerator = func() string { return randomHex(16) }
	}
	if now == nil {
		now = time.Now
	}
	return &PollService{polls: polls, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

// Create publishes a poll with at least two options.
func (s *PollService) Create(ctx context.Context, actor Principal, question string, options []string) (Poll, error) {
	vErr := &ValidationError{}
	if question == "" {
		vErr.add("question", "question is required")
	}
	if len(options) < 2 {
		vErr.add("options", "at least two options are required")
	}
	if vErr.HasErrors() {
		return Poll{}, vErr
	}

	record := persistence.Poll{
		ID:        s.idGenerator(),
		Question:  question,
		CreatedBy: actor.UserID,
		CreatedAt: s.now(),
	}
	for _, text := range options {
		record.Options = append(record.Options, persistence.PollOption{
			ID:     s.idGenerator(),
			PollID: record.ID,
			Text:   text,
		})
	}
	if err := s.polls.CreatePoll(ctx, record); err != nil {
		return Poll{}, err
	}

	serviceLogger(ctx, s.logger, "PollService", "Create").InfoContext(ctx, "poll created", "poll_id", record.ID)
	return pollFromRecord(record), nil
}

// List returns all polls with current tallies.
func (s *PollService) List(ctx context.Context) ([]Poll, error) {
	records, err := s.polls.ListPolls(ctx)
	if err != nil {
		return nil, err
	}
	polls := make([]Poll, 0, len(records))
	for _, record := range records {
		polls = append(polls, pollFromRecord(record))
	}
	return polls, nil
}

// Vote records the actor's choice. A second vote on the same poll fails
// with ErrConflict regardless of the option picked.
func (s *PollService) Vote(ctx context.Context, actor Principal, pollID, optionID string) (Poll, error) {
	logger := serviceLogger(ctx, s.logger, "PollService", "Vote", "user_id", actor.UserID, "poll_id", pollID)

	record, err := s.polls.RecordVote(ctx, pollID, optionID, actor.UserID)
	if err != nil {
		switch {
		case errors.Is(err, persistence.ErrDuplicate):
			return Poll{}, ErrConflict
		case errors.Is(err, persistence.ErrNotFound):
			return Poll{}, ErrNotFound
		default:
			return Poll{}, err
		}
	}

	logger.InfoContext(ctx, "vote recorded", "option_id", optionID)
	return pollFromRecord(record), nil
}

// Delete removes a poll. Only the creator or a SuperAdmin may delete.
func (s *PollService) Delete(ctx context.Context, actor Principal, pollID string) error {
	record, err := s.polls.GetPoll(ctx, pollID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if record.CreatedBy != actor.UserID && actor.Role != policy.RoleSuperAdmin {
		return ErrForbidden
	}

	if err := s.polls.DeletePoll(ctx, pollID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
