package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/example/employee-portal/internal/persistence"
)

// In-memory doubles for the persistence interfaces. They mirror the sqlite
// behavior the services rely on: sentinel errors, overlap queries, and the
// one-vote-per-user rule.

type memUsers struct {
	mu    sync.Mutex
	users map[string]persistence.User
	err   error
}

func newMemUsers(seed ...persistence.User) *memUsers {
	m := &memUsers{users: make(map[string]persistence.User)}
	for _, u := range seed {
		u.Email = strings.ToLower(u.Email)
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) CreateUser(ctx context.Context, user persistence.User) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == strings.ToLower(user.Email) {
			return persistence.ErrDuplicate
		}
	}
	user.Email = strings.ToLower(user.Email)
	m.users[user.ID] = user
	return nil
}

func (m *memUsers) UpdateUser(ctx context.Context, user persistence.User) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return persistence.ErrNotFound
	}
	user.Email = strings.ToLower(user.Email)
	m.users[user.ID] = user
	return nil
}

func (m *memUsers) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if m.err != nil {
		return persistence.User{}, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

func (m *memUsers) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	if m.err != nil {
		return persistence.User{}, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == strings.ToLower(email) {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

func (m *memUsers) GetUserByResetToken(ctx context.Context, token string) (persistence.User, error) {
	if m.err != nil {
		return persistence.User{}, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ResetToken != nil && *user.ResetToken == token {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

func (m *memUsers) ListUsers(ctx context.Context) ([]persistence.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]persistence.User, 0, len(m.users))
	for _, user := range m.users {
		out = append(out, user)
	}
	return out, nil
}

type memBookings struct {
	mu       sync.Mutex
	bookings map[string]persistence.Booking
	err      error
}

func newMemBookings() *memBookings {
	return &memBookings{bookings: make(map[string]persistence.Booking)}
}

func (m *memBookings) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.bookings {
		if existing.RoomID == booking.RoomID && existing.Start.Equal(booking.Start) {
			return persistence.ErrSlotTaken
		}
	}
	m.bookings[booking.ID] = booking
	return nil
}

func (m *memBookings) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	return booking, nil
}

func (m *memBookings) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []persistence.Booking
	for _, booking := range m.bookings {
		if filter.RoomID != "" && booking.RoomID != filter.RoomID {
			continue
		}
		if filter.BookedBy != "" && booking.BookedBy != filter.BookedBy {
			continue
		}
		out = append(out, booking)
	}
	return out, nil
}

func (m *memBookings) ListOverlapping(ctx context.Context, roomID string, start, end time.Time) ([]persistence.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []persistence.Booking
	for _, booking := range m.bookings {
		if booking.RoomID != roomID {
			continue
		}
		if booking.Start.Before(end) && booking.End.After(start) {
			out = append(out, booking)
		}
	}
	return out, nil
}

func (m *memBookings) DeleteBooking(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.bookings, id)
	return nil
}

type memRooms struct {
	mu    sync.Mutex
	rooms map[string]persistence.Room
}

func newMemRooms(seed ...persistence.Room) *memRooms {
	m := &memRooms{rooms: make(map[string]persistence.Room)}
	for _, room := range seed {
		m.rooms[room.ID] = room
	}
	return m
}

func (m *memRooms) CreateRoom(ctx context.Context, room persistence.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room.ID] = room
	return nil
}

func (m *memRooms) UpdateRoom(ctx context.Context, room persistence.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[room.ID]; !ok {
		return persistence.ErrNotFound
	}
	m.rooms[room.ID] = room
	return nil
}

func (m *memRooms) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, nil
}

func (m *memRooms) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]persistence.Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		out = append(out, room)
	}
	return out, nil
}

func (m *memRooms) DeleteRoom(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.rooms, id)
	return nil
}

type memTasks struct {
	mu    sync.Mutex
	tasks map[string]persistence.Task
}

func newMemTasks(seed ...persistence.Task) *memTasks {
	m := &memTasks{tasks: make(map[string]persistence.Task)}
	for _, task := range seed {
		m.tasks[task.ID] = task
	}
	return m
}

func (m *memTasks) CreateTask(ctx context.Context, task persistence.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[task.ID] = task
	return nil
}

func (m *memTasks) UpdateTask(ctx context.Context, task persistence.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[task.ID]; !ok {
		return persistence.ErrNotFound
	}
	m.tasks[task.ID] = task
	return nil
}

func (m *memTasks) GetTask(ctx context.Context, id string) (persistence.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return persistence.Task{}, persistence.ErrNotFound
	}
	return task, nil
}

func (m *memTasks) ListTasks(ctx context.Context, filter persistence.TaskFilter) ([]persistence.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []persistence.Task
	for _, task := range m.tasks {
		if filter.AssignedTo != "" && task.AssignedTo != filter.AssignedTo {
			continue
		}
		if filter.AssignedBy != "" && task.AssignedBy != filter.AssignedBy {
			continue
		}
		out = append(out, task)
	}
	return out, nil
}

func (m *memTasks) DeleteTask(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

type memIssues struct {
	mu     sync.Mutex
	issues map[string]persistence.Issue
}

func newMemIssues(seed ...persistence.Issue) *memIssues {
	m := &memIssues{issues: make(map[string]persistence.Issue)}
	for _, issue := range seed {
		m.issues[issue.ID] = issue
	}
	return m
}

func (m *memIssues) CreateIssue(ctx context.Context, issue persistence.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issues[issue.ID] = issue
	return nil
}

func (m *memIssues) UpdateIssueStatus(ctx context.Context, id, status string) (persistence.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[id]
	if !ok {
		return persistence.Issue{}, persistence.ErrNotFound
	}
	issue.Status = status
	m.issues[id] = issue
	return issue, nil
}

func (m *memIssues) AddComment(ctx context.Context, comment persistence.IssueComment) (persistence.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[comment.IssueID]
	if !ok {
		return persistence.Issue{}, persistence.ErrNotFound
	}
	issue.Comments = append(issue.Comments, comment)
	m.issues[comment.IssueID] = issue
	return issue, nil
}

func (m *memIssues) GetIssue(ctx context.Context, id string) (persistence.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[id]
	if !ok {
		return persistence.Issue{}, persistence.ErrNotFound
	}
	return issue, nil
}

func (m *memIssues) ListIssues(ctx context.Context, filter persistence.IssueFilter) ([]persistence.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []persistence.Issue
	for _, issue := range m.issues {
		if filter.Status != "" && issue.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && issue.Priority != filter.Priority {
			continue
		}
		if filter.RaisedBy != "" && issue.RaisedBy != filter.RaisedBy {
			continue
		}
		out = append(out, issue)
	}
	return out, nil
}

func (m *memIssues) DeleteIssue(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.issues[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.issues, id)
	return nil
}

type memPolls struct {
	mu    sync.Mutex
	polls map[string]persistence.Poll
	votes map[string]map[string]bool
}

func newMemPolls() *memPolls {
	return &memPolls{polls: make(map[string]persistence.Poll), votes: make(map[string]map[string]bool)}
}

func (m *memPolls) CreatePoll(ctx context.Context, poll persistence.Poll) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.polls[poll.ID] = poll
	return nil
}

func (m *memPolls) GetPoll(ctx context.Context, id string) (persistence.Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	poll, ok := m.polls[id]
	if !ok {
		return persistence.Poll{}, persistence.ErrNotFound
	}
	return poll, nil
}

func (m *memPolls) ListPolls(ctx context.Context) ([]persistence.Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]persistence.Poll, 0, len(m.polls))
	for _, poll := range m.polls {
		out = append(out, poll)
	}
	return out, nil
}

func (m *memPolls) RecordVote(ctx context.Context, pollID, optionID, userID string) (persistence.Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	poll, ok := m.polls[pollID]
	if !ok {
		return persistence.Poll{}, persistence.ErrNotFound
	}
	if m.votes[pollID] == nil {
		m.votes[pollID] = make(map[string]bool)
	}
	if m.votes[pollID][userID] {
		return persistence.Poll{}, persistence.ErrDuplicate
	}
	found := false
	for i := range poll.Options {
		if poll.Options[i].ID == optionID {
			poll.Options[i].Votes++
			found = true
			break
		}
	}
	if !found {
		return persistence.Poll{}, persistence.ErrNotFound
	}
	m.votes[pollID][userID] = true
	m.polls[pollID] = poll
	return poll, nil
}

func (m *memPolls) DeletePoll(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.polls[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.polls, id)
	return nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
}

func (r *recordingNotifier) Send(ctx context.Context, to, subject, html string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMail{To: to, Subject: subject, Body: html})
}

func (r *recordingNotifier) all() []sentMail {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sentMail, len(r.sent))
	copy(out, r.sent)
	return out
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
