package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/employee-portal/internal/persistence"
	"github.com/example/employee-portal/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite store
// for integration-style persistence tests.
type SQLiteHarness struct {
	Users         persistence.UserRepository
	Rooms         persistence.RoomRepository
	Bookings      persistence.BookingRepository
	Tasks         persistence.TaskRepository
	Issues        persistence.IssueRepository
	Calendar      persistence.CalendarRepository
	Announcements persistence.AnnouncementRepository
	Polls         persistence.PollRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness over a temporary database file
// that is migrated automatically. A cleanup callback is registered with the
// provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "portal.db")

	store, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Users:         sqlite.NewUserRepository(store),
		Rooms:         sqlite.NewRoomRepository(store),
		Bookings:      sqlite.NewBookingRepository(store),
		Tasks:         sqlite.NewTaskRepository(store),
		Issues:        sqlite.NewIssueRepository(store),
		Calendar:      sqlite.NewCalendarRepository(store),
		Announcements: sqlite.NewAnnouncementRepository(store),
		Polls:         sqlite.NewPollRepository(store),
		cleanup: func() {
			_ = store.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// SeedUser inserts the fixture's persistence record, failing the test on error.
func (h *SQLiteHarness) SeedUser(tb testing.TB, fixture UserFixture) persistence.User {
	tb.Helper()
	record := fixture.Persistence()
	if err := h.Users.CreateUser(context.Background(), record); err != nil {
		tb.Fatalf("failed to seed user %s: %v", record.ID, err)
	}
	return record
}

// SeedRoom inserts the fixture's persistence record, failing the test on error.
func (h *SQLiteHarness) SeedRoom(tb testing.TB, fixture RoomFixture) persistence.Room {
	tb.Helper()
	record := fixture.Persistence()
	if err := h.Rooms.CreateRoom(context.Background(), record); err != nil {
		tb.Fatalf("failed to seed room %s: %v", record.ID, err)
	}
	return record
}
