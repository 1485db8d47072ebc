package sqlite

import (
	"context"

	"github.com/example/employee-portal/internal/persistence"
)

// AnnouncementRepository implements persistence.AnnouncementRepository over SQLite.
type AnnouncementRepository struct {
	store *Store
}

// NewAnnouncementRepository returns an announcement repository backed by the store.
func NewAnnouncementRepository(store *Store) *AnnouncementRepository {
	return &AnnouncementRepository{store: store}
}

// CreateAnnouncement inserts a portal notice.
func (r *AnnouncementRepository) CreateAnnouncement(ctx context.Context, announcement persistence.Announcement) error {
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO announcements (id, title, body, posted_by, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, announcement.ID, announcement.Title, announcement.Body, announcement.PostedBy, encodeTime(announcement.CreatedAt))
	return mapError(err)
}

// ListAnnouncements returns notices, newest first.
func (r *AnnouncementRepository) ListAnnouncements(ctx context.Context) ([]persistence.Announcement, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, title, body, posted_by, created_at
		FROM announcements ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var announcements []persistence.Announcement
	for rows.Next() {
		var (
			a         persistence.Announcement
			createdAt string
		)
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.PostedBy, &createdAt); err != nil {
			return nil, err
		}
		if a.CreatedAt, err = decodeTime(createdAt); err != nil {
			return nil, err
		}
		announcements = append(announcements, a)
	}
	return announcements, rows.Err()
}

// DeleteAnnouncement removes a notice.
func (r *AnnouncementRepository) DeleteAnnouncement(ctx context.Context, id string) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = ?`, id)
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
