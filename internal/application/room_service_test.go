package application

import (
	"context"
	"errors"
	"testing"
)

func TestRoomService_CRUD(t *testing.T) {
	t.Parallel()

	svc := NewRoomService(newMemRooms(), sequentialIDs("room"), fixedNow(testTime(t, 9)), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, RoomParams{Name: "Aurora", Location: "3F", Capacity: 8})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, created.ID, RoomParams{Name: "Aurora", Location: "4F", Capacity: 10})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Location != "4F" || updated.Capacity != 10 {
		t.Errorf("update mismatch: %+v", updated)
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 room, got %d", len(list))
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestRoomService_Create_Validation(t *testing.T) {
	t.Parallel()

	svc := NewRoomService(newMemRooms(), nil, nil, nil)

	_, err := svc.Create(context.Background(), RoomParams{Capacity: -1})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["name"]; !ok {
		t.Errorf("expected name error, got %v", vErr.FieldErrors)
	}
	if _, ok := vErr.FieldErrors["capacity"]; !ok {
		t.Errorf("expected capacity error, got %v", vErr.FieldErrors)
	}
}
