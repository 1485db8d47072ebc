package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/employee-portal/internal/persistence"
	"github.com/example/employee-portal/internal/policy"
)

func newIssueFixture(t *testing.T) (*IssueService, *memIssues, *recordingNotifier) {
	t.Helper()
	users := newMemUsers(
		persistence.User{ID: "emp", Name: "Eve Employee", Email: "eve@example.com", Role: policy.RoleEmployee.String()},
		persistence.User{ID: "sup", Name: "Sam Super", Email: "sam@example.com", Role: policy.RoleSuperAdmin.String()},
	)
	issues := newMemIssues()
	mails := &recordingNotifier{}
	svc := NewIssueService(issues, users, mails, sequentialIDs("iss"), fixedNow(testTime(t, 11)), nil)
	return svc, issues, mails
}

func TestIssueService_Raise(t *testing.T) {
	t.Parallel()

	svc, _, mails := newIssueFixture(t)
	ctx := context.Background()

	issue, err := svc.Raise(ctx, empPrincipal(), "Projector broken", "Room Aurora projector shows no signal", "high")
	if err != nil {
		t.Fatalf("Raise: %v", err)
	}
	if issue.Status != IssuePending {
		t.Errorf("new issue status = %q, want Pending", issue.Status)
	}
	if issue.Priority != IssuePriorityHigh {
		t.Errorf("priority = %q, want High", issue.Priority)
	}
	if issue.RaisedBy.ID != "emp" {
		t.Errorf("reporter not resolved: %+v", issue.RaisedBy)
	}
	if len(mails.all()) != 1 {
		t.Errorf("expected an acknowledgement mail")
	}

	t.Run("priority defaults to medium", func(t *testing.T) {
		issue, err := svc.Raise(ctx, empPrincipal(), "Chair wobbles", "", "")
		if err != nil {
			t.Fatalf("Raise: %v", err)
		}
		if issue.Priority != IssuePriorityMedium {
			t.Errorf("priority = %q, want Medium", issue.Priority)
		}
	})

	t.Run("unknown priority rejected", func(t *testing.T) {
		_, err := svc.Raise(ctx, empPrincipal(), "x", "", "urgent")
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestIssueService_List_ScopedByRole(t *testing.T) {
	t.Parallel()

	svc, _, _ := newIssueFixture(t)
	ctx := context.Background()

	if _, err := svc.Raise(ctx, empPrincipal(), "from eve", "", "low"); err != nil {
		t.Fatalf("Raise: %v", err)
	}
	if _, err := svc.Raise(ctx, superPrincipal(), "from sam", "", "low"); err != nil {
		t.Fatalf("Raise: %v", err)
	}

	mine, err := svc.List(ctx, empPrincipal(), IssueFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mine) != 1 || mine[0].Title != "from eve" {
		t.Errorf("employee should only see own issues, got %+v", mine)
	}

	all, err := svc.List(ctx, superPrincipal(), IssueFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("superadmin should see all issues, got %d", len(all))
	}
}

func TestIssueService_List_Filters(t *testing.T) {
	t.Parallel()

	svc, _, _ := newIssueFixture(t)
	ctx := context.Background()

	low, err := svc.Raise(ctx, superPrincipal(), "low one", "", "low")
	if err != nil {
		t.Fatalf("Raise: %v", err)
	}
	if _, err := svc.Raise(ctx, superPrincipal(), "high one", "", "high"); err != nil {
		t.Fatalf("Raise: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, superPrincipal(), low.ID, "resolved"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	byPriority, err := svc.List(ctx, superPrincipal(), IssueFilter{Priority: "high"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(byPriority) != 1 || byPriority[0].Title != "high one" {
		t.Errorf("priority filter failed: %+v", byPriority)
	}

	byStatus, err := svc.List(ctx, superPrincipal(), IssueFilter{Status: "resolved"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].Title != "low one" {
		t.Errorf("status filter failed: %+v", byStatus)
	}
}

func TestIssueService_UpdateStatus_NotifiesReporter(t *testing.T) {
	t.Parallel()

	svc, _, mails := newIssueFixture(t)
	ctx := context.Background()

	issue, err := svc.Raise(ctx, empPrincipal(), "Projector broken", "", "high")
	if err != nil {
		t.Fatalf("Raise: %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, superPrincipal(), issue.ID, "in progress")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != IssueInProgress {
		t.Errorf("status = %q, want In Progress", updated.Status)
	}

	sent := mails.all()
	last := sent[len(sent)-1]
	if last.To != "eve@example.com" {
		t.Errorf("expected reporter notification, got %+v", last)
	}

	t.Run("unknown issue", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, superPrincipal(), "missing", "resolved")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestIssueService_AddComment(t *testing.T) {
	t.Parallel()

	svc, _, _ := newIssueFixture(t)
	ctx := context.Background()

	issue, err := svc.Raise(ctx, empPrincipal(), "Projector broken", "", "high")
	if err != nil {
		t.Fatalf("Raise: %v", err)
	}

	updated, err := svc.AddComment(ctx, superPrincipal(), issue.ID, "Replacement ordered")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if len(updated.Comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(updated.Comments))
	}
	comment := updated.Comments[0]
	if comment.Text != "Replacement ordered" || comment.CreatedBy.ID != "sup" {
		t.Errorf("comment mismatch: %+v", comment)
	}

	t.Run("empty text rejected", func(t *testing.T) {
		_, err := svc.AddComment(ctx, superPrincipal(), issue.ID, "")
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestIssueService_Delete(t *testing.T) {
	t.Parallel()

	svc, store, _ := newIssueFixture(t)
	ctx := context.Background()

	issue, err := svc.Raise(ctx, empPrincipal(), "Projector broken", "", "high")
	if err != nil {
		t.Fatalf("Raise: %v", err)
	}
	if err := svc.Delete(ctx, superPrincipal(), issue.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.GetIssue(ctx, issue.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("issue should be gone, got %v", err)
	}
}
