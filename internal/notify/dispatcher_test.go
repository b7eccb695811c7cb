package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/db"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/roles"
)

type fakeStore struct {
	users         map[string][]db.User
	notifications []db.Notification
	listErr       error
	createErr     error
}

func (f *fakeStore) CreateNotification(ctx context.Context, n *db.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeStore) ListUsersByRoles(ctx context.Context, roleCodes []string) ([]db.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []db.User
	for _, role := range roleCodes {
		out = append(out, f.users[role]...)
	}
	return out, nil
}

func approvalRequest() *db.ApprovalRequest {
	return &db.ApprovalRequest{
		ID:            uuid.New(),
		Category:      db.CategoryBusiness,
		OperationCode: "SUPPLIER_DELETE",
		Title:         "Delete supplier ACME",
		ApplicantID:   "u-operator",
	}
}

func TestNotifyApprovers_PerApproverFanout(t *testing.T) {
	store := &fakeStore{users: map[string][]db.User{
		roles.RoleBoss:  {{ID: "u-boss-1"}, {ID: "u-boss-2"}},
		roles.RoleAdmin: {{ID: "u-admin"}},
	}}
	d := NewDispatcher(store)

	trigger := &db.OperationTrigger{ApproverRoles: []string{roles.RoleBoss}}
	req := approvalRequest()
	d.NotifyApprovers(context.Background(), req, trigger)

	if len(store.notifications) != 2 {
		t.Fatalf("Expected 2 notifications, got %d", len(store.notifications))
	}
	for _, n := range store.notifications {
		if n.CorrelationID != req.ID {
			t.Errorf("Notification not correlated to request: %+v", n)
		}
	}
}

func TestNotifyApprovers_FallsBackToAdmins(t *testing.T) {
	store := &fakeStore{users: map[string][]db.User{
		roles.RoleAdmin: {{ID: "u-admin"}},
	}}
	d := NewDispatcher(store)

	/* No trigger on file for the operation */
	d.NotifyApprovers(context.Background(), approvalRequest(), nil)

	if len(store.notifications) != 1 || store.notifications[0].RecipientID != "u-admin" {
		t.Fatalf("Expected admin fallback notification, got %+v", store.notifications)
	}
}

func TestNotify_FailuresNeverPanic(t *testing.T) {
	/* Both lookup and enqueue failures are swallowed: notification is a
	 * side channel and must never affect the approval flow */
	d := NewDispatcher(&fakeStore{listErr: errors.New("db down")})
	d.NotifyApprovers(context.Background(), approvalRequest(), nil)

	d = NewDispatcher(&fakeStore{
		users:     map[string][]db.User{roles.RoleAdmin: {{ID: "u-admin"}}},
		createErr: errors.New("db down"),
	})
	req := approvalRequest()
	d.NotifyApprovers(context.Background(), req, nil)
	d.NotifyApplicant(context.Background(), req, db.StatusApproved, nil)
}

func TestNotifyApplicant_IncludesComment(t *testing.T) {
	store := &fakeStore{}
	d := NewDispatcher(store)

	comment := "confirmed with finance"
	req := approvalRequest()
	d.NotifyApplicant(context.Background(), req, db.StatusApproved, &comment)

	if len(store.notifications) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(store.notifications))
	}
	n := store.notifications[0]
	if n.RecipientID != "u-operator" {
		t.Errorf("Expected applicant recipient, got %s", n.RecipientID)
	}
	if want := "Your business request (SUPPLIER_DELETE) was approved. Comment: confirmed with finance"; n.Body != want {
		t.Errorf("Unexpected body %q", n.Body)
	}
}
