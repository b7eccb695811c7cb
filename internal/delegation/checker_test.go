package delegation

import (
	"context"
	"fmt"
	"testing"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/db"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/roles"
)

type fakeDirectory struct {
	users       map[string]*db.User
	permissions map[string]*db.Permission
	rolePerms   map[string][]db.RolePermission
}

func (f *fakeDirectory) GetUser(ctx context.Context, id string) (*db.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, db.ErrNotFound)
	}
	return u, nil
}

func (f *fakeDirectory) GetPermission(ctx context.Context, code string) (*db.Permission, error) {
	p, ok := f.permissions[code]
	if !ok {
		return nil, fmt.Errorf("permission %s: %w", code, db.ErrNotFound)
	}
	return p, nil
}

func (f *fakeDirectory) ListRolePermissions(ctx context.Context, roleCode string) ([]db.RolePermission, error) {
	return f.rolePerms[roleCode], nil
}

func strPtr(s string) *string {
	return &s
}

func testDirectory() *fakeDirectory {
	return &fakeDirectory{
		users: map[string]*db.User{
			"u-admin":    {ID: "u-admin", Name: "Ada", RoleCode: roles.RoleAdmin},
			"u-boss":     {ID: "u-boss", Name: "Bo", RoleCode: roles.RoleBoss},
			"u-manager":  {ID: "u-manager", Name: "Ming", RoleCode: roles.RoleManager, SupervisorID: strPtr("u-boss")},
			"u-operator": {ID: "u-operator", Name: "Oskar", RoleCode: roles.RoleOperator, SupervisorID: strPtr("u-manager")},
			"u-finance":  {ID: "u-finance", Name: "Fen", RoleCode: roles.RoleFinance, SupervisorID: strPtr("u-boss")},
		},
		permissions: map[string]*db.Permission{
			"customer.export": {Code: "customer.export", Name: "Export customers"},
			"user.grant":      {Code: "user.grant", Name: "Grant permissions", Sensitive: true},
		},
		rolePerms: map[string][]db.RolePermission{
			roles.RoleBoss: {
				{RoleCode: roles.RoleBoss, PermissionCode: "customer.export"},
				{RoleCode: roles.RoleBoss, PermissionCode: "user.grant"},
			},
			roles.RoleManager: {
				{RoleCode: roles.RoleManager, PermissionCode: "customer.export"},
			},
		},
	}
}

func TestCanManageUser(t *testing.T) {
	c := NewChecker(testDirectory(), roles.Default())
	ctx := context.Background()

	tests := []struct {
		name      string
		managerID string
		targetID  string
		want      bool
	}{
		{"self is never manageable", "u-boss", "u-boss", false},
		{"admin manages anyone", "u-admin", "u-operator", true},
		{"admin manages boss", "u-admin", "u-boss", true},
		{"direct report", "u-manager", "u-operator", true},
		{"manager cannot skip levels", "u-manager", "u-finance", false},
		{"boss manages lower ranked non-report", "u-boss", "u-operator", true},
		{"boss cannot manage admin", "u-boss", "u-admin", false},
		{"operator manages nobody", "u-operator", "u-manager", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.CanManageUser(ctx, tt.managerID, tt.targetID)
			if err != nil {
				t.Fatalf("CanManageUser failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("CanManageUser(%s, %s) = %v, want %v", tt.managerID, tt.targetID, got, tt.want)
			}
		})
	}
}

func TestUserHierarchy(t *testing.T) {
	c := NewChecker(testDirectory(), roles.Default())

	ancestors, err := c.UserHierarchy(context.Background(), "u-operator")
	if err != nil {
		t.Fatalf("UserHierarchy failed: %v", err)
	}
	if len(ancestors) != 2 {
		t.Fatalf("Expected 2 ancestors, got %d", len(ancestors))
	}
	if ancestors[0].ID != "u-manager" || ancestors[1].ID != "u-boss" {
		t.Errorf("Unexpected ancestor order: %s, %s", ancestors[0].ID, ancestors[1].ID)
	}
}

func TestUserHierarchy_CycleTerminates(t *testing.T) {
	dir := testDirectory()
	/* u-a -> u-b -> u-c -> u-a */
	dir.users["u-a"] = &db.User{ID: "u-a", RoleCode: roles.RoleOperator, SupervisorID: strPtr("u-b")}
	dir.users["u-b"] = &db.User{ID: "u-b", RoleCode: roles.RoleManager, SupervisorID: strPtr("u-c")}
	dir.users["u-c"] = &db.User{ID: "u-c", RoleCode: roles.RoleBoss, SupervisorID: strPtr("u-a")}

	c := NewChecker(dir, roles.Default())
	ancestors, err := c.UserHierarchy(context.Background(), "u-a")
	if err != nil {
		t.Fatalf("UserHierarchy failed on cyclic chain: %v", err)
	}

	if len(ancestors) != 2 {
		t.Fatalf("Expected 2 ancestors from cyclic chain, got %d", len(ancestors))
	}
	seen := map[string]bool{}
	for _, a := range ancestors {
		if seen[a.ID] {
			t.Errorf("Duplicate ancestor %s", a.ID)
		}
		seen[a.ID] = true
	}
}

func TestUserHierarchy_SelfCycle(t *testing.T) {
	dir := testDirectory()
	dir.users["u-loop"] = &db.User{ID: "u-loop", RoleCode: roles.RoleOperator, SupervisorID: strPtr("u-loop")}

	c := NewChecker(dir, roles.Default())
	ancestors, err := c.UserHierarchy(context.Background(), "u-loop")
	if err != nil {
		t.Fatalf("UserHierarchy failed on self cycle: %v", err)
	}
	if len(ancestors) != 0 {
		t.Errorf("Expected no ancestors for self cycle, got %d", len(ancestors))
	}
}

func TestUserHierarchy_DanglingSupervisor(t *testing.T) {
	dir := testDirectory()
	dir.users["u-orphan"] = &db.User{ID: "u-orphan", RoleCode: roles.RoleOperator, SupervisorID: strPtr("u-gone")}

	c := NewChecker(dir, roles.Default())
	ancestors, err := c.UserHierarchy(context.Background(), "u-orphan")
	if err != nil {
		t.Fatalf("UserHierarchy failed on dangling pointer: %v", err)
	}
	if len(ancestors) != 0 {
		t.Errorf("Expected no ancestors past dangling pointer, got %d", len(ancestors))
	}
}

func TestCanGrantPermission(t *testing.T) {
	c := NewChecker(testDirectory(), roles.Default())
	ctx := context.Background()

	tests := []struct {
		name       string
		granterID  string
		permission string
		want       bool
	}{
		{"admin grants anything", "u-admin", "user.grant", true},
		{"boss grants held permission", "u-boss", "customer.export", true},
		{"boss grants held sensitive permission", "u-boss", "user.grant", true},
		{"manager grants held permission", "u-manager", "customer.export", true},
		{"manager cannot grant unheld permission", "u-manager", "user.grant", false},
		{"operator lacks can-manage-team", "u-operator", "customer.export", false},
		{"unknown permission is not grantable", "u-boss", "bogus.permission", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.CanGrantPermission(ctx, tt.granterID, tt.permission)
			if err != nil {
				t.Fatalf("CanGrantPermission failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("CanGrantPermission(%s, %s) = %v, want %v", tt.granterID, tt.permission, got, tt.want)
			}
		})
	}
}

func TestCanGrantPermission_SensitiveRequiresBoss(t *testing.T) {
	dir := testDirectory()
	/* Give manager the sensitive grant so only the sensitivity rule blocks it */
	dir.rolePerms[roles.RoleManager] = append(dir.rolePerms[roles.RoleManager],
		db.RolePermission{RoleCode: roles.RoleManager, PermissionCode: "user.grant"})

	c := NewChecker(dir, roles.Default())
	got, err := c.CanGrantPermission(context.Background(), "u-manager", "user.grant")
	if err != nil {
		t.Fatalf("CanGrantPermission failed: %v", err)
	}
	if got {
		t.Error("Expected sensitive permission grant to be denied below boss")
	}
}

func TestCheckApproverPermission(t *testing.T) {
	c := NewChecker(testDirectory(), roles.Default())

	trigger := &db.OperationTrigger{
		OperationCode: "SUPPLIER_DELETE",
		ApproverRoles: []string{roles.RoleAdmin, roles.RoleBoss},
	}

	tests := []struct {
		name    string
		role    string
		trigger *db.OperationTrigger
		want    bool
	}{
		{"admin always authorized", roles.RoleAdmin, trigger, true},
		{"listed role authorized", roles.RoleBoss, trigger, true},
		{"unlisted role denied", roles.RoleOperator, trigger, false},
		{"no trigger metadata allows admin", roles.RoleAdmin, nil, true},
		{"no trigger metadata allows boss", roles.RoleBoss, nil, true},
		{"no trigger metadata denies manager", roles.RoleManager, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.CheckApproverPermission(tt.role, tt.trigger); got != tt.want {
				t.Errorf("CheckApproverPermission(%s) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}
