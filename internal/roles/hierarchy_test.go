package roles

import (
	"testing"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/config"
)

func TestDefaultLevels(t *testing.T) {
	h := Default()

	tests := []struct {
		code  string
		level int
	}{
		{RoleAdmin, 1},
		{RoleBoss, 2},
		{RoleManager, 3},
		{RoleFinance, 3},
		{RoleOperator, 4},
		{RoleViewer, 5},
		{"warehouse-temp", 99},
	}
	for _, tt := range tests {
		if got := h.Level(tt.code); got != tt.level {
			t.Errorf("Level(%s) = %d, want %d", tt.code, got, tt.level)
		}
	}
}

func TestCapabilities(t *testing.T) {
	h := Default()

	if !h.CanApprove(RoleFinance) || h.CanManageTeam(RoleFinance) {
		t.Error("Finance approves but does not manage a team")
	}
	if h.CanApprove(RoleOperator) {
		t.Error("Operator must not approve")
	}
	if h.CanApprove("unknown") || h.CanManageTeam("unknown") {
		t.Error("Unknown roles carry no capabilities")
	}
	if !h.IsAdmin(RoleAdmin) || h.IsAdmin(RoleBoss) {
		t.Error("IsAdmin must match only the admin code")
	}
}

func TestFromConfigOverrides(t *testing.T) {
	h := FromConfig([]config.RoleConfig{
		{Code: "auditor", Level: 3, CanApprove: true},
		{Code: RoleOperator, Level: 4, CanApprove: true},
		{Code: ""},
	})

	if !h.CanApprove("auditor") || h.Level("auditor") != 3 {
		t.Error("Configured role not applied")
	}
	if !h.CanApprove(RoleOperator) {
		t.Error("Override of a built-in role not applied")
	}
	/* Untouched defaults survive */
	if h.Level(RoleBoss) != 2 {
		t.Error("Defaults must survive overrides")
	}
}

func TestFromConfigUnsetLevel(t *testing.T) {
	h := FromConfig([]config.RoleConfig{
		{Code: RoleOperator, CanApprove: true},
		{Code: "auditor", CanApprove: true},
	})

	/* An override without a level keeps the role's current rank
	 * instead of silently outranking admin with level 0 */
	if got := h.Level(RoleOperator); got != 4 {
		t.Errorf("Level(operator) = %d, want 4", got)
	}
	if got := h.Level("auditor"); got != 99 {
		t.Errorf("Level(auditor) = %d, want unknown-role default 99", got)
	}
	if h.Level(RoleOperator) < h.Level(RoleAdmin) {
		t.Error("Level-less override must not outrank admin")
	}
}
