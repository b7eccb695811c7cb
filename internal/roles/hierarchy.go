/*-------------------------------------------------------------------------
 *
 * hierarchy.go
 *    Static role hierarchy for the approval engine
 *
 * Maps role codes to a numeric level and capability flags. Lower level
 * means higher privilege. All role comparisons across the engine go
 * through this structure; no component compares inline level literals.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/roles/hierarchy.go
 *
 *-------------------------------------------------------------------------
 */

package roles

import (
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/config"
)

/* Well-known role codes */
const (
	RoleAdmin    = "admin"
	RoleBoss     = "boss"
	RoleManager  = "manager"
	RoleFinance  = "finance"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

/* defaultLevel is assigned to role codes absent from the hierarchy */
const defaultLevel = 99

type Role struct {
	Code          string
	Level         int
	CanManageTeam bool
	CanApprove    bool
}

/* Hierarchy is the role table, immutable after construction */
type Hierarchy struct {
	roles map[string]Role
}

/* Default returns the built-in ERP role table */
func Default() *Hierarchy {
	h := &Hierarchy{roles: make(map[string]Role)}
	for _, r := range []Role{
		{Code: RoleAdmin, Level: 1, CanManageTeam: true, CanApprove: true},
		{Code: RoleBoss, Level: 2, CanManageTeam: true, CanApprove: true},
		{Code: RoleManager, Level: 3, CanManageTeam: true, CanApprove: true},
		{Code: RoleFinance, Level: 3, CanManageTeam: false, CanApprove: true},
		{Code: RoleOperator, Level: 4, CanManageTeam: false, CanApprove: false},
		{Code: RoleViewer, Level: 5, CanManageTeam: false, CanApprove: false},
	} {
		h.roles[r.Code] = r
	}
	return h
}

/* FromConfig builds a hierarchy by applying config overrides to defaults */
func FromConfig(overrides []config.RoleConfig) *Hierarchy {
	h := Default()
	for _, rc := range overrides {
		if rc.Code == "" {
			continue
		}
		/* Level <= 0 would outrank admin; fall back to the role's
		 * current level, or the unknown-role default for new codes. */
		level := rc.Level
		if level <= 0 {
			level = h.Level(rc.Code)
		}
		h.roles[rc.Code] = Role{
			Code:          rc.Code,
			Level:         level,
			CanManageTeam: rc.CanManageTeam,
			CanApprove:    rc.CanApprove,
		}
	}
	return h
}

/* Get returns the role entry for a code */
func (h *Hierarchy) Get(code string) (Role, bool) {
	r, ok := h.roles[code]
	return r, ok
}

/* Level returns the numeric level for a code, defaulting for unknown roles */
func (h *Hierarchy) Level(code string) int {
	if r, ok := h.roles[code]; ok {
		return r.Level
	}
	return defaultLevel
}

/* CanManageTeam reports whether a role carries the can-manage-team capability */
func (h *Hierarchy) CanManageTeam(code string) bool {
	r, ok := h.roles[code]
	return ok && r.CanManageTeam
}

/* CanApprove reports whether a role carries the can-approve capability */
func (h *Hierarchy) CanApprove(code string) bool {
	r, ok := h.roles[code]
	return ok && r.CanApprove
}

/* IsAdmin reports whether a code is the admin role */
func (h *Hierarchy) IsAdmin(code string) bool {
	return code == RoleAdmin
}

/* IsBoss reports whether a code is the top non-admin role */
func (h *Hierarchy) IsBoss(code string) bool {
	return code == RoleBoss
}
