/*-------------------------------------------------------------------------
 *
 * checker.go
 *    Permission and delegation checks
 *
 * Answers "can user A manage user B", "can user A grant permission P",
 * and "may this role approve this operation", using the role hierarchy,
 * direct-report relationships, and per-role permission grants.
 *
 * The supervisor reference is a single-parent pointer. The graph is
 * expected to be acyclic but is not trusted: every upward walk carries
 * a visited set and stops when it sees a repeated node.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/delegation/checker.go
 *
 *-------------------------------------------------------------------------
 */

package delegation

import (
	"context"
	"errors"
	"fmt"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/db"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/roles"
)

/* Directory supplies user and permission records */
type Directory interface {
	GetUser(ctx context.Context, id string) (*db.User, error)
	GetPermission(ctx context.Context, code string) (*db.Permission, error)
	ListRolePermissions(ctx context.Context, roleCode string) ([]db.RolePermission, error)
}

type Checker struct {
	directory Directory
	hierarchy *roles.Hierarchy
}

func NewChecker(directory Directory, hierarchy *roles.Hierarchy) *Checker {
	return &Checker{directory: directory, hierarchy: hierarchy}
}

/* CanManageUser reports whether managerID may act on targetID.
 *
 * A user never manages themselves. Admin manages everyone. Otherwise
 * the manager's role must carry can-manage-team, and either the target
 * reports directly to the manager, or the manager holds the top
 * non-admin role, ranks strictly above the target, and the target is
 * not admin. */
func (c *Checker) CanManageUser(ctx context.Context, managerID, targetID string) (bool, error) {
	if managerID == targetID {
		return false, nil
	}

	manager, err := c.directory.GetUser(ctx, managerID)
	if err != nil {
		return false, fmt.Errorf("manager lookup failed: %w", err)
	}

	if c.hierarchy.IsAdmin(manager.RoleCode) {
		return true, nil
	}

	if !c.hierarchy.CanManageTeam(manager.RoleCode) {
		return false, nil
	}

	target, err := c.directory.GetUser(ctx, targetID)
	if err != nil {
		return false, fmt.Errorf("target lookup failed: %w", err)
	}

	/* Direct reports are manageable regardless of level comparison */
	if target.SupervisorID != nil && *target.SupervisorID == managerID {
		return true, nil
	}

	if !c.hierarchy.IsBoss(manager.RoleCode) {
		return false, nil
	}
	if c.hierarchy.IsAdmin(target.RoleCode) {
		return false, nil
	}
	return c.hierarchy.Level(manager.RoleCode) < c.hierarchy.Level(target.RoleCode), nil
}

/* UserHierarchy walks the supervisor chain upward from userID,
 * excluding the user, collecting each ancestor once. A cycle in the
 * chain terminates the walk rather than erroring. */
func (c *Checker) UserHierarchy(ctx context.Context, userID string) ([]db.User, error) {
	user, err := c.directory.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	visited := map[string]bool{user.ID: true}
	var ancestors []db.User

	current := user
	for current.SupervisorID != nil {
		supervisorID := *current.SupervisorID
		if visited[supervisorID] {
			break
		}
		visited[supervisorID] = true

		supervisor, err := c.directory.GetUser(ctx, supervisorID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				/* Dangling pointer: the chain ends here */
				break
			}
			return nil, fmt.Errorf("supervisor lookup failed: %w", err)
		}

		ancestors = append(ancestors, *supervisor)
		current = supervisor
	}

	return ancestors, nil
}

/* CanGrantPermission reports whether granterID may grant permissionCode.
 *
 * Admin may grant anything. Otherwise the granter needs can-manage-team
 * and must themselves hold the permission (a delegator never grants a
 * permission they do not possess). Sensitive permissions are further
 * restricted to admin and boss. */
func (c *Checker) CanGrantPermission(ctx context.Context, granterID, permissionCode string) (bool, error) {
	granter, err := c.directory.GetUser(ctx, granterID)
	if err != nil {
		return false, fmt.Errorf("granter lookup failed: %w", err)
	}

	if c.hierarchy.IsAdmin(granter.RoleCode) {
		return true, nil
	}

	if !c.hierarchy.CanManageTeam(granter.RoleCode) {
		return false, nil
	}

	held, err := c.roleHoldsPermission(ctx, granter.RoleCode, permissionCode)
	if err != nil {
		return false, err
	}
	if !held {
		return false, nil
	}

	permission, err := c.directory.GetPermission(ctx, permissionCode)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("permission lookup failed: %w", err)
	}

	if permission.Sensitive && !c.hierarchy.IsBoss(granter.RoleCode) {
		return false, nil
	}
	return true, nil
}

func (c *Checker) roleHoldsPermission(ctx context.Context, roleCode, permissionCode string) (bool, error) {
	grants, err := c.directory.ListRolePermissions(ctx, roleCode)
	if err != nil {
		return false, fmt.Errorf("role permission lookup failed: role=%s, error=%w", roleCode, err)
	}
	for _, g := range grants {
		if g.PermissionCode == permissionCode {
			return true, nil
		}
	}
	return false, nil
}

/* CheckApproverPermission reports whether approverRole may decide
 * requests gated by trigger. Admin always may. Without trigger metadata
 * the check falls back to admin and boss only. */
func (c *Checker) CheckApproverPermission(approverRole string, trigger *db.OperationTrigger) bool {
	if c.hierarchy.IsAdmin(approverRole) {
		return true
	}
	if trigger == nil {
		return c.hierarchy.IsBoss(approverRole)
	}
	for _, role := range trigger.ApproverRoles {
		if role == approverRole {
			return true
		}
	}
	return false
}
