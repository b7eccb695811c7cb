/*-------------------------------------------------------------------------
 *
 * handlers.go
 *    Built-in execution handlers
 *
 * The engine auto-executes the one stock operation whose target state
 * it stores itself: permission grants. Supplier deletion and invoice
 * adjustment mutate ERP tables owned by their business modules, which
 * register their own handlers at startup; until they do, those
 * approvals resolve to the manual-execution result.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/execution/handlers.go
 *
 *-------------------------------------------------------------------------
 */

package execution

import (
	"context"
	"fmt"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/db"
)

/* PermissionDirectory is the slice of the user directory the built-in
 * permission grant handler needs */
type PermissionDirectory interface {
	GetUser(ctx context.Context, id string) (*db.User, error)
	GrantRolePermission(ctx context.Context, roleCode, permissionCode string) error
}

/* RegisterBuiltinHandlers registers the engine-owned execution handlers
 * on a dispatcher. Called once at startup. */
func RegisterBuiltinHandlers(d *Dispatcher, directory PermissionDirectory) {
	d.Register(OpPermissionGrant, permissionGrantHandler(directory))
}

/* permissionGrantHandler applies an approved permission grant. Grants
 * are role scoped: the permission is attached to the target user's
 * role. Re-execution is harmless; the grant insert is a no-op when the
 * role already holds the permission. */
func permissionGrantHandler(directory PermissionDirectory) Handler {
	return HandlerFunc(func(ctx context.Context, req *db.ApprovalRequest) (Result, error) {
		var p PermissionGrantPayload
		if err := DecodePayload(req.RequestData, &p); err != nil {
			return Result{}, err
		}

		user, err := directory.GetUser(ctx, p.TargetUserID)
		if err != nil {
			return Result{}, fmt.Errorf("target user lookup failed: %w", err)
		}

		if err := directory.GrantRolePermission(ctx, user.RoleCode, p.PermissionCode); err != nil {
			return Result{}, err
		}

		return Result{
			Message: fmt.Sprintf("granted %s to role %s", p.PermissionCode, user.RoleCode),
			Output: map[string]interface{}{
				"roleCode":       user.RoleCode,
				"permissionCode": p.PermissionCode,
			},
		}, nil
	})
}
