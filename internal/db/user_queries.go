/*-------------------------------------------------------------------------
 *
 * user_queries.go
 *    Database queries for the user directory and permission grants
 *
 * The engine consumes these tables; it does not own them. They are
 * maintained by the ERP's administration module.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/db/user_queries.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

/* User directory queries */
const (
	getUserQuery = `SELECT * FROM sysafari_approval.users WHERE id = $1`

	listUsersByRolesQuery = `
		SELECT * FROM sysafari_approval.users
		WHERE role_code = ANY($1) AND active = true
		ORDER BY id`

	getPermissionQuery = `SELECT * FROM sysafari_approval.permissions WHERE code = $1`

	listRolePermissionsQuery = `
		SELECT * FROM sysafari_approval.role_permissions WHERE role_code = $1`

	grantRolePermissionQuery = `
		INSERT INTO sysafari_approval.role_permissions (role_code, permission_code)
		VALUES ($1, $2)
		ON CONFLICT (role_code, permission_code) DO NOTHING`
)

func (q *Queries) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	err := q.DB.GetContext(ctx, &u, getUserQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: id=%s, error=%w", id, err)
	}
	return &u, nil
}

/* ListUsersByRoles returns active users holding any of the given roles */
func (q *Queries) ListUsersByRoles(ctx context.Context, roleCodes []string) ([]User, error) {
	var users []User
	err := q.DB.SelectContext(ctx, &users, listUsersByRolesQuery, pq.StringArray(roleCodes))
	if err != nil {
		return nil, fmt.Errorf("failed to list users by roles: %w", err)
	}
	return users, nil
}

func (q *Queries) GetPermission(ctx context.Context, code string) (*Permission, error) {
	var p Permission
	err := q.DB.GetContext(ctx, &p, getPermissionQuery, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("permission %s: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get permission: code=%s, error=%w", code, err)
	}
	return &p, nil
}

func (q *Queries) ListRolePermissions(ctx context.Context, roleCode string) ([]RolePermission, error) {
	var perms []RolePermission
	err := q.DB.SelectContext(ctx, &perms, listRolePermissionsQuery, roleCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list role permissions: role=%s, error=%w", roleCode, err)
	}
	return perms, nil
}

/* GrantRolePermission attaches a permission to a role. Granting an
 * already-held permission is a no-op. */
func (q *Queries) GrantRolePermission(ctx context.Context, roleCode, permissionCode string) error {
	_, err := q.DB.ExecContext(ctx, grantRolePermissionQuery, roleCode, permissionCode)
	if err != nil {
		return fmt.Errorf("failed to grant permission: role=%s, permission=%s, error=%w", roleCode, permissionCode, err)
	}
	return nil
}
