package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Su57/stardew/internal/models"

	"github.com/jmoiron/sqlx"
)

type UserRepository interface {
	CRUDRepository[models.User, string]
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SoftDelete(ctx context.Context, id string) error
	GetUserRoles(ctx context.Context, userID string) ([]*models.Role, error)
	SetUserRoles(ctx context.Context, userID string, roleIDs []int64) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, nickname, email, mobile, gender, avatar, password, status, is_super, remark, del_flag, created_at, updated_at`

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM sys_user WHERE id = $1`
	if err := getOne(ctx, r.db, &user, "user", query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM sys_user WHERE email = $1`
	if err := getOne(ctx, r.db, &user, "user", query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	users := []*models.User{}
	query, args := paginate(`SELECT `+userColumns+` FROM sys_user ORDER BY created_at DESC, id`, limit, offset)

	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM sys_user`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return total, nil
}

// Create expects PasswordHash to already hold the hashed password.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO sys_user (id, username, nickname, email, mobile, gender, avatar, password,
		                      status, is_super, remark, del_flag, created_at, updated_at)
		VALUES (:id, :username, :nickname, :email, :mobile, :gender, :avatar, :password,
		        :status, :is_super, :remark, :del_flag, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("failed to create user: %w", translatePGError(err))
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()

	query := `
		UPDATE sys_user
		SET username = $2, nickname = $3, email = $4, mobile = $5, gender = $6, avatar = $7,
		    status = $8, is_super = $9, remark = $10, del_flag = $11, updated_at = $12
		WHERE id = $1`

	return execWithCheck(ctx, r.db, "update user", query,
		user.ID, user.Username, user.Nickname, user.Email, user.Mobile, user.Gender, user.Avatar,
		user.Status, user.IsSuper, user.Remark, user.DelFlag, user.UpdatedAt)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return execWithCheck(ctx, r.db, "delete user", `DELETE FROM sys_user WHERE id = $1`, id)
}

func (r *userRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE sys_user SET del_flag = true, status = $1, updated_at = $2 WHERE id = $3`
	return execWithCheck(ctx, r.db, "soft delete user", query, models.StatusDisable, time.Now(), id)
}

func (r *userRepository) GetUserRoles(ctx context.Context, userID string) ([]*models.Role, error) {
	roles := []*models.Role{}
	query := `
		SELECT r.id, r.name, r.key, r.status, r.del_flag, r.created_at
		FROM sys_role r
		INNER JOIN sys_user_role ur ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.id`

	if err := r.db.SelectContext(ctx, &roles, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get user roles: %w", err)
	}
	return roles, nil
}

// SetUserRoles replaces the role set of a user in one transaction.
func (r *userRepository) SetUserRoles(ctx context.Context, userID string, roleIDs []int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM sys_user_role WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear user roles: %w", err)
	}
	for _, roleID := range roleIDs {
		query := `INSERT INTO sys_user_role (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		if _, err := tx.ExecContext(ctx, query, userID, roleID); err != nil {
			return fmt.Errorf("failed to assign role %d: %w", roleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user roles: %w", err)
	}
	return nil
}
