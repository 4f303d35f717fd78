package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Su57/stardew/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenuRepository_List_Paginates(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMenuRepository(db)

	rows := sqlmock.NewRows(menuRowColumns).
		AddRow(int64(3), "Roles", int64(1), 2, "/system/role", "C", true, int64(0), "", "", time.Now())
	mock.ExpectQuery(`FROM sys_menu ORDER BY order_num, id LIMIT \$1 OFFSET \$2`).
		WithArgs(10, 20).
		WillReturnRows(rows)

	menus, err := repo.List(context.Background(), 10, 20)
	require.NoError(t, err)
	require.Len(t, menus, 1)
	assert.Equal(t, int64(1), menus[0].ParentID)
}

func TestMenuRepository_GetMenuByPerm_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMenuRepository(db)

	mock.ExpectQuery(`FROM sys_menu WHERE perm = \$1`).
		WithArgs("sys:x").
		WillReturnRows(sqlmock.NewRows(menuRowColumns))

	_, err := repo.GetMenuByPerm(context.Background(), "sys:x")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMenuRepository_Update_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMenuRepository(db)

	mock.ExpectExec(`UPDATE sys_menu`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Menu{ID: 42, Name: "x", MenuType: models.MenuTypeButton})
	assert.ErrorIs(t, err, models.ErrNotFound)
}
