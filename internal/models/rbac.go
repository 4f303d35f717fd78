package models

import "time"

type Role struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Key       string    `json:"key" db:"key"`
	Status    Status    `json:"status" db:"status"`
	DelFlag   bool      `json:"del_flag" db:"del_flag"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MenuType tells a navigation category, a page and an action button apart.
type MenuType string

const (
	MenuTypeCategory MenuType = "M"
	MenuTypeMenu     MenuType = "C"
	MenuTypeButton   MenuType = "F"
)

func (t MenuType) Valid() bool {
	switch t {
	case MenuTypeCategory, MenuTypeMenu, MenuTypeButton:
		return true
	}
	return false
}

// RootMenuID is the parent id of top level menu nodes.
const RootMenuID int64 = 0

// Menu is one node of the menu/permission tree. The tree is stored flat and
// linked through ParentID only.
type Menu struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ParentID  int64     `json:"parent_id" db:"parent_id"`
	OrderNum  int       `json:"order_num" db:"order_num"`
	Path      string    `json:"path" db:"path"`
	MenuType  MenuType  `json:"menu_type" db:"menu_type"`
	Visible   bool      `json:"visible" db:"visible"`
	Status    Status    `json:"status" db:"status"`
	Perm      string    `json:"perm" db:"perm"`
	Icon      string    `json:"icon" db:"icon"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type TreeNode struct {
	ID       int64       `json:"id"`
	Label    string      `json:"label"`
	ParentID int64       `json:"parent_id"`
	OrderNum int         `json:"order_num"`
	Path     string      `json:"path"`
	MenuType MenuType    `json:"menu_type"`
	Visible  bool        `json:"visible"`
	Perm     string      `json:"perm"`
	Icon     string      `json:"icon"`
	Children []*TreeNode `json:"children"`
}

type RoleMenuTree struct {
	Tree        []*TreeNode `json:"tree"`
	CheckedKeys []int64     `json:"checked_keys"`
}
