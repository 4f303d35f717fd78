package models

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	UID      string `json:"uid" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

type CreateUserRequest struct {
	Username string  `json:"username" binding:"required,min=6,max=50"`
	Nickname string  `json:"nickname" binding:"omitempty,max=50"`
	Email    string  `json:"email" binding:"required,email"`
	Mobile   string  `json:"mobile" binding:"omitempty,max=11"`
	Gender   Gender  `json:"gender" binding:"omitempty,min=0,max=2"`
	Avatar   string  `json:"avatar" binding:"omitempty,max=150"`
	Password string  `json:"password" binding:"required,min=6,max=20"`
	IsSuper  bool    `json:"is_super"`
	Roles    []int64 `json:"roles"`
}

// UpdateUserRequest uses pointers so that absent fields are left untouched.
type UpdateUserRequest struct {
	Username *string  `json:"username" binding:"omitempty,min=6,max=50"`
	Nickname *string  `json:"nickname" binding:"omitempty,max=50"`
	Email    *string  `json:"email" binding:"omitempty,email"`
	Mobile   *string  `json:"mobile" binding:"omitempty,max=11"`
	Gender   *Gender  `json:"gender" binding:"omitempty,min=0,max=2"`
	Avatar   *string  `json:"avatar" binding:"omitempty,max=150"`
	Status   *Status  `json:"status" binding:"omitempty,min=0,max=1"`
	Remark   *string  `json:"remark" binding:"omitempty,max=100"`
	Roles    *[]int64 `json:"roles"`
}

type CreateRoleRequest struct {
	Name   string `json:"name" binding:"required,max=50"`
	Key    string `json:"key" binding:"required,max=50"`
	Status Status `json:"status" binding:"omitempty,min=0,max=1"`
}

type UpdateRoleRequest struct {
	Name   *string `json:"name" binding:"omitempty,max=50"`
	Key    *string `json:"key" binding:"omitempty,max=50"`
	Status *Status `json:"status" binding:"omitempty,min=0,max=1"`
}

type AssignMenusRequest struct {
	MenuIDs []int64 `json:"menu_ids"`
}

type CreateMenuRequest struct {
	Name     string   `json:"name" binding:"required,max=50"`
	ParentID int64    `json:"parent_id" binding:"min=0"`
	OrderNum int      `json:"order_num"`
	Path     string   `json:"path" binding:"max=256"`
	MenuType MenuType `json:"menu_type" binding:"required,oneof=M C F"`
	Visible  *bool    `json:"visible"`
	Status   Status   `json:"status" binding:"omitempty,min=0,max=1"`
	Perm     string   `json:"perm" binding:"max=100"`
	Icon     string   `json:"icon" binding:"max=256"`
}

type UpdateMenuRequest struct {
	Name     *string   `json:"name" binding:"omitempty,max=50"`
	ParentID *int64    `json:"parent_id" binding:"omitempty,min=0"`
	OrderNum *int      `json:"order_num"`
	Path     *string   `json:"path" binding:"omitempty,max=256"`
	MenuType *MenuType `json:"menu_type" binding:"omitempty,oneof=M C F"`
	Visible  *bool     `json:"visible"`
	Status   *Status   `json:"status" binding:"omitempty,min=0,max=1"`
	Perm     *string   `json:"perm" binding:"omitempty,max=100"`
	Icon     *string   `json:"icon" binding:"omitempty,max=256"`
}

type PaginatedResponse[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	PageNo   int `json:"page_no"`
	PageSize int `json:"page_size"`
}
