package models

import (
	"time"
)

// Status is shared by users, roles and menu nodes: 0 enabled, 1 disabled.
type Status int

const (
	StatusEnable  Status = 0
	StatusDisable Status = 1
)

type Gender int

const (
	GenderUnknown Gender = 0
	GenderMale    Gender = 1
	GenderFemale  Gender = 2
)

type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Nickname     string    `json:"nickname" db:"nickname"`
	Email        string    `json:"email" db:"email"`
	Mobile       string    `json:"mobile" db:"mobile"`
	Gender       Gender    `json:"gender" db:"gender"`
	Avatar       string    `json:"avatar" db:"avatar"`
	PasswordHash string    `json:"-" db:"password"`
	Status       Status    `json:"status" db:"status"`
	IsSuper      bool      `json:"is_super" db:"is_super"`
	Remark       string    `json:"remark" db:"remark"`
	DelFlag      bool      `json:"del_flag" db:"del_flag"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

func (u *User) IsEnabled() bool {
	return u.Status == StatusEnable && !u.DelFlag
}
