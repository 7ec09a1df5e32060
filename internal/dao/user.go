package dao

import (
	"time"

	"injuryshield/internal/model"
)

type UserSpec struct {
	Id          int    `json:"id"`
	Username    string `json:"username" binding:"required"`
	Nickname    string `json:"nickname" binding:"required"`
	IsAdmin     bool   `json:"isAdmin"`
	CreatedTime string `json:"createdTime" binding:"required,datetime=RFC3339"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string   `json:"token"`
	User  UserSpec `json:"user"`
}

type ListUsersRequest struct {
	Start int `form:"start"`
	Limit int `form:"limit"`
}

type ListUsersResponse struct {
	Total int        `json:"total"`
	Items []UserSpec `json:"items"`
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6,password"`
	Nickname string `json:"nickname" binding:"required"`
	IsAdmin  bool   `json:"isAdmin"`
}

type CreateUserResponse struct {
	Id int `json:"id"`
}

func ToUserSpec(u *model.User) UserSpec {
	return UserSpec{
		Id:          u.Id,
		Username:    u.Username,
		Nickname:    u.Nickname,
		IsAdmin:     u.IsAdmin,
		CreatedTime: u.CreatedTime.Format(time.RFC3339),
	}
}

func (r CreateUserRequest) ToUserModel() (*model.User, error) {
	u := &model.User{
		Username:    r.Username,
		Nickname:    r.Nickname,
		IsAdmin:     r.IsAdmin,
		AccessToken: model.NewAccessToken(),
	}
	if err := u.SetPassword(r.Password); err != nil {
		return nil, err
	}
	return u, nil
}
