package dto

import (
	"time"

	"github.com/pophero110/trackly-sub002/model"
)

type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type AuthResponse struct {
	User    UserResponse `json:"user"`
	Token   string       `json:"token"`
	Refresh string       `json:"refresh"`
}

type UserProfileResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	TwoFactorEnabled bool      `json:"twoFactorEnabled"`
}

func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:    user.UserID,
		Email: user.Email,
		Name:  user.Name,
	}
}

func ToUserProfileResponse(user *model.User) UserProfileResponse {
	return UserProfileResponse{
		ID:               user.UserID,
		Email:            user.Email,
		Name:             user.Name,
		CreatedAt:        user.CreatedAt,
		TwoFactorEnabled: user.TwoFactorEnabled,
	}
}
