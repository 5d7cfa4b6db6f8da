package model

import "time"

type User struct {
	UserID             string     `bson:"user_id" json:"id"`
	Email              string     `bson:"email" json:"email" binding:"required,email"`
	Name               string     `bson:"name,omitempty" json:"name,omitempty"`
	Password           string     `bson:"password" json:"password,omitempty" binding:"required,password"`
	CreatedAt          time.Time  `bson:"created_at" json:"createdAt"`
	LastEmailChange    *time.Time `bson:"last_email_change,omitempty" json:"-"`
	LastPasswordChange *time.Time `bson:"last_password_change,omitempty" json:"-"`
	TwoFactorSecret    string     `bson:"two_factor_secret,omitempty" json:"-"`
	TwoFactorEnabled   bool       `bson:"two_factor_enabled" json:"-"`
	RecoveryCodes      []string   `bson:"recovery_codes,omitempty" json:"-"`
}

type LoginRequest struct {
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required"`
	TwoFactorCode string `json:"two_factor_code,omitempty"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,password"`
	Name     string `json:"name,omitempty"`
}
