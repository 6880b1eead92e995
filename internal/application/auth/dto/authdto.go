package dto

import "time"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

type LoginResponse struct {
	UserID             uint      `json:"user_id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Roles              []string  `json:"roles"`
	MustChangePassword bool      `json:"must_change_password"`
	ExpiresAt          time.Time `json:"expires_at"`
	// AccessToken is set as a cookie by the handler and also returned for API clients.
	AccessToken string `json:"access_token"`
}

type ChangePasswordRequest struct {
	CurrentPassword      string `json:"current_password" validate:"required"`
	Password             string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	LogoutOtherSessions  bool   `json:"logout_other_sessions"`
}

type CreateUserRequest struct {
	TenantID           uint     `json:"tenant_id" validate:"required,gt=0"`
	Name               string   `json:"name" validate:"required,max=255"`
	Email              string   `json:"email" validate:"required,email,max=255"`
	Password           string   `json:"password" validate:"required,min=8,max=72"`
	Roles              []string `json:"roles" validate:"omitempty,dive,required"`
	MustChangePassword bool     `json:"must_change_password"`
}

type UserResponse struct {
	ID                 uint     `json:"id"`
	TenantID           uint     `json:"tenant_id"`
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	Roles              []string `json:"roles"`
	IsActive           bool     `json:"is_active"`
	MustChangePassword bool     `json:"must_change_password"`
}
