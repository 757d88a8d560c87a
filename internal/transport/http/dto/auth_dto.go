package dto

import "time"

type RedeemInviteRequest struct {
	Code string `json:"code" validate:"required"`
}

type SessionResponse struct {
	OK              bool       `json:"ok"`
	AlreadyLoggedIn bool       `json:"already_logged_in,omitempty"`
	UserID          string     `json:"user_id,omitempty"`
	Token           string     `json:"token,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

type AuthMeResponse struct {
	UserID                 string       `json:"user_id"`
	User                   *UserProfile `json:"user"`
	HasCompletedOnboarding bool         `json:"has_completed_onboarding"`
}

type AccountLoginRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

type AccountItem struct {
	ID            string    `json:"id"`
	AnonymousName string    `json:"anonymous_name"`
	Gender        string    `json:"gender"`
	CreatedAt     time.Time `json:"created_at"`
}

type AccountsResponse struct {
	Accounts []AccountItem `json:"accounts"`
}

type LogoutResponse struct {
	OK bool `json:"ok"`
}
