package auth

import "errors"

var (
	ErrInvalidToken      = errors.New("invalid or expired token")
	ErrTokenExpired      = errors.New("token has expired")
	ErrCompanyIDRequired = errors.New("token carries no company")
	ErrManagerRequired   = errors.New("manager or owner access required")
)
