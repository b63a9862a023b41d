package services

import "errors"

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrHistoryNotFound = errors.New("rental history not found")
	ErrNotProjectOwner = errors.New("caller is not an owner of this project")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrTooManyAttempts = errors.New("too many failed login attempts")
	ErrInvalidStatus   = errors.New("invalid history status")
)
