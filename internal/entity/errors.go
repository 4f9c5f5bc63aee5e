package entity

import "errors"

var (
	ErrEmailAlreadyExists = errors.New("lead with this email already exists")
	ErrLeadNotFound       = errors.New("lead not found")
	ErrJobNotFound        = errors.New("sync job not found")
	ErrInvalidTransition  = errors.New("invalid sync job status transition")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
