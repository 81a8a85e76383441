package service

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrApprovalNotFound   = errors.New("approval not found")
	ErrNotPending         = errors.New("approval is not pending")
	ErrDuplicatePending   = errors.New("pending approval already exists")
	ErrNoEligibleApprover = errors.New("no eligible approver")
	ErrStaleState         = errors.New("contract state changed concurrently")
)
