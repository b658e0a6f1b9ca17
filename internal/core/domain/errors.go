package domain

import "errors"

// Common domain errors
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")
)

// Finance errors
var (
	ErrFinanceNotFound     = errors.New("finance not found")
	ErrInvalidVehicleValue = errors.New("vehicle value must be greater than 0")
	ErrOwnerMismatch       = errors.New("finance does not belong to this user")
	ErrStatusChangeDenied  = errors.New("only administrators may change the finance status")
	ErrOwnerChangeDenied   = errors.New("finance ownership cannot be transferred")
	ErrInvalidStatus       = errors.New("invalid finance status")
)

// Contract errors
var (
	ErrContractNotFound      = errors.New("contract not found")
	ErrContractAlreadySigned = errors.New("contract already signed")
	ErrFinanceNotApproved    = errors.New("only approved finances can be signed")
)
