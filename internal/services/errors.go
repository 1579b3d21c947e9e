// Package services defines the business logic for proposals, orders, and the
// retention policy that purges closed proposals. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"

	"github.com/tbourn/go-groupbuy-backend/internal/domain"
)

// Validation errors.
var (
	// ErrMissingField is returned when a required request field is absent.
	ErrMissingField = errors.New("required field missing")

	// ErrInvalidThreshold is returned when a threshold is non-numeric or negative.
	ErrInvalidThreshold = errors.New("threshold must be a non-negative integer")

	// ErrInvalidPrice is returned when a price is absent or non-numeric.
	ErrInvalidPrice = errors.New("price must be an integer")

	// ErrInvalidID is returned when a path or body identifier is not a
	// positive integer.
	ErrInvalidID = errors.New("id must be a positive integer")
)

// Lifecycle errors.
var (
	// ErrProposalNotFound indicates that the referenced proposal does not exist.
	ErrProposalNotFound = errors.New("proposal not found")

	// ErrInvalidTransition is returned when a status change would violate the
	// proposal lifecycle (e.g. reopening a closed proposal).
	ErrInvalidTransition = domain.ErrInvalidTransition
)
