package storage

import "errors"

// Common client storage errors
var (
	// ErrAuthNotFound indicates that no authentication data exists
	ErrAuthNotFound = errors.New("authentication data not found")

	// ErrCacheMiss indicates that the cache key is absent or expired
	ErrCacheMiss = errors.New("cache miss")

	// ErrMutationNotFound indicates that a queued mutation was not found
	ErrMutationNotFound = errors.New("queued mutation not found")

	// ErrDuplicateMutation indicates that a mutation with the same
	// idempotency key is already queued
	ErrDuplicateMutation = errors.New("mutation with this idempotency key already queued")

	// ErrDeviceNotFound indicates that no device identity has been stored yet
	ErrDeviceNotFound = errors.New("device identity not found")
)
