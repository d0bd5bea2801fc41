package repository

import "errors"

var (
	// ErrProgressNotFound is returned when no progress record exists for a
	// (subject, asset) pair.
	ErrProgressNotFound = errors.New("progress record not found")

	// ErrObjectNotFound is returned when a storage object does not exist.
	ErrObjectNotFound = errors.New("object not found")

	// ErrBucketNotFound is returned when the configured bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")
)
