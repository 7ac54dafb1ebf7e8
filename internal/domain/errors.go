// Package domain holds cross-cutting domain types and sentinel errors.
package domain

import "errors"

var (
	// ErrMalformedRecord signals an indexed document whose identifier cannot
	// be parsed back into a transaction ID. Indicates drift between ingestion
	// and retrieval, not a user-input problem.
	ErrMalformedRecord = errors.New("malformed indexed record")
	// ErrUnknownEnum signals an indexed enumeration value outside its known set.
	ErrUnknownEnum = errors.New("unknown enumeration value")
	// ErrBatchTooLarge signals an ingestion batch over the configured limit.
	ErrBatchTooLarge = errors.New("batch too large")
)
