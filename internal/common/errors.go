// Package common defines shared constants and sentinel errors used across
// client and server layers of StudioVault. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Validation errors: the file never enters the upload queue.
	ErrFileTooLarge    = errors.New("file exceeds category size limit")
	ErrEmptyFilename   = errors.New("empty filename")
	ErrEmptyBatch      = errors.New("empty batch")
	ErrSizeNotDeclared = errors.New("file size not declared")

	// Credential-issuance errors: batch-fatal, no transfers attempted.
	ErrCredentialIssue = errors.New("credential issuance failed")

	// Transfer errors.
	ErrTransferFailed    = errors.New("transfer failed")
	ErrCredentialExpired = errors.New("write credential expired")
	ErrRetriesExhausted  = errors.New("retries exhausted")

	// Confirmation errors. ErrConfirmationFailed demotes every locally
	// successful file: without server verification nothing is durable.
	ErrConfirmationFailed = errors.New("upload confirmation failed")

	// ErrSecurityViolation marks files the server rejected or deleted
	// during reconciliation. Never merged with ordinary upload failures.
	ErrSecurityViolation = errors.New("security violation")

	// Batch token errors (invalid or malformed token).
	ErrInvalidBatchToken = errors.New("invalid batch token")
	ErrBatchTokenExpired = errors.New("batch token expired")
)
