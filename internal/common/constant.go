// Package common contains shared constants and sentinel errors used across
// StudioVault components.
package common

// BatchTokenHeaderName is the HTTP header used to carry the signed batch
// token on confirmation requests.
const BatchTokenHeaderName = "X-Batch-Token"

// SecuritySubject is the pseudo-filename used when reporting a
// reconciliation rejection through the error callback.
const SecuritySubject = "SECURITY"
