package tryon

import (
	"errors"
	"fmt"
	"net/http"
)

// FailureKind classifies why an operation against the backend or storage
// failed.
type FailureKind int

const (
	// FailureValidation: the file or request was rejected, locally or by
	// the backend.
	FailureValidation FailureKind = iota
	// FailureAuth: missing, expired or rejected token; the caller should
	// re-authenticate.
	FailureAuth
	// FailureNetwork: transient connectivity problem or timeout.
	FailureNetwork
	// FailureServer: backend 5xx or logical rejection.
	FailureServer
	// FailureOrphanedUpload: the storage PUT succeeded but the confirm
	// call failed; the object may exist in storage without a backing
	// asset record. Not user-correctable; server-side reconciliation owns
	// the cleanup.
	FailureOrphanedUpload
)

func (k FailureKind) String() string {
	switch k {
	case FailureValidation:
		return "validation"
	case FailureAuth:
		return "auth"
	case FailureNetwork:
		return "network"
	case FailureServer:
		return "server"
	case FailureOrphanedUpload:
		return "orphaned_upload"
	default:
		return "unknown"
	}
}

// Failure is the single user-facing error produced by a failed flow. No flow
// returns more than one, and no flow leaves partial state behind it.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// AsFailure extracts a *Failure from an error chain.
func AsFailure(err error) (*Failure, bool) {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure, true
	}
	return nil, false
}

func newFailure(kind FailureKind, message string, err error) *Failure {
	return &Failure{Kind: kind, Message: message, Err: err}
}

// kindForStatus maps an HTTP response status to a failure kind.
func kindForStatus(status int) FailureKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return FailureAuth
	case status == http.StatusBadRequest ||
		status == http.StatusRequestEntityTooLarge ||
		status == http.StatusUnsupportedMediaType:
		return FailureValidation
	default:
		return FailureServer
	}
}
