package core

import (
	"errors"
	"fmt"
)

// ErrNotFound is a sentinel error for "not found" cases
var ErrNotFound = errors.New("not found")

// ErrorKind classifies failures from remote collaborators so that callers can
// decide between skip-and-continue and abort without inspecting provider codes.
type ErrorKind string

const (
	// ErrorKindAccessDenied covers permission/visibility failures on a container.
	// The container and its descendants are skipped, siblings proceed.
	ErrorKindAccessDenied ErrorKind = "access_denied"
	// ErrorKindTransient covers network failures and timeouts. Pagination loops
	// terminate early with a partial result.
	ErrorKindTransient ErrorKind = "transient"
	// ErrorKindDataInvalid covers malformed entities and invalid/empty embeddings.
	// The single item is skipped.
	ErrorKindDataInvalid ErrorKind = "data_invalid"
	// ErrorKindStorageFault covers constraint violations and other database
	// failures. Fatal for the current server's sync.
	ErrorKindStorageFault ErrorKind = "storage_fault"
	// ErrorKindProvisioningConflict covers duplicate-index creation and
	// dimension mismatches in the vector store.
	ErrorKindProvisioningConflict ErrorKind = "provisioning_conflict"
)

// PipelineError tags an underlying cause with an ErrorKind.
type PipelineError struct {
	Kind  ErrorKind
	Cause error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// NewPipelineError wraps cause with the given kind
func NewPipelineError(kind ErrorKind, cause error) *PipelineError {
	return &PipelineError{Kind: kind, Cause: cause}
}

// KindOf returns the ErrorKind of err if it carries one
func KindOf(err error) (ErrorKind, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}

func hasKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsAccessDenied checks if an error is a permission/visibility failure
func IsAccessDenied(err error) bool {
	return hasKind(err, ErrorKindAccessDenied)
}

// IsTransient checks if an error is a recoverable network/timeout failure
func IsTransient(err error) bool {
	return hasKind(err, ErrorKindTransient)
}

// IsDataInvalid checks if an error is a single-item data failure
func IsDataInvalid(err error) bool {
	return hasKind(err, ErrorKindDataInvalid)
}

// IsStorageFault checks if an error is a database failure
func IsStorageFault(err error) bool {
	return hasKind(err, ErrorKindStorageFault)
}

// IsProvisioningConflict checks if an error is a vector store provisioning conflict
func IsProvisioningConflict(err error) bool {
	return hasKind(err, ErrorKindProvisioningConflict)
}

// IsNotFoundError checks if an error is a "not found" error
func IsNotFoundError(err error) bool {
	return err != nil && errors.Is(err, ErrNotFound)
}
