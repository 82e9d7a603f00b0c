package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session id cannot be found in a store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionEnded is returned when input arrives after the terminal sentinel.
var ErrSessionEnded = errors.New("session has ended")

// ErrInputRejected is returned for empty or whitespace-only free-text
// submissions, and for input that does not match the awaited turn kind.
// The session state is unchanged; the caller may retry.
var ErrInputRejected = errors.New("input rejected")

// ErrUnknownChoice is returned when a submitted value matches none of the
// current node's choices. The session state is unchanged.
var ErrUnknownChoice = errors.New("unknown choice")

// ContentError marks a broken script: a referenced node id absent from the
// active catalog, or an invalid catalog definition. It is fatal and must be
// surfaced to the operator, never defaulted to the terminal node.
type ContentError struct {
	Language Language
	NodeID   int
	Reason   string
}

func (e *ContentError) Error() string {
	if e.NodeID != 0 {
		return fmt.Sprintf("content error (%s, node %d): %s", e.Language, e.NodeID, e.Reason)
	}
	return fmt.Sprintf("content error (%s): %s", e.Language, e.Reason)
}

// NewContentError builds a ContentError for a specific node.
func NewContentError(lang Language, nodeID int, format string, args ...any) *ContentError {
	return &ContentError{Language: lang, NodeID: nodeID, Reason: fmt.Sprintf(format, args...)}
}
