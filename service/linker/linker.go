// Package linker resolves game account identifiers to verified chat
// identities. The actual account-linking system is an external collaborator;
// this package only defines the port the dispatcher depends on.
package linker

import (
	"context"
	"errors"
)

// ErrNotLinked indicates the subject has no verified chat identity. Tasks
// hitting this condition are marked failed and never retried.
var ErrNotLinked = errors.New("linker: recipient not linked")

// Service resolves a subject's numeric account identifier to the chat
// identity entitled to decide requests about that subject.
type Service interface {
	Resolve(ctx context.Context, subjectID int64) (recipient string, err error)
}
