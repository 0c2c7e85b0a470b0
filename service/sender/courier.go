package sender

import (
	"context"

	"github.com/viant/grantly/model/authreq"
)

// Courier delivers approval messages over the external chat platform. It is
// a collaborator port: implementations wrap whatever chat SDK the deployment
// uses; the relay core never imports one.
type Courier interface {
	// SendApproval delivers one private interactive message to the recipient
	// and returns a reference correlating later edits. Failure (for example
	// the recipient blocks private messages) must be returned, not swallowed.
	SendApproval(ctx context.Context, recipient string, approval *Approval) (ref string, err error)

	// Resolve replaces the original message with its terminal rendering and
	// strips the interactive controls, preventing decisions via stale UI.
	Resolve(ctx context.Context, recipient, ref string, state authreq.State) error
}
