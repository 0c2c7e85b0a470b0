package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/viant/grantly/model/authreq"
	"github.com/viant/grantly/service/sender"
)

// Sent captures one delivered approval message.
type Sent struct {
	Recipient string
	Ref       string
	Approval  *sender.Approval
	State     authreq.State // zero until resolved
}

// Courier is an in-memory chat collaborator for tests and embedded setups.
// FailFor simulates recipients that block private messages.
type Courier struct {
	mu      sync.Mutex
	sent    []*Sent
	byRef   map[string]*Sent
	failFor map[string]bool
}

// New creates an empty courier.
func New() *Courier {
	return &Courier{byRef: make(map[string]*Sent), failFor: make(map[string]bool)}
}

// FailFor makes deliveries to the recipient fail.
func (c *Courier) FailFor(recipient string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failFor[recipient] = true
}

// SendApproval records the message and returns a fresh reference.
func (c *Courier) SendApproval(_ context.Context, recipient string, approval *sender.Approval) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failFor[recipient] {
		return "", fmt.Errorf("recipient %s is unreachable", recipient)
	}
	entry := &Sent{Recipient: recipient, Ref: uuid.New().String(), Approval: approval}
	c.sent = append(c.sent, entry)
	c.byRef[entry.Ref] = entry
	return entry.Ref, nil
}

// Resolve marks the referenced message terminal.
func (c *Courier) Resolve(_ context.Context, _ string, ref string, state authreq.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.byRef[ref]
	if !ok {
		return fmt.Errorf("unknown message reference: %s", ref)
	}
	entry.State = state
	return nil
}

// Messages returns a snapshot of everything sent so far.
func (c *Courier) Messages() []*Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Sent, len(c.sent))
	copy(out, c.sent)
	return out
}

var _ sender.Courier = (*Courier)(nil)
