// Package sender renders validated authorization requests into interactive
// approval messages and delivers them through a Courier.
package sender

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/grantly/model/authreq"
)

// Approval is the presentation handed to the Courier: a title, context
// lines, and exactly two mutually exclusive actions.
type Approval struct {
	Title        string
	Lines        []string
	ApproveToken string
	DenyToken    string
}

// Service builds and dispatches approval messages.
type Service struct {
	courier Courier
}

// New creates a sender over the supplied courier.
func New(courier Courier) *Service {
	return &Service{courier: courier}
}

// Render builds the approval presentation for a payload. The resource is
// always shown in its redacted form.
func Render(p *authreq.Payload) *Approval {
	key := p.Key()
	lines := []string{
		fmt.Sprintf("Account: %s (#%d)", p.Subject, p.SubjectID),
		fmt.Sprintf("Address: %s", p.Masked()),
	}
	if p.Geo != "" {
		lines = append(lines, fmt.Sprintf("Location: %s", p.Geo))
	}
	lines = append(lines,
		fmt.Sprintf("Origin: %s", p.Origin),
		fmt.Sprintf("Issued: %s", p.Issued().UTC().Format(time.RFC3339)),
	)
	return &Approval{
		Title:        "New connection authorization",
		Lines:        lines,
		ApproveToken: EncodeToken(authreq.ActionApprove, key),
		DenyToken:    EncodeToken(authreq.ActionDeny, key),
	}
}

// Send renders the payload and delivers it privately to its recipient,
// returning the courier message reference.
func (s *Service) Send(ctx context.Context, p *authreq.Payload) (string, error) {
	ref, err := s.courier.SendApproval(ctx, p.Recipient, Render(p))
	if err != nil {
		return "", fmt.Errorf("failed to deliver approval to %s: %w", p.Recipient, err)
	}
	return ref, nil
}

// Resolve rewrites a previously sent message to its terminal state.
func (s *Service) Resolve(ctx context.Context, recipient, ref string, state authreq.State) error {
	if ref == "" {
		return nil
	}
	return s.courier.Resolve(ctx, recipient, ref, state)
}
