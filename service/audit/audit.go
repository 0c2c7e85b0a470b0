// Package audit records denial escalations for operator review.
package audit

import (
	"context"
	"time"

	"github.com/viant/grantly/model/authreq"
)

// Entry is one security-alert record raised when a recipient denies an
// authorization request.
type Entry struct {
	Subject    string    `json:"subject"`
	SubjectID  int64     `json:"subjectId"`
	Resource   string    `json:"resource"`
	Recipient  string    `json:"recipient"`
	Origin     string    `json:"origin"`
	Geo        string    `json:"geo,omitempty"`
	ResolvedBy string    `json:"resolvedBy"`
	ResolvedAt time.Time `json:"resolvedAt"`
}

// NewEntry builds an entry from a denied payload.
func NewEntry(p *authreq.Payload, resolvedBy string, at time.Time) *Entry {
	return &Entry{
		Subject:    p.Subject,
		SubjectID:  p.SubjectID,
		Resource:   p.Resource,
		Recipient:  p.Recipient,
		Origin:     p.Origin,
		Geo:        p.Geo,
		ResolvedBy: resolvedBy,
		ResolvedAt: at,
	}
}

// Recorder persists audit entries to a side channel.
type Recorder interface {
	RecordDenial(ctx context.Context, entry *Entry) error
}
