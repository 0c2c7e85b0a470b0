package authreq

import (
	"fmt"
	"strings"
	"time"
)

// Payload carries a single access-authorization request between the origin
// system and the approval pipeline. Field contracts are enforced by
// service/schema before a payload of this type is ever constructed.
type Payload struct {
	Subject    string `json:"subject"`              // account display name
	SubjectID  int64  `json:"subjectId"`            // numeric account identifier
	Resource   string `json:"resource"`             // IPv4 or IPv6 literal
	Recipient  string `json:"recipient"`            // chat identity deciding the request
	Origin     string `json:"origin"`               // originating service label
	Geo        string `json:"geo,omitempty"`        // best-effort geolocation
	IssuedAt   int64  `json:"issuedAt"`             // unix seconds at origin
	MaskedForm string `json:"maskedForm,omitempty"` // optional pre-redacted display form
}

// Key identifies an in-flight request. Two requests with the same key are
// duplicates of each other for dedup purposes.
type Key struct {
	Recipient string
	Resource  string
}

// Key returns the dedup key for this payload.
func (p *Payload) Key() Key {
	return Key{Recipient: p.Recipient, Resource: p.Resource}
}

func (k Key) String() string {
	return k.Recipient + "|" + k.Resource
}

// Issued converts the issuance stamp to a time.Time.
func (p *Payload) Issued() time.Time {
	return time.Unix(p.IssuedAt, 0)
}

// Masked returns the redacted display form of the resource. An explicit
// MaskedForm wins; otherwise IPv4 keeps the leading two octets and IPv6 the
// leading two groups, the remainder replaced with a wildcard.
func (p *Payload) Masked() string {
	if p.MaskedForm != "" {
		return p.MaskedForm
	}
	if strings.Contains(p.Resource, ":") {
		groups := strings.Split(p.Resource, ":")
		if len(groups) > 2 {
			return fmt.Sprintf("%s:%s:\u2026", groups[0], groups[1])
		}
		return p.Resource
	}
	octets := strings.Split(p.Resource, ".")
	if len(octets) == 4 {
		return fmt.Sprintf("%s.%s.*.*", octets[0], octets[1])
	}
	return p.Resource
}
