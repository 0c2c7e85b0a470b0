// Package schema validates inbound task payloads against a strict per-kind
// contract before they enter the approval pipeline. Validation is pure: the
// same input always yields the same outcome and no side effects occur.
package schema

import (
	"fmt"
	"math"
	"net/netip"
	"regexp"
	"time"

	"github.com/viant/grantly/internal/clock"
	"github.com/viant/grantly/model/authreq"
	"github.com/viant/grantly/model/task"
)

const (
	maxSubjectLen = 16
	maxOriginLen  = 50

	// MaxClockSkew bounds how far in the future an issuance stamp may sit
	// before it is rejected as hostile or misconfigured.
	MaxClockSkew = 60 * time.Second
)

var recipientPattern = regexp.MustCompile(`^\d{17,19}$`)

// Validate checks an untyped payload against the contract of the given task
// kind. It returns either a fully typed payload and no violations, or a nil
// payload and a non-empty list of human-readable violation strings. Callers
// must reject the unit of work on any violation.
func Validate(kind task.Kind, payload map[string]interface{}) (*authreq.Payload, []string) {
	if kind != task.KindAccessAuthorization {
		return nil, []string{fmt.Sprintf("unsupported task kind: %s", kind)}
	}
	var violations []string

	subject, ok := asString(payload["subject"])
	switch {
	case !ok || subject == "":
		violations = append(violations, "subject is required")
	case len(subject) > maxSubjectLen:
		violations = append(violations, fmt.Sprintf("subject must be at most %d characters", maxSubjectLen))
	}

	subjectID, ok := asInt64(payload["subjectId"])
	if !ok || subjectID <= 0 {
		violations = append(violations, "subjectId must be a positive integer")
	}

	resource, ok := asString(payload["resource"])
	switch {
	case !ok || resource == "":
		violations = append(violations, "resource is required")
	default:
		if _, err := netip.ParseAddr(resource); err != nil {
			violations = append(violations, "resource must be a valid IP address")
		}
	}

	recipient, ok := asString(payload["recipient"])
	if !ok || !recipientPattern.MatchString(recipient) {
		violations = append(violations, "recipient must be a 17-19 digit identifier")
	}

	issuedAt, ok := asInt64(payload["issuedAt"])
	switch {
	case !ok || issuedAt <= 0:
		violations = append(violations, "issuedAt must be a positive integer")
	case time.Unix(issuedAt, 0).After(clock.Now().Add(MaxClockSkew)):
		violations = append(violations, "issuedAt must not be in the future")
	}

	origin, ok := asString(payload["origin"])
	switch {
	case !ok || origin == "":
		violations = append(violations, "origin is required")
	case len(origin) > maxOriginLen:
		violations = append(violations, fmt.Sprintf("origin must be at most %d characters", maxOriginLen))
	}

	if len(violations) > 0 {
		return nil, violations
	}

	result := &authreq.Payload{
		Subject:   subject,
		SubjectID: subjectID,
		Resource:  resource,
		Recipient: recipient,
		Origin:    origin,
		IssuedAt:  issuedAt,
	}
	if geo, ok := asString(payload["geo"]); ok {
		result.Geo = geo
	}
	if masked, ok := asString(payload["maskedForm"]); ok {
		result.MaskedForm = masked
	}
	return result, nil
}

func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// asInt64 accepts the numeric shapes a JSON decoder may produce. Fractional
// values are rejected rather than truncated.
func asInt64(v interface{}) (int64, bool) {
	switch actual := v.(type) {
	case int:
		return int64(actual), true
	case int64:
		return actual, true
	case float64:
		if actual != math.Trunc(actual) {
			return 0, false
		}
		return int64(actual), true
	}
	return 0, false
}
