package sender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/grantly/model/authreq"
)

func TestRender(t *testing.T) {
	p := &authreq.Payload{
		Subject:   "alice",
		SubjectID: 42,
		Resource:  "203.0.113.7",
		Recipient: "123456789012345678",
		Origin:    "game-eu-1",
		Geo:       "Hamburg, DE",
		IssuedAt:  1715342400,
	}
	approval := Render(p)

	assert.Equal(t, "New connection authorization", approval.Title)
	assert.Contains(t, approval.Lines, "Account: alice (#42)")
	assert.Contains(t, approval.Lines, "Address: 203.0.*.*")
	assert.Contains(t, approval.Lines, "Location: Hamburg, DE")

	// The raw resource must never leak into the presentation.
	for _, line := range approval.Lines {
		assert.NotContains(t, line, "203.0.113.7")
	}

	approveAction, approveKey, err := ParseToken(approval.ApproveToken)
	assert.NoError(t, err)
	assert.Equal(t, authreq.ActionApprove, approveAction)
	assert.Equal(t, p.Key(), approveKey)

	denyAction, _, err := ParseToken(approval.DenyToken)
	assert.NoError(t, err)
	assert.Equal(t, authreq.ActionDeny, denyAction)
}

func TestMasked(t *testing.T) {
	type testCase struct {
		name     string
		payload  authreq.Payload
		expected string
	}
	tests := []testCase{{
		name:     "ipv4",
		payload:  authreq.Payload{Resource: "203.0.113.7"},
		expected: "203.0.*.*",
	}, {
		name:     "ipv6",
		payload:  authreq.Payload{Resource: "2001:db8::1"},
		expected: "2001:db8:…",
	}, {
		name:     "explicit masked form wins",
		payload:  authreq.Payload{Resource: "203.0.113.7", MaskedForm: "203.x.x.x"},
		expected: "203.x.x.x",
	}}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.payload.Masked())
		})
	}
}
