package sender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/grantly/model/authreq"
)

func TestTokenRoundTrip(t *testing.T) {
	key := authreq.Key{Recipient: "123456789012345678", Resource: "2001:db8::1"}

	for _, action := range []authreq.Action{authreq.ActionApprove, authreq.ActionDeny} {
		token := EncodeToken(action, key)
		parsedAction, parsedKey, err := ParseToken(token)
		assert.NoError(t, err)
		assert.Equal(t, action, parsedAction)
		assert.Equal(t, key, parsedKey)
	}
}

func TestParseTokenRejectsMalformed(t *testing.T) {
	for _, token := range []string{
		"",
		"v1|approve|123",
		"v2|approve|123456789012345678|203.0.113.7",
		"v1|destroy|123456789012345678|203.0.113.7",
	} {
		_, _, err := ParseToken(token)
		assert.Error(t, err, token)
	}
}
