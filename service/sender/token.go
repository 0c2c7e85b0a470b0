package sender

import (
	"fmt"
	"strings"

	"github.com/viant/grantly/model/authreq"
)

// Action tokens travel inside the interactive message controls and come back
// verbatim with the button press. They carry everything the decision
// processor needs to correlate: the chosen action and the dedup key.
//
// Layout: v1|<action>|<recipient>|<resource>. Recipients are numeric and
// resources are IP literals, so neither can contain the separator.

const tokenVersion = "v1"

// EncodeToken builds the action token for one of the two controls.
func EncodeToken(action authreq.Action, key authreq.Key) string {
	return strings.Join([]string{tokenVersion, string(action), key.Recipient, key.Resource}, "|")
}

// ParseToken decodes an action token back into its action and dedup key.
func ParseToken(token string) (authreq.Action, authreq.Key, error) {
	parts := strings.Split(token, "|")
	if len(parts) != 4 || parts[0] != tokenVersion {
		return "", authreq.Key{}, fmt.Errorf("malformed action token: %q", token)
	}
	action := authreq.Action(parts[1])
	if action != authreq.ActionApprove && action != authreq.ActionDeny {
		return "", authreq.Key{}, fmt.Errorf("unknown action in token: %q", parts[1])
	}
	return action, authreq.Key{Recipient: parts[2], Resource: parts[3]}, nil
}
