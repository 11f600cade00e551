package probe

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var stringArgs = abi.Arguments{{Type: mustType("string")}}

// decodeString decodes an ABI string, falling back to a NUL-padded bytes32.
func decodeString(out []byte) (string, error) {
	if values, err := stringArgs.Unpack(out); err == nil && len(values) == 1 {
		if s, ok := values[0].(string); ok {
			return sanitize(s), nil
		}
	}
	if len(out) == 32 {
		return sanitize(string(bytes.TrimRight(out, "\x00"))), nil
	}
	return "", fmt.Errorf("%w: undecodable string", ErrUnsupported)
}

func sanitize(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return strings.TrimSpace(strings.Trim(s, "\x00"))
}
