package automation

import (
	"strings"
	"unicode"
)

// Message types written by the binary.
const (
	msgQR           = "qr"
	msgReady        = "ready"
	msgAuthFailure  = "auth_failure"
	msgDisconnected = "disconnected"
	msgResult       = "result"
)

// Commands understood by the binary.
const (
	cmdSend    = "send"
	cmdResolve = "resolve"
)

// message is one stdout line.
type message struct {
	Type   string `json:"type"`
	Data   string `json:"data,omitempty"`
	Reason string `json:"reason,omitempty"`
	ID     string `json:"id,omitempty"`
	OK     bool   `json:"ok,omitempty"`
	Value  string `json:"value,omitempty"`
	Error  string `json:"error,omitempty"`
}

// command is one stdin line.
type command struct {
	ID     string `json:"id"`
	Cmd    string `json:"cmd"`
	Number string `json:"number,omitempty"`
	To     string `json:"to,omitempty"`
	Text   string `json:"text,omitempty"`
}

// Chat id suffixes for direct and group chats.
const (
	UserSuffix  = "@c.us"
	GroupSuffix = "@g.us"
)

// IsChatID reports whether s is already a canonical chat id.
func IsChatID(s string) bool {
	return strings.HasSuffix(s, UserSuffix) || strings.HasSuffix(s, GroupSuffix)
}

// NormalizeNumber strips everything but decimal digits, so "+1 (555) 123-4567"
// becomes "15551234567". Digits of any script are folded to ASCII.
func NormalizeNumber(s string) string {
	var b strings.Builder
	for _, r := range s {
		if d, ok := digitValue(r); ok {
			b.WriteByte('0' + d)
		}
	}
	return b.String()
}

// digitValue returns the value of a Unicode decimal digit. Decimal digits
// are encoded in contiguous runs from zero to nine.
func digitValue(r rune) (byte, bool) {
	if !unicode.IsDigit(r) {
		return 0, false
	}
	n := 0
	for unicode.IsDigit(r - rune(n+1)) {
		n++
	}
	return byte(n % 10), true
}
