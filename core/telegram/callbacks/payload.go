// Package callbacks parses Telegram callback query payloads.
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Parse splits raw callback data of the form "NAME|payload" (optionally
// prefixed with Telebot's \f marker) into its name and payload parts.
func Parse(data string) (string, string) {
	raw := strings.TrimPrefix(data, "\f")
	raw = strings.TrimPrefix(raw, "\\f")
	parts := strings.SplitN(raw, "|", 2)
	name := strings.TrimSpace(parts[0])
	payload := ""
	if len(parts) == 2 {
		payload = parts[1]
	}
	return name, payload
}

// Data returns the raw callback data from the context, or "".
func Data(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	if cb.Unique != "" {
		data := cb.Unique
		if cb.Data != "" {
			data += "|" + cb.Data
		}
		return data
	}
	return strings.TrimPrefix(strings.TrimPrefix(cb.Data, "\f"), "\\f")
}

// Key returns the name part ("NAME" in "NAME|payload") of the callback data.
func Key(c tele.Context) string {
	k, _ := Parse(Data(c))
	return k
}

// Payload returns the payload part (after the first '|') of the callback data.
func Payload(c tele.Context) string {
	_, p := Parse(Data(c))
	return p
}
