package domain

import "strings"

// Channel is the delivery channel for a verification code.
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelSMS   Channel = "SMS"
)

// IsValid reports whether the channel is a known delivery channel.
func (c Channel) IsValid() bool {
	return c == ChannelEmail || c == ChannelSMS
}

// MaskDestination obscures a contact point for display after a code
// has been dispatched, e.g. "al***@example.com" or "*******1234".
func MaskDestination(destination string, channel Channel) string {
	if channel == ChannelEmail {
		at := strings.Index(destination, "@")
		if at <= 0 {
			return "***"
		}
		visible := 2
		if at < visible {
			visible = at
		}
		return destination[:visible] + "***" + destination[at:]
	}

	// Phone: keep the last 4 digits.
	if len(destination) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(destination)-4) + destination[len(destination)-4:]
}
