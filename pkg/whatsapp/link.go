package whatsapp

import (
	"net/url"
	"strings"
)

// DefaultScheme opens the conversation through WhatsApp's universal link.
const DefaultScheme = "https://wa.me"

// NormalizePhone strips everything but digits so the number fits the
// wa.me path segment. A leading plus sign is dropped as well.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Link builds a deep link that opens a WhatsApp conversation with the given
// phone and a prefilled message. Returns "" when the phone has no digits.
//
// The wa.me universal link is WhatsApp's documented equivalent of the older
// whatsapp://send?to=<digits>&text=<message> form and works on web, desktop
// and mobile alike, so the handoff uses it for every client.
func Link(phone, message string) string {
	digits := NormalizePhone(phone)
	if digits == "" {
		return ""
	}
	link := DefaultScheme + "/" + digits
	if message != "" {
		link += "?text=" + url.QueryEscape(message)
	}
	return link
}
