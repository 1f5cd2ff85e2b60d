package utils

import (
	"fmt"
	"html"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var (
	nonPhoneChars = regexp.MustCompile(`[^0-9+]`)
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9]+`)
	htmlTags      = regexp.MustCompile(`<[^>]*>`)
)

// NormalizePhone keeps digits and a single leading plus sign.  It is the
// comparison key for block-list lookups and phone uniqueness.
func NormalizePhone(raw string) string {
	s := nonPhoneChars.ReplaceAllString(strings.TrimSpace(raw), "")
	if s == "" {
		return ""
	}
	plus := strings.HasPrefix(s, "+")
	s = strings.ReplaceAll(s, "+", "")
	if plus && s != "" {
		return "+" + s
	}
	return s
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ValidEmail reports whether s parses as a bare address.
func ValidEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s
}

// Slugify lower-cases s, collapses every run of non-alphanumerics into a
// single hyphen and trims hyphens from both ends.
func Slugify(s string) string {
	s = nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	return strings.Trim(s, "-")
}

// Sanitize trims s, strips HTML tags and escapes what remains.
func Sanitize(s string) string {
	return html.EscapeString(htmlTags.ReplaceAllString(strings.TrimSpace(s), ""))
}

// AvatarURL builds the generated avatar used for new customer accounts.
func AvatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=059669&color=fff"
}

// NewOrderNumber returns HAL-<hex unix time>-<6 random hex>, upper-cased.
func NewOrderNumber(now time.Time) (string, error) {
	suffix, err := RandomHex(3)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(fmt.Sprintf("HAL-%x-%s", now.Unix(), suffix)), nil
}
