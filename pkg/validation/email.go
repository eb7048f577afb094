package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// EmailTag is a lenient address rule: an RFC 5322 dot-atom or quoted local
// part, '@', and a domain of one or more hostname labels or an IP literal.
// Unlike validator's "email" the domain needs no dot, so "john@localhost" passes.
const EmailTag = "mailbox"

const (
	maxLocalPartLen = 64
	maxDomainLen    = 255
)

var (
	localPartRe = regexp.MustCompile(`(?i)^(?:[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~\x{0080}-\x{FFFF}-]+(?:\.[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~\x{0080}-\x{FFFF}-]+)*|"(?:[^"\\]|\\.)*")$`)
	domainRe    = regexp.MustCompile(`(?i)^[a-z0-9\x{0080}-\x{FFFF}](?:[a-z0-9\x{0080}-\x{FFFF}-]{0,61}[a-z0-9\x{0080}-\x{FFFF}])?(?:\.[a-z0-9\x{0080}-\x{FFFF}](?:[a-z0-9\x{0080}-\x{FFFF}-]{0,61}[a-z0-9\x{0080}-\x{FFFF}])?)*$`)
	ipLiteralRe = regexp.MustCompile(`(?i)^\[(?:[0-9]{1,3}(?:\.[0-9]{1,3}){3}|IPv6:[0-9a-f:.]+)\]$`)
)

// IsEmailAddress applies the EmailTag rule. Empty input is left to required/notblank.
func IsEmailAddress(s string) bool {
	if s == "" {
		return true
	}
	at := strings.LastIndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return false
	}
	local, domain := s[:at], s[at+1:]
	if len(local) > maxLocalPartLen || !localPartRe.MatchString(local) {
		return false
	}
	if ipLiteralRe.MatchString(domain) {
		return true
	}
	return len(domain) <= maxDomainLen && domainRe.MatchString(domain)
}

func validateEmail(fl validator.FieldLevel) bool {
	return IsEmailAddress(fl.Field().String())
}
