package validator

import (
	"net/mail"
	"strings"
)

// ValidEmail validates a plain addr-spec: no display name, a non-empty local
// part and a dotted domain without empty labels.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			v := strings.TrimSpace(value)
			if v == "" {
				return false
			}

			addr, err := mail.ParseAddress(v)
			if err != nil || addr.Address != v || addr.Name != "" {
				return false
			}

			local, domain, ok := strings.Cut(addr.Address, "@")
			if !ok || local == "" || !strings.Contains(domain, ".") {
				return false
			}
			for label := range strings.SplitSeq(domain, ".") {
				if label == "" {
					return false
				}
			}
			return true
		},
		Error: ValidationError{
			Field:          field,
			Message:        "must be a valid email address",
			TranslationKey: "validation.email",
		},
	}
}
