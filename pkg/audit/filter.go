package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// FilterAction defines the action to take on matched metadata fields
type FilterAction string

const (
	FilterActionRemove FilterAction = "remove"
	FilterActionHash   FilterAction = "hash"
	FilterActionMask   FilterAction = "mask"
)

// Credentials must never reach audit storage.
var defaultSensitiveFields = map[string]FilterAction{
	"password":      FilterActionRemove,
	"secret":        FilterActionRemove,
	"client_secret": FilterActionRemove,
	"token":         FilterActionRemove,
	"access_token":  FilterActionRemove,
	"refresh_token": FilterActionRemove,
	"refreshtoken":  FilterActionRemove,
	"authorization": FilterActionRemove,
	"email":         FilterActionHash,
}

// MetadataFilter scrubs sensitive values out of event metadata.
// Keys match case-insensitively. A "*part*" pattern matches any key containing part.
type MetadataFilter struct {
	rules map[string]FilterAction
}

// FilterOption configures MetadataFilter behavior
type FilterOption func(*MetadataFilter)

// NewMetadataFilter creates a filter with the default credential rules.
func NewMetadataFilter(opts ...FilterOption) *MetadataFilter {
	f := &MetadataFilter{
		rules: make(map[string]FilterAction, len(defaultSensitiveFields)),
	}
	for k, v := range defaultSensitiveFields {
		f.rules[k] = v
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithCustomField adds or overrides a field rule
func WithCustomField(field string, action FilterAction) FilterOption {
	return func(f *MetadataFilter) {
		f.rules[strings.ToLower(field)] = action
	}
}

// Filter returns a scrubbed copy of metadata.
func (f *MetadataFilter) Filter(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}

	filtered := make(map[string]any, len(metadata))
	for key, value := range metadata {
		action, ok := f.match(strings.ToLower(key))
		if !ok {
			filtered[key] = value
			continue
		}
		switch action {
		case FilterActionRemove:
		case FilterActionHash:
			filtered[key] = hashValue(value)
		case FilterActionMask:
			filtered[key] = maskValue(value)
		default:
			filtered[key] = value
		}
	}
	return filtered
}

func (f *MetadataFilter) match(key string) (FilterAction, bool) {
	if action, ok := f.rules[key]; ok {
		return action, true
	}
	for pattern, action := range f.rules {
		if len(pattern) > 2 && strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*") &&
			strings.Contains(key, pattern[1:len(pattern)-1]) {
			return action, true
		}
	}
	return "", false
}

func hashValue(value any) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%v", value)))
	return hex.EncodeToString(sum[:])
}

// maskValue keeps the first and last two characters of longer values.
func maskValue(value any) string {
	s := fmt.Sprintf("%v", value)
	switch n := len(s); {
	case n <= 4:
		return strings.Repeat("*", n)
	case n <= 8:
		return s[:1] + strings.Repeat("*", n-2) + s[n-1:]
	default:
		return s[:2] + strings.Repeat("*", n-4) + s[n-2:]
	}
}
