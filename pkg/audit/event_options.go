package audit

// WithUser sets the email of the user the action concerns.
func WithUser(email string) EventOption {
	return func(e *Event) {
		e.UserEmail = email
	}
}

// WithClient sets the caller's network address and user agent.
func WithClient(ip, userAgent string) EventOption {
	return func(e *Event) {
		if ip != "" {
			e.IP = ip
		}
		if userAgent != "" {
			e.UserAgent = userAgent
		}
	}
}

// WithTenant sets the tenant key explicitly, overriding the context extractor.
func WithTenant(key string) EventOption {
	return func(e *Event) {
		e.TenantKey = key
	}
}

// WithMetadata adds metadata to the event
func WithMetadata(key string, value any) EventOption {
	return func(e *Event) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]any)
		}
		e.Metadata[key] = value
	}
}
