package flow

import "context"

// ComposeConfig holds per-instance defaults for the outgoing email:
// subject, recipients and sender identity, plus opaque configuration
// forwarded to the review collaborator.
type ComposeConfig struct {
	Subject     string                 `json:"subject,omitempty"`
	To          []string               `json:"to,omitempty"`
	Cc          []string               `json:"cc,omitempty"`
	Bcc         []string               `json:"bcc,omitempty"`
	SenderEmail string                 `json:"sender_email,omitempty"`
	SenderName  string                 `json:"sender_name,omitempty"`
	Review      map[string]interface{} `json:"review,omitempty"`
}

// Merge overlays request-supplied values on top of stored defaults,
// field by field. A populated field in override wins; an empty one falls
// through to the receiver. Recipient lists override as whole fields, not
// element-wise.
func (c ComposeConfig) Merge(override ComposeConfig) ComposeConfig {
	merged := c
	if override.Subject != "" {
		merged.Subject = override.Subject
	}
	if len(override.To) > 0 {
		merged.To = override.To
	}
	if len(override.Cc) > 0 {
		merged.Cc = override.Cc
	}
	if len(override.Bcc) > 0 {
		merged.Bcc = override.Bcc
	}
	if override.SenderEmail != "" {
		merged.SenderEmail = override.SenderEmail
	}
	if override.SenderName != "" {
		merged.SenderName = override.SenderName
	}
	if override.Review != nil {
		merged.Review = override.Review
	}
	return merged
}

// Validate checks that the merged configuration can actually produce an
// email: a non-empty subject and at least one recipient across To, Cc
// and Bcc.
func (c ComposeConfig) Validate() error {
	if c.Subject == "" {
		return validationError(CodeEmptySubject, "merged configuration yields an empty subject")
	}
	if len(c.To)+len(c.Cc)+len(c.Bcc) == 0 {
		return validationError(CodeNoRecipients, "merged configuration yields no recipients")
	}
	return nil
}

// ComposeSource resolves stored compose defaults for a username. It is
// read-only to the engine.
type ComposeSource interface {
	Compose(ctx context.Context, username string) (ComposeConfig, error)
}

// StaticCompose is a ComposeSource backed by an in-memory map, with an
// optional fallback for unknown usernames.
type StaticCompose struct {
	// ByUser maps usernames to their compose defaults.
	ByUser map[string]ComposeConfig

	// Default is returned for usernames absent from ByUser.
	Default ComposeConfig
}

// Compose implements ComposeSource.
func (s StaticCompose) Compose(ctx context.Context, username string) (ComposeConfig, error) {
	if cfg, ok := s.ByUser[username]; ok {
		return cfg, nil
	}
	return s.Default, nil
}
