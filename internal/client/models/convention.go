// Package models defines the client-side domain records cached locally and
// synchronized with the registration server.
package models

import (
	"strings"
	"time"
)

// Convention is a single event edition (e.g. "ACME2026"). It owns zero or
// more attendees; deleting it deletes them.
type Convention struct {
	ID           int64
	ShortName    string
	LongName     string
	Active       bool
	LastModified *time.Time

	EventStart  *time.Time
	EventEnd    *time.Time
	PreRegStart *time.Time
	PreRegEnd   *time.Time

	MembershipLevels []MembershipLevel
	ShirtSizes       []ShirtSize

	// MailTemplates maps a template key to its body.
	MailTemplates map[string]string

	// CompareTo references another convention shown alongside this one on
	// dashboards.
	CompareTo *int64

	Integrations IntegrationSettings
}

// MembershipLevel is a purchasable registration tier owned by a convention.
type MembershipLevel struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Price       float64 `json:"price"`
	MaxCount    *int    `json:"max_count,omitempty"`
	Active      bool    `json:"active"`
}

// ShirtSize is a merchandise size option owned by a convention.
type ShirtSize struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Inventory   *int   `json:"inventory,omitempty"`
}

// IntegrationSettings holds third-party credentials. Values are opaque to
// the client and only stored and forwarded.
type IntegrationSettings struct {
	PaymentPublicKey    *string `json:"payment_public_key,omitempty"`
	PaymentSecretKey    *string `json:"payment_secret_key,omitempty"`
	MessagingAccountID  *string `json:"messaging_account_id,omitempty"`
	MessagingAuthToken  *string `json:"messaging_auth_token,omitempty"`
	MessagingFromNumber *string `json:"messaging_from_number,omitempty"`
	MailAPIKey          *string `json:"mail_api_key,omitempty"`
	MailFromAddress     *string `json:"mail_from_address,omitempty"`
}

// MatchesShortName reports whether name refers to this convention,
// ignoring case.
func (c Convention) MatchesShortName(name string) bool {
	return name != "" && strings.EqualFold(c.ShortName, name)
}

// SyncState is the process-wide synchronization watermark.
type SyncState struct {
	LastSyncTime *time.Time
}
