package client

import (
	"encoding/json"

	"github.com/dmitrijs2005/conops/internal/client/models"
)

const statusSuccess = "success"

const detailedStatusValidation = "validation_error"

// envelope wraps every API response.
type envelope struct {
	Status         string          `json:"status"`
	DetailedStatus string          `json:"detailed_status,omitempty"`
	Message        string          `json:"message,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
}

// NoContent is the response type of calls whose envelope carries no data.
type NoContent struct{}

// Token is the auth/token response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type tokenRequest struct {
	ConventionShortName string `json:"convention_short_name"`
	Username            string `json:"username"`
	Password            string `json:"password"`
}

type conventionDTO struct {
	ID           *int64     `json:"id"`
	ShortName    string     `json:"short_name"`
	LongName     string     `json:"long_name"`
	Active       bool       `json:"active"`
	LastModified *Timestamp `json:"last_modified,omitempty"`

	EventStart  *Timestamp `json:"event_start_date,omitempty"`
	EventEnd    *Timestamp `json:"event_end_date,omitempty"`
	PreRegStart *Timestamp `json:"pre_reg_start_date,omitempty"`
	PreRegEnd   *Timestamp `json:"pre_reg_end_date,omitempty"`

	MembershipLevels []models.MembershipLevel `json:"membership_levels"`
	ShirtSizes       []models.ShirtSize       `json:"shirt_sizes"`
	MailTemplates    map[string]string        `json:"mail_templates,omitempty"`
	CompareTo        *int64                   `json:"compare_to,omitempty"`

	models.IntegrationSettings
}

type transactionDTO struct {
	ID          *int64    `json:"id"`
	Amount      float64   `json:"amount"`
	Timestamp   Timestamp `json:"timestamp"`
	TypeCode    int       `json:"transaction_type"`
	Description string    `json:"description"`
	PaymentInfo string    `json:"payment_info,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

type attendeeDTO struct {
	ID           *int64 `json:"id,omitempty"`
	ConventionID int64  `json:"convention_id"`
	Active       bool   `json:"active"`
	BadgeNumber  string `json:"badge_number"`

	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	BadgeName     string `json:"badge_name"`
	EmailAddress  string `json:"email_address"`
	PhoneNumber   string `json:"phone_number"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	Region        string `json:"region"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`

	MembershipLevelID *int64 `json:"membership_level_id,omitempty"`

	Birthday         *Date      `json:"birthday,omitempty"`
	RegistrationDate *Timestamp `json:"registration_date,omitempty"`
	CheckInDate      *Timestamp `json:"check_in_date,omitempty"`

	Staff                 bool `json:"staff"`
	Dealer                bool `json:"dealer"`
	Minor                 bool `json:"minor"`
	CodeOfConductAccepted bool `json:"code_of_conduct_accepted"`

	AttendeeType   string           `json:"attendee_type,omitempty"`
	CurrentBalance float64          `json:"current_balance"`
	Transactions   []transactionDTO `json:"transactions,omitempty"`
}

type attendeeUpdateRequest struct {
	attendeeDTO
	Reason         string `json:"reason"`
	NotifyAttendee bool   `json:"notify_attendee"`
}

type transactionRequest struct {
	Amount      float64 `json:"amount"`
	TypeCode    int     `json:"transaction_type"`
	Description string  `json:"description"`
	PaymentInfo string  `json:"payment_info,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

type printBadgeRequest struct {
	PrinterName string `json:"printer_name,omitempty"`
}
