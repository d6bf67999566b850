package models

import "time"

// AttendeeType classifies an attendee for badges and reporting.
type AttendeeType string

const (
	AttendeeTypeAttendee    AttendeeType = "attendee"
	AttendeeTypeStaff       AttendeeType = "staff"
	AttendeeTypeDealer      AttendeeType = "dealer"
	AttendeeTypeStaffDealer AttendeeType = "staff_dealer"
	AttendeeTypeGuest       AttendeeType = "guest"
	AttendeeTypeVolunteer   AttendeeType = "volunteer"
)

// ResolveAttendeeType derives the effective type from the staff and dealer
// flags. Both flags set always yields AttendeeTypeStaffDealer; otherwise the
// explicit type is kept as-is.
//
// Applied on both decode and encode, so an explicit "dealer" stored for a
// record with staff=true is promoted on every round-trip.
func ResolveAttendeeType(staff, dealer bool, explicit AttendeeType) AttendeeType {
	if staff && dealer {
		return AttendeeTypeStaffDealer
	}
	return explicit
}

// Attendee is a registration for one convention. ConventionID is matched by
// value; the referenced convention may no longer exist locally.
type Attendee struct {
	ID           int64
	ConventionID int64
	Active       bool
	BadgeNumber  string

	FirstName     string
	LastName      string
	BadgeName     string
	EmailAddress  string
	PhoneNumber   string
	StreetAddress string
	City          string
	Region        string
	PostalCode    string
	Country       string

	MembershipLevelID *int64

	// Birthday is a calendar date held at local noon.
	Birthday         *time.Time
	RegistrationDate *time.Time
	CheckInDate      *time.Time

	Staff                 bool
	Dealer                bool
	Minor                 bool
	CodeOfConductAccepted bool

	Type AttendeeType

	// CurrentBalance is computed by the server from Transactions.
	CurrentBalance float64
	Transactions   []Transaction
}

// CheckedIn reports whether the attendee has a check-in date.
func (a Attendee) CheckedIn() bool {
	return a.CheckInDate != nil
}

// Transaction is an immutable ledger entry belonging to an attendee.
type Transaction struct {
	ID          int64
	Amount      float64
	Timestamp   time.Time
	TypeCode    int
	Description string
	PaymentInfo string
	Notes       string
}
