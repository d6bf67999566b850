package client

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/conops/internal/client/models"
)

func toTimePtr(t *Timestamp) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

func fromTimePtr(t *time.Time) *Timestamp {
	if t == nil {
		return nil
	}
	return &Timestamp{Time: *t}
}

func conventionFromDTO(d *conventionDTO, path string) (models.Convention, error) {
	if d.ID == nil {
		return models.Convention{}, &DecodeError{Reason: MissingKey, Path: path + ".id"}
	}
	return models.Convention{
		ID:               *d.ID,
		ShortName:        d.ShortName,
		LongName:         d.LongName,
		Active:           d.Active,
		LastModified:     toTimePtr(d.LastModified),
		EventStart:       toTimePtr(d.EventStart),
		EventEnd:         toTimePtr(d.EventEnd),
		PreRegStart:      toTimePtr(d.PreRegStart),
		PreRegEnd:        toTimePtr(d.PreRegEnd),
		MembershipLevels: d.MembershipLevels,
		ShirtSizes:       d.ShirtSizes,
		MailTemplates:    d.MailTemplates,
		CompareTo:        d.CompareTo,
		Integrations:     d.IntegrationSettings,
	}, nil
}

func conventionToDTO(c *models.Convention) conventionDTO {
	var id *int64
	if c.ID != 0 {
		v := c.ID
		id = &v
	}
	return conventionDTO{
		ID:                  id,
		ShortName:           c.ShortName,
		LongName:            c.LongName,
		Active:              c.Active,
		LastModified:        fromTimePtr(c.LastModified),
		EventStart:          fromTimePtr(c.EventStart),
		EventEnd:            fromTimePtr(c.EventEnd),
		PreRegStart:         fromTimePtr(c.PreRegStart),
		PreRegEnd:           fromTimePtr(c.PreRegEnd),
		MembershipLevels:    c.MembershipLevels,
		ShirtSizes:          c.ShirtSizes,
		MailTemplates:       c.MailTemplates,
		CompareTo:           c.CompareTo,
		IntegrationSettings: c.Integrations,
	}
}

func conventionsFromDTO(ds []conventionDTO) ([]models.Convention, error) {
	out := make([]models.Convention, 0, len(ds))
	for i := range ds {
		c, err := conventionFromDTO(&ds[i], fmt.Sprintf("data[%d]", i))
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func attendeeFromDTO(d *attendeeDTO, path string) (models.Attendee, error) {
	if d.ID == nil {
		return models.Attendee{}, &DecodeError{Reason: MissingKey, Path: path + ".id"}
	}
	a := models.Attendee{
		ID:                    *d.ID,
		ConventionID:          d.ConventionID,
		Active:                d.Active,
		BadgeNumber:           d.BadgeNumber,
		FirstName:             d.FirstName,
		LastName:              d.LastName,
		BadgeName:             d.BadgeName,
		EmailAddress:          d.EmailAddress,
		PhoneNumber:           d.PhoneNumber,
		StreetAddress:         d.StreetAddress,
		City:                  d.City,
		Region:                d.Region,
		PostalCode:            d.PostalCode,
		Country:               d.Country,
		MembershipLevelID:     d.MembershipLevelID,
		RegistrationDate:      toTimePtr(d.RegistrationDate),
		CheckInDate:           toTimePtr(d.CheckInDate),
		Staff:                 d.Staff,
		Dealer:                d.Dealer,
		Minor:                 d.Minor,
		CodeOfConductAccepted: d.CodeOfConductAccepted,
		Type:                  models.ResolveAttendeeType(d.Staff, d.Dealer, models.AttendeeType(d.AttendeeType)),
		CurrentBalance:        d.CurrentBalance,
	}
	if d.Birthday != nil && !d.Birthday.IsZero() {
		b := d.Birthday.Time
		a.Birthday = &b
	}
	for i := range d.Transactions {
		t := &d.Transactions[i]
		if t.ID == nil {
			return models.Attendee{}, &DecodeError{Reason: MissingKey, Path: fmt.Sprintf("%s.transactions[%d].id", path, i)}
		}
		a.Transactions = append(a.Transactions, models.Transaction{
			ID:          *t.ID,
			Amount:      t.Amount,
			Timestamp:   t.Timestamp.Time,
			TypeCode:    t.TypeCode,
			Description: t.Description,
			PaymentInfo: t.PaymentInfo,
			Notes:       t.Notes,
		})
	}
	return a, nil
}

func attendeeToDTO(a *models.Attendee) attendeeDTO {
	d := attendeeDTO{
		ConventionID:          a.ConventionID,
		Active:                a.Active,
		BadgeNumber:           a.BadgeNumber,
		FirstName:             a.FirstName,
		LastName:              a.LastName,
		BadgeName:             a.BadgeName,
		EmailAddress:          a.EmailAddress,
		PhoneNumber:           a.PhoneNumber,
		StreetAddress:         a.StreetAddress,
		City:                  a.City,
		Region:                a.Region,
		PostalCode:            a.PostalCode,
		Country:               a.Country,
		MembershipLevelID:     a.MembershipLevelID,
		RegistrationDate:      fromTimePtr(a.RegistrationDate),
		CheckInDate:           fromTimePtr(a.CheckInDate),
		Staff:                 a.Staff,
		Dealer:                a.Dealer,
		Minor:                 a.Minor,
		CodeOfConductAccepted: a.CodeOfConductAccepted,
		AttendeeType:          string(models.ResolveAttendeeType(a.Staff, a.Dealer, a.Type)),
		CurrentBalance:        a.CurrentBalance,
	}
	if a.ID != 0 {
		id := a.ID
		d.ID = &id
	}
	if a.Birthday != nil {
		d.Birthday = &Date{Time: *a.Birthday}
	}
	for _, t := range a.Transactions {
		id := t.ID
		d.Transactions = append(d.Transactions, transactionDTO{
			ID:          &id,
			Amount:      t.Amount,
			Timestamp:   Timestamp{Time: t.Timestamp},
			TypeCode:    t.TypeCode,
			Description: t.Description,
			PaymentInfo: t.PaymentInfo,
			Notes:       t.Notes,
		})
	}
	return d
}

func attendeesFromDTO(ds []attendeeDTO) ([]models.Attendee, error) {
	out := make([]models.Attendee, 0, len(ds))
	for i := range ds {
		a, err := attendeeFromDTO(&ds[i], fmt.Sprintf("data[%d]", i))
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
