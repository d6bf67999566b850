package attendees

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/conops/internal/client/models"
	"github.com/dmitrijs2005/conops/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
// Upsert issues several statements; run it inside a transaction to keep an
// attendee and its transactions consistent.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `convention_id, id, active, badge_number,
	first_name, last_name, badge_name, email_address, phone_number,
	street_address, city, region, postal_code, country,
	membership_level_id, birthday, registration_date, check_in_date,
	staff, dealer, minor, code_of_conduct_accepted, attendee_type, current_balance`

func (r *SQLiteRepository) Upsert(ctx context.Context, a *models.Attendee) error {
	var birthday any
	if a.Birthday != nil {
		birthday = a.Birthday.Format(models.DateLayout)
	}

	query := `INSERT INTO attendees (` + selectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(convention_id, id) DO UPDATE SET
			active = excluded.active,
			badge_number = excluded.badge_number,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			badge_name = excluded.badge_name,
			email_address = excluded.email_address,
			phone_number = excluded.phone_number,
			street_address = excluded.street_address,
			city = excluded.city,
			region = excluded.region,
			postal_code = excluded.postal_code,
			country = excluded.country,
			membership_level_id = excluded.membership_level_id,
			birthday = excluded.birthday,
			registration_date = excluded.registration_date,
			check_in_date = excluded.check_in_date,
			staff = excluded.staff,
			dealer = excluded.dealer,
			minor = excluded.minor,
			code_of_conduct_accepted = excluded.code_of_conduct_accepted,
			attendee_type = excluded.attendee_type,
			current_balance = excluded.current_balance`

	_, err := r.db.ExecContext(ctx, query,
		a.ConventionID, a.ID, a.Active, a.BadgeNumber,
		a.FirstName, a.LastName, a.BadgeName, a.EmailAddress, a.PhoneNumber,
		a.StreetAddress, a.City, a.Region, a.PostalCode, a.Country,
		dbx.NullInt64(a.MembershipLevelID), birthday,
		dbx.NullTime(a.RegistrationDate), dbx.NullTime(a.CheckInDate),
		a.Staff, a.Dealer, a.Minor, a.CodeOfConductAccepted, string(a.Type), a.CurrentBalance)
	if err != nil {
		return fmt.Errorf("failed to upsert attendee %d/%d: %w", a.ConventionID, a.ID, err)
	}

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE convention_id = ? AND attendee_id = ?`, a.ConventionID, a.ID); err != nil {
		return fmt.Errorf("failed to clear transactions of attendee %d/%d: %w", a.ConventionID, a.ID, err)
	}
	for _, t := range a.Transactions {
		_, err := r.db.ExecContext(ctx, `INSERT INTO transactions
			(convention_id, attendee_id, id, amount, timestamp, type_code, description, payment_info, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ConventionID, a.ID, t.ID, t.Amount, t.Timestamp.UTC().Format(dbx.TimeLayout),
			t.TypeCode, t.Description, t.PaymentInfo, t.Notes)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %d of attendee %d/%d: %w", t.ID, a.ConventionID, a.ID, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) GetByConvention(ctx context.Context, conventionID int64) ([]models.Attendee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM attendees WHERE convention_id = ? ORDER BY id`, conventionID)
	if err != nil {
		return nil, fmt.Errorf("failed to select attendees: %w", err)
	}

	var result []models.Attendee
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// The single pooled connection is busy until rows are closed, so the
	// transaction lists are loaded afterwards.
	for i := range result {
		if result[i].Transactions, err = r.transactions(ctx, conventionID, result[i].ID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, conventionID, id int64) (*models.Attendee, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM attendees WHERE convention_id = ? AND id = ?`, conventionID, id)
	return r.one(ctx, row)
}

func (r *SQLiteRepository) GetByBadgeNumber(ctx context.Context, conventionID int64, badge string) (*models.Attendee, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM attendees WHERE convention_id = ? AND badge_number = ? ORDER BY id LIMIT 1`,
		conventionID, badge)
	return r.one(ctx, row)
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM attendees`); err != nil {
		return fmt.Errorf("failed to delete attendees: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) one(ctx context.Context, row *sql.Row) (*models.Attendee, error) {
	a, err := scanAttendee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if a.Transactions, err = r.transactions(ctx, a.ConventionID, a.ID); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *SQLiteRepository) transactions(ctx context.Context, conventionID, attendeeID int64) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, amount, timestamp, type_code, description, payment_info, notes
		FROM transactions WHERE convention_id = ? AND attendee_id = ? ORDER BY timestamp, id`, conventionID, attendeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to select transactions: %w", err)
	}
	defer rows.Close()

	var result []models.Transaction
	for rows.Next() {
		var (
			t  models.Transaction
			ts string
		)
		if err := rows.Scan(&t.ID, &t.Amount, &ts, &t.TypeCode, &t.Description, &t.PaymentInfo, &t.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if t.Timestamp, err = time.Parse(dbx.TimeLayout, ts); err != nil {
			return nil, fmt.Errorf("invalid stored transaction timestamp %q: %w", ts, err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAttendee(s scanner) (*models.Attendee, error) {
	var (
		a                     models.Attendee
		levelID               sql.NullInt64
		birthday              sql.NullString
		registered, checkedIn sql.NullString
		attendeeType          string
	)
	err := s.Scan(&a.ConventionID, &a.ID, &a.Active, &a.BadgeNumber,
		&a.FirstName, &a.LastName, &a.BadgeName, &a.EmailAddress, &a.PhoneNumber,
		&a.StreetAddress, &a.City, &a.Region, &a.PostalCode, &a.Country,
		&levelID, &birthday, &registered, &checkedIn,
		&a.Staff, &a.Dealer, &a.Minor, &a.CodeOfConductAccepted, &attendeeType, &a.CurrentBalance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan attendee: %w", err)
	}

	a.Type = models.AttendeeType(attendeeType)
	a.MembershipLevelID = dbx.ScanInt64(levelID)
	if birthday.Valid && birthday.String != "" {
		b, err := models.ParseCalendarDate(birthday.String)
		if err != nil {
			return nil, fmt.Errorf("invalid stored birthday %q: %w", birthday.String, err)
		}
		a.Birthday = &b
	}
	if a.RegistrationDate, err = dbx.ScanTime(registered); err != nil {
		return nil, err
	}
	if a.CheckInDate, err = dbx.ScanTime(checkedIn); err != nil {
		return nil, err
	}
	return &a, nil
}
