package conventions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/conops/internal/client/models"
	"github.com/dmitrijs2005/conops/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `id, short_name, long_name, active, last_modified,
	event_start, event_end, pre_reg_start, pre_reg_end, compare_to,
	membership_levels, shirt_sizes, mail_templates, integrations`

// Upsert writes the full field set of c in one statement.
func (r *SQLiteRepository) Upsert(ctx context.Context, c *models.Convention) error {
	levels, err := marshalDoc(c.MembershipLevels, "[]")
	if err != nil {
		return fmt.Errorf("failed to encode membership levels: %w", err)
	}
	sizes, err := marshalDoc(c.ShirtSizes, "[]")
	if err != nil {
		return fmt.Errorf("failed to encode shirt sizes: %w", err)
	}
	templates, err := marshalDoc(c.MailTemplates, "{}")
	if err != nil {
		return fmt.Errorf("failed to encode mail templates: %w", err)
	}
	integrations, err := marshalDoc(c.Integrations, "{}")
	if err != nil {
		return fmt.Errorf("failed to encode integrations: %w", err)
	}

	query := `INSERT INTO conventions (id, short_name, long_name, active, last_modified,
			event_start, event_end, pre_reg_start, pre_reg_end, compare_to,
			membership_levels, shirt_sizes, mail_templates, integrations)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			short_name = excluded.short_name,
			long_name = excluded.long_name,
			active = excluded.active,
			last_modified = excluded.last_modified,
			event_start = excluded.event_start,
			event_end = excluded.event_end,
			pre_reg_start = excluded.pre_reg_start,
			pre_reg_end = excluded.pre_reg_end,
			compare_to = excluded.compare_to,
			membership_levels = excluded.membership_levels,
			shirt_sizes = excluded.shirt_sizes,
			mail_templates = excluded.mail_templates,
			integrations = excluded.integrations`

	_, err = r.db.ExecContext(ctx, query,
		c.ID, c.ShortName, c.LongName, c.Active, dbx.NullTime(c.LastModified),
		dbx.NullTime(c.EventStart), dbx.NullTime(c.EventEnd),
		dbx.NullTime(c.PreRegStart), dbx.NullTime(c.PreRegEnd),
		dbx.NullInt64(c.CompareTo),
		levels, sizes, templates, integrations)
	if err != nil {
		return fmt.Errorf("failed to upsert convention %d: %w", c.ID, err)
	}
	return nil
}

// GetAll lists every cached convention.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Convention, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM conventions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select conventions: %w", err)
	}
	defer rows.Close()

	var result []models.Convention
	for rows.Next() {
		c, err := scanConvention(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Convention, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM conventions WHERE id = ?`, id)
	return scanOne(row)
}

func (r *SQLiteRepository) GetByShortName(ctx context.Context, shortName string) (*models.Convention, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM conventions WHERE short_name = ? COLLATE NOCASE ORDER BY id LIMIT 1`, shortName)
	return scanOne(row)
}

// DeleteByID removes the convention and cascades to its attendees.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM attendees WHERE convention_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete attendees of convention %d: %w", id, err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM conventions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete convention %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM attendees`); err != nil {
		return fmt.Errorf("failed to delete attendees: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM conventions`); err != nil {
		return fmt.Errorf("failed to delete conventions: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conventions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count conventions: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOne(row *sql.Row) (*models.Convention, error) {
	c, err := scanConvention(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func scanConvention(s scanner) (*models.Convention, error) {
	var (
		c                                   models.Convention
		lastModified, evStart, evEnd        sql.NullString
		preStart, preEnd                    sql.NullString
		compareTo                           sql.NullInt64
		levels, sizes, templates, integrate string
	)
	err := s.Scan(&c.ID, &c.ShortName, &c.LongName, &c.Active, &lastModified,
		&evStart, &evEnd, &preStart, &preEnd, &compareTo,
		&levels, &sizes, &templates, &integrate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan convention: %w", err)
	}

	for _, f := range []struct {
		dst **time.Time
		src sql.NullString
	}{
		{&c.LastModified, lastModified},
		{&c.EventStart, evStart},
		{&c.EventEnd, evEnd},
		{&c.PreRegStart, preStart},
		{&c.PreRegEnd, preEnd},
	} {
		if *f.dst, err = dbx.ScanTime(f.src); err != nil {
			return nil, err
		}
	}
	c.CompareTo = dbx.ScanInt64(compareTo)

	if err := json.Unmarshal([]byte(levels), &c.MembershipLevels); err != nil {
		return nil, fmt.Errorf("corrupt membership levels of convention %d: %w", c.ID, err)
	}
	if err := json.Unmarshal([]byte(sizes), &c.ShirtSizes); err != nil {
		return nil, fmt.Errorf("corrupt shirt sizes of convention %d: %w", c.ID, err)
	}
	if err := json.Unmarshal([]byte(templates), &c.MailTemplates); err != nil {
		return nil, fmt.Errorf("corrupt mail templates of convention %d: %w", c.ID, err)
	}
	if err := json.Unmarshal([]byte(integrate), &c.Integrations); err != nil {
		return nil, fmt.Errorf("corrupt integrations of convention %d: %w", c.ID, err)
	}
	if len(c.MembershipLevels) == 0 {
		c.MembershipLevels = nil
	}
	if len(c.ShirtSizes) == 0 {
		c.ShirtSizes = nil
	}
	if len(c.MailTemplates) == 0 {
		c.MailTemplates = nil
	}
	return &c, nil
}

// marshalDoc encodes v, storing empty as the given literal so that nil and
// empty collections read back the same way.
func marshalDoc(v any, empty string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if s := string(b); s != "null" {
		return s, nil
	}
	return empty, nil
}
