package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/conops/internal/client/models"
)

// Client is the registration API as seen by the services.
type Client interface {
	Login(ctx context.Context, conventionShortName, username, password string) (*Token, error)

	Conventions(ctx context.Context, since *time.Time, includeInactive bool) ([]models.Convention, error)
	Convention(ctx context.Context, id int64) (*models.Convention, error)
	ActiveConventions(ctx context.Context) ([]models.Convention, error)
	CreateConvention(ctx context.Context, c *models.Convention) (*models.Convention, error)
	UpdateConvention(ctx context.Context, c *models.Convention) (*models.Convention, error)
	DeleteConvention(ctx context.Context, id int64) error

	Attendees(ctx context.Context, shortName string, since *time.Time) ([]models.Attendee, error)
	Attendee(ctx context.Context, shortName string, id int64) (*models.Attendee, error)
	CreateAttendee(ctx context.Context, shortName string, a *models.Attendee) (*models.Attendee, error)
	UpdateAttendee(ctx context.Context, shortName string, a *models.Attendee, reason string, notify bool) (*models.Attendee, error)
	AddTransaction(ctx context.Context, shortName string, attendeeID int64, t *models.Transaction) (*models.Attendee, error)
	NotifyUpdated(ctx context.Context, shortName string, attendeeID int64) error
	ResendWelcome(ctx context.Context, shortName string, attendeeID int64) error
	PrintBadge(ctx context.Context, shortName string, attendeeID int64, printer string) error

	Printers(ctx context.Context, shortName string) ([]string, error)
}

func sinceQuery(q url.Values, since *time.Time) url.Values {
	if since != nil {
		if q == nil {
			q = url.Values{}
		}
		q.Set("since", FormatTimestamp(*since))
	}
	return q
}

func requireShortName(shortName string) error {
	if strings.TrimSpace(shortName) == "" {
		return Unprocessable("convention short name is required")
	}
	return nil
}

func requireID(what string, id int64) error {
	if id <= 0 {
		return Unprocessable("%s id is required", what)
	}
	return nil
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

func (c *HTTPClient) Login(ctx context.Context, conventionShortName, username, password string) (*Token, error) {
	if err := requireShortName(conventionShortName); err != nil {
		return nil, err
	}
	if username == "" || password == "" {
		return nil, Unprocessable("username and password are required")
	}
	tok, err := do[Token](ctx, c, request{
		method:    http.MethodPost,
		segments:  []string{"auth", "token"},
		body:      tokenRequest{ConventionShortName: conventionShortName, Username: username, Password: password},
		anonymous: true,
	})
	if err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, decodeFailure(&DecodeError{Reason: MissingKey, Path: "data.access_token"})
	}
	return &tok, nil
}

func (c *HTTPClient) Conventions(ctx context.Context, since *time.Time, includeInactive bool) ([]models.Convention, error) {
	q := url.Values{"include_inactive": {strconv.FormatBool(includeInactive)}}
	ds, err := do[[]conventionDTO](ctx, c, request{
		method:   http.MethodGet,
		segments: []string{"secure-conventions"},
		query:    sinceQuery(q, since),
	})
	if err != nil {
		return nil, err
	}
	out, err := conventionsFromDTO(ds)
	if err != nil {
		return nil, decodeFailure(err)
	}
	return out, nil
}

func (c *HTTPClient) Convention(ctx context.Context, conventionID int64) (*models.Convention, error) {
	if err := requireID("convention", conventionID); err != nil {
		return nil, err
	}
	return c.convention(ctx, request{method: http.MethodGet, segments: []string{"convention", itoa(conventionID)}})
}

func (c *HTTPClient) ActiveConventions(ctx context.Context) ([]models.Convention, error) {
	ds, err := do[[]conventionDTO](ctx, c, request{
		method:    http.MethodGet,
		segments:  []string{"conventions", "active"},
		anonymous: true,
	})
	if err != nil {
		return nil, err
	}
	out, err := conventionsFromDTO(ds)
	if err != nil {
		return nil, decodeFailure(err)
	}
	return out, nil
}

func (c *HTTPClient) CreateConvention(ctx context.Context, conv *models.Convention) (*models.Convention, error) {
	if err := requireShortName(conv.ShortName); err != nil {
		return nil, err
	}
	return c.convention(ctx, request{method: http.MethodPost, segments: []string{"convention"}, body: conventionToDTO(conv)})
}

func (c *HTTPClient) UpdateConvention(ctx context.Context, conv *models.Convention) (*models.Convention, error) {
	if err := requireID("convention", conv.ID); err != nil {
		return nil, err
	}
	return c.convention(ctx, request{method: http.MethodPut, segments: []string{"convention", itoa(conv.ID)}, body: conventionToDTO(conv)})
}

func (c *HTTPClient) DeleteConvention(ctx context.Context, conventionID int64) error {
	if err := requireID("convention", conventionID); err != nil {
		return err
	}
	_, err := do[NoContent](ctx, c, request{method: http.MethodDelete, segments: []string{"convention", itoa(conventionID)}})
	return err
}

func (c *HTTPClient) convention(ctx context.Context, r request) (*models.Convention, error) {
	d, err := do[conventionDTO](ctx, c, r)
	if err != nil {
		return nil, err
	}
	conv, err := conventionFromDTO(&d, "data")
	if err != nil {
		return nil, decodeFailure(err)
	}
	return &conv, nil
}

func (c *HTTPClient) Attendees(ctx context.Context, shortName string, since *time.Time) ([]models.Attendee, error) {
	if err := requireShortName(shortName); err != nil {
		return nil, err
	}
	ds, err := do[[]attendeeDTO](ctx, c, request{
		method:   http.MethodGet,
		segments: []string{"attendees", shortName},
		query:    sinceQuery(nil, since),
	})
	if err != nil {
		return nil, err
	}
	out, err := attendeesFromDTO(ds)
	if err != nil {
		return nil, decodeFailure(err)
	}
	return out, nil
}

func (c *HTTPClient) Attendee(ctx context.Context, shortName string, attendeeID int64) (*models.Attendee, error) {
	if err := requireShortName(shortName); err != nil {
		return nil, err
	}
	if err := requireID("attendee", attendeeID); err != nil {
		return nil, err
	}
	return c.attendee(ctx, request{method: http.MethodGet, segments: []string{"attendees", shortName, itoa(attendeeID)}})
}

func (c *HTTPClient) CreateAttendee(ctx context.Context, shortName string, a *models.Attendee) (*models.Attendee, error) {
	if err := requireShortName(shortName); err != nil {
		return nil, err
	}
	body := attendeeToDTO(a)
	body.ID = nil
	return c.attendee(ctx, request{method: http.MethodPost, segments: []string{"attendees", shortName}, body: body})
}

func (c *HTTPClient) UpdateAttendee(ctx context.Context, shortName string, a *models.Attendee, reason string, notify bool) (*models.Attendee, error) {
	if err := requireShortName(shortName); err != nil {
		return nil, err
	}
	if err := requireID("attendee", a.ID); err != nil {
		return nil, err
	}
	body := attendeeUpdateRequest{attendeeDTO: attendeeToDTO(a), Reason: reason, NotifyAttendee: notify}
	return c.attendee(ctx, request{method: http.MethodPut, segments: []string{"attendees", shortName, itoa(a.ID)}, body: body})
}

func (c *HTTPClient) AddTransaction(ctx context.Context, shortName string, attendeeID int64, t *models.Transaction) (*models.Attendee, error) {
	if err := requireShortName(shortName); err != nil {
		return nil, err
	}
	if err := requireID("attendee", attendeeID); err != nil {
		return nil, err
	}
	body := transactionRequest{
		Amount:      t.Amount,
		TypeCode:    t.TypeCode,
		Description: t.Description,
		PaymentInfo: t.PaymentInfo,
		Notes:       t.Notes,
	}
	return c.attendee(ctx, request{
		method:   http.MethodPost,
		segments: []string{"attendees", shortName, itoa(attendeeID), "transactions"},
		body:     body,
	})
}

func (c *HTTPClient) NotifyUpdated(ctx context.Context, shortName string, attendeeID int64) error {
	return c.attendeeAction(ctx, shortName, attendeeID, "notify-updated", nil)
}

func (c *HTTPClient) ResendWelcome(ctx context.Context, shortName string, attendeeID int64) error {
	return c.attendeeAction(ctx, shortName, attendeeID, "resend-welcome", nil)
}

func (c *HTTPClient) PrintBadge(ctx context.Context, shortName string, attendeeID int64, printer string) error {
	return c.attendeeAction(ctx, shortName, attendeeID, "print-badge", printBadgeRequest{PrinterName: printer})
}

func (c *HTTPClient) attendeeAction(ctx context.Context, shortName string, attendeeID int64, action string, body any) error {
	if err := requireShortName(shortName); err != nil {
		return err
	}
	if err := requireID("attendee", attendeeID); err != nil {
		return err
	}
	if body == nil {
		body = struct{}{}
	}
	_, err := do[NoContent](ctx, c, request{
		method:   http.MethodPost,
		segments: []string{"attendees", shortName, itoa(attendeeID), action},
		body:     body,
	})
	return err
}

func (c *HTTPClient) attendee(ctx context.Context, r request) (*models.Attendee, error) {
	d, err := do[attendeeDTO](ctx, c, r)
	if err != nil {
		return nil, err
	}
	a, err := attendeeFromDTO(&d, "data")
	if err != nil {
		return nil, decodeFailure(err)
	}
	return &a, nil
}

func (c *HTTPClient) Printers(ctx context.Context, shortName string) ([]string, error) {
	if err := requireShortName(shortName); err != nil {
		return nil, err
	}
	return do[[]string](ctx, c, request{method: http.MethodGet, segments: []string{"printers", shortName}})
}
