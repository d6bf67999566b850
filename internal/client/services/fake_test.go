package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/conops/internal/client/client"
	"github.com/dmitrijs2005/conops/internal/client/models"
	"github.com/dmitrijs2005/conops/internal/client/settings"
	"github.com/dmitrijs2005/conops/internal/client/store"
	"github.com/dmitrijs2005/conops/internal/logging"
	"github.com/stretchr/testify/require"
)

// fakeClient serves canned data. Methods that a test does not set panic
// through the embedded nil interface.
type fakeClient struct {
	client.Client

	mu sync.Mutex

	conventions    []models.Convention
	conventionsErr error
	byID           map[int64]models.Convention
	conventionErr  error
	attendees      map[string][]models.Attendee
	attendeesErr   map[string]error

	sinceConventions []*time.Time
	sinceAttendees   map[string][]*time.Time
	fetchedIDs       []int64

	updated []updateCall
	token   string
}

type updateCall struct {
	shortName string
	attendee  models.Attendee
	reason    string
	notify    bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		byID:           map[int64]models.Convention{},
		attendees:      map[string][]models.Attendee{},
		attendeesErr:   map[string]error{},
		sinceAttendees: map[string][]*time.Time{},
	}
}

func (f *fakeClient) Login(_ context.Context, conv, user, pass string) (*client.Token, error) {
	if pass != "secret" {
		return nil, &client.Error{Kind: client.KindAPI, Status: 401, Message: "bad credentials"}
	}
	return &client.Token{AccessToken: f.token, TokenType: "bearer"}, nil
}

func (f *fakeClient) Conventions(_ context.Context, since *time.Time, _ bool) ([]models.Convention, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinceConventions = append(f.sinceConventions, since)
	if f.conventionsErr != nil {
		return nil, f.conventionsErr
	}
	return append([]models.Convention(nil), f.conventions...), nil
}

func (f *fakeClient) Convention(_ context.Context, id int64) (*models.Convention, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchedIDs = append(f.fetchedIDs, id)
	if f.conventionErr != nil {
		return nil, f.conventionErr
	}
	c, ok := f.byID[id]
	if !ok {
		return nil, &client.Error{Kind: client.KindNotFound, Status: 404, Message: "no such convention"}
	}
	return &c, nil
}

func (f *fakeClient) ActiveConventions(context.Context) ([]models.Convention, error) {
	return filterConventions(f.conventions, false), nil
}

func (f *fakeClient) CreateConvention(_ context.Context, c *models.Convention) (*models.Convention, error) {
	out := *c
	out.ID = 100
	return &out, nil
}

func (f *fakeClient) UpdateConvention(_ context.Context, c *models.Convention) (*models.Convention, error) {
	out := *c
	return &out, nil
}

func (f *fakeClient) DeleteConvention(context.Context, int64) error { return nil }

func (f *fakeClient) Attendees(_ context.Context, shortName string, since *time.Time) ([]models.Attendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinceAttendees[shortName] = append(f.sinceAttendees[shortName], since)
	if err := f.attendeesErr[shortName]; err != nil {
		return nil, err
	}
	return append([]models.Attendee(nil), f.attendees[shortName]...), nil
}

func (f *fakeClient) Attendee(_ context.Context, shortName string, id int64) (*models.Attendee, error) {
	for _, a := range f.attendees[shortName] {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, &client.Error{Kind: client.KindNotFound, Status: 404, Message: "no such attendee"}
}

func (f *fakeClient) CreateAttendee(_ context.Context, _ string, a *models.Attendee) (*models.Attendee, error) {
	out := *a
	out.ID = 900
	out.BadgeNumber = "B900"
	return &out, nil
}

func (f *fakeClient) UpdateAttendee(_ context.Context, shortName string, a *models.Attendee, reason string, notify bool) (*models.Attendee, error) {
	f.mu.Lock()
	f.updated = append(f.updated, updateCall{shortName: shortName, attendee: *a, reason: reason, notify: notify})
	f.mu.Unlock()
	out := *a
	return &out, nil
}

func (f *fakeClient) AddTransaction(ctx context.Context, shortName string, id int64, t *models.Transaction) (*models.Attendee, error) {
	a, err := f.Attendee(ctx, shortName, id)
	if err != nil {
		return nil, err
	}
	tr := *t
	tr.ID = int64(len(a.Transactions) + 1)
	a.Transactions = append(a.Transactions, tr)
	a.CurrentBalance += tr.Amount
	return a, nil
}

func (f *fakeClient) Printers(context.Context, string) ([]string, error) {
	return []string{"front-desk", "staff"}, nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), ":memory:", logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newTestSettings(t *testing.T, st *store.Store, values map[string]string) *settings.Settings {
	t.Helper()
	s := settings.New(st)
	if len(values) > 0 {
		require.NoError(t, s.SetMany(context.Background(), values))
	}
	return s
}

func ptr[T any](v T) *T { return &v }

func conv(id int64, short string, active bool) models.Convention {
	return models.Convention{ID: id, ShortName: short, LongName: short + " convention", Active: active}
}

func attendee(id int64, first string) models.Attendee {
	return models.Attendee{
		ID:          id,
		Active:      true,
		BadgeNumber: "B" + first,
		FirstName:   first,
		LastName:    "Tester",
		Type:        models.AttendeeTypeAttendee,
	}
}
