package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/conops/internal/client/client"
	"github.com/dmitrijs2005/conops/internal/client/models"
	"github.com/dmitrijs2005/conops/internal/client/store"
	"github.com/dmitrijs2005/conops/internal/logging"
)

// AttendeeService runs attendee operations against the server and merges
// every attendee the server returns into the store, scoped to its
// convention.
type AttendeeService interface {
	List(ctx context.Context, shortName string) ([]models.Attendee, error)
	// Get returns the cached attendee, fetching it when it is not cached.
	Get(ctx context.Context, shortName string, id int64) (*models.Attendee, error)
	// FindByBadge looks a badge number up in the cache only.
	FindByBadge(ctx context.Context, shortName, badge string) (*models.Attendee, error)
	Create(ctx context.Context, shortName string, a *models.Attendee) (*models.Attendee, error)
	Update(ctx context.Context, shortName string, a *models.Attendee, reason string, notify bool) (*models.Attendee, error)
	CheckIn(ctx context.Context, shortName string, id int64) (*models.Attendee, error)
	AddTransaction(ctx context.Context, shortName string, id int64, t *models.Transaction) (*models.Attendee, error)
	NotifyUpdated(ctx context.Context, shortName string, id int64) error
	ResendWelcome(ctx context.Context, shortName string, id int64) error
	PrintBadge(ctx context.Context, shortName string, id int64, printer string) error
	Printers(ctx context.Context, shortName string) ([]string, error)
}

const checkInReason = "Checked in"

type attendeeService struct {
	client client.Client
	store  *store.Store
	logger logging.Logger
	now    func() time.Time
}

func NewAttendeeService(c client.Client, st *store.Store, logger logging.Logger) AttendeeService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &attendeeService{client: c, store: st, logger: logger.With("component", "attendees"), now: time.Now}
}

func (s *attendeeService) List(ctx context.Context, shortName string) ([]models.Attendee, error) {
	conv, err := cachedConvention(ctx, s.store, shortName)
	if err != nil {
		return nil, err
	}
	list, err := s.store.Attendees(ctx, conv.ID)
	if err != nil {
		return nil, client.StoreError(err)
	}
	return list, nil
}

func (s *attendeeService) Get(ctx context.Context, shortName string, id int64) (*models.Attendee, error) {
	conv, err := cachedConvention(ctx, s.store, shortName)
	if err != nil {
		return nil, err
	}
	a, err := s.store.Attendee(ctx, conv.ID, id)
	if err == nil {
		return a, nil
	}
	if !store.IsNotFound(err) {
		return nil, client.StoreError(err)
	}
	fetched, err := s.client.Attendee(ctx, conv.ShortName, id)
	if err != nil {
		return nil, err
	}
	return fetched, s.merge(ctx, conv, fetched)
}

func (s *attendeeService) FindByBadge(ctx context.Context, shortName, badge string) (*models.Attendee, error) {
	if badge == "" {
		return nil, client.Unprocessable("badge number is required")
	}
	conv, err := cachedConvention(ctx, s.store, shortName)
	if err != nil {
		return nil, err
	}
	a, err := s.store.AttendeeByBadge(ctx, conv.ID, badge)
	if store.IsNotFound(err) {
		return nil, &client.Error{Kind: client.KindNotFound, Message: "no cached attendee with badge " + badge + " in " + conv.ShortName}
	}
	if err != nil {
		return nil, client.StoreError(err)
	}
	return a, nil
}

func (s *attendeeService) Create(ctx context.Context, shortName string, a *models.Attendee) (*models.Attendee, error) {
	conv, err := cachedConvention(ctx, s.store, shortName)
	if err != nil {
		return nil, err
	}
	a.ConventionID = conv.ID
	created, err := s.client.CreateAttendee(ctx, conv.ShortName, a)
	if err != nil {
		return nil, err
	}
	return created, s.merge(ctx, conv, created)
}

func (s *attendeeService) Update(ctx context.Context, shortName string, a *models.Attendee, reason string, notify bool) (*models.Attendee, error) {
	conv, err := cachedConvention(ctx, s.store, shortName)
	if err != nil {
		return nil, err
	}
	a.ConventionID = conv.ID
	updated, err := s.client.UpdateAttendee(ctx, conv.ShortName, a, reason, notify)
	if err != nil {
		return nil, err
	}
	return updated, s.merge(ctx, conv, updated)
}

func (s *attendeeService) CheckIn(ctx context.Context, shortName string, id int64) (*models.Attendee, error) {
	a, err := s.Get(ctx, shortName, id)
	if err != nil {
		return nil, err
	}
	if a.CheckedIn() {
		return nil, client.Unprocessable("attendee %d already checked in at %s", id, a.CheckInDate.Local().Format(time.RFC1123))
	}
	if !a.Active {
		return nil, client.Unprocessable("attendee %d is not active", id)
	}
	now := s.now().UTC()
	a.CheckInDate = &now
	updated, err := s.Update(ctx, shortName, a, checkInReason, false)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "attendee checked in", "convention", shortName, "attendee", id, "badge", updated.BadgeNumber)
	return updated, nil
}

func (s *attendeeService) AddTransaction(ctx context.Context, shortName string, id int64, t *models.Transaction) (*models.Attendee, error) {
	conv, err := cachedConvention(ctx, s.store, shortName)
	if err != nil {
		return nil, err
	}
	updated, err := s.client.AddTransaction(ctx, conv.ShortName, id, t)
	if err != nil {
		return nil, err
	}
	return updated, s.merge(ctx, conv, updated)
}

func (s *attendeeService) NotifyUpdated(ctx context.Context, shortName string, id int64) error {
	return s.client.NotifyUpdated(ctx, shortName, id)
}

func (s *attendeeService) ResendWelcome(ctx context.Context, shortName string, id int64) error {
	return s.client.ResendWelcome(ctx, shortName, id)
}

func (s *attendeeService) PrintBadge(ctx context.Context, shortName string, id int64, printer string) error {
	if err := s.client.PrintBadge(ctx, shortName, id, printer); err != nil {
		return err
	}
	s.logger.Info(ctx, "badge sent to printer", "convention", shortName, "attendee", id, "printer", printer)
	return nil
}

func (s *attendeeService) Printers(ctx context.Context, shortName string) ([]string, error) {
	return s.client.Printers(ctx, shortName)
}

func (s *attendeeService) merge(ctx context.Context, conv *models.Convention, a *models.Attendee) error {
	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Tx) error {
		return tx.UpsertAttendee(ctx, conv.ID, a)
	})
	return client.StoreError(err)
}
