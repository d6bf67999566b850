package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/conops/internal/client/client"
	"github.com/dmitrijs2005/conops/internal/client/models"
	"github.com/dmitrijs2005/conops/internal/client/store"
	"github.com/dmitrijs2005/conops/internal/logging"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

type SyncMode string

const (
	SyncFull        SyncMode = "full"
	SyncIncremental SyncMode = "incremental"
)

// SyncResult summarizes a completed pass.
type SyncResult struct {
	PassID    string
	Mode      SyncMode
	Primary   string
	CompareTo string

	Conventions int
	Attendees   int

	// Watermark is the stored last sync time, nil if storing it failed.
	Watermark *time.Time
}

// SyncService reconciles the local store with the server.
type SyncService interface {
	// Sync runs one pass. It performs a full sync when forceFull is set or
	// nothing is cached yet. The first failing remote call or store write
	// aborts the pass and leaves the watermark where it was.
	Sync(ctx context.Context, forceFull bool) (*SyncResult, error)
}

type SyncOption func(*syncService)

func WithSyncLogger(l logging.Logger) SyncOption {
	return func(s *syncService) { s.logger = l }
}

func WithSyncRegisterer(reg prometheus.Registerer) SyncOption {
	return func(s *syncService) { s.registerer = reg }
}

// WithClock overrides time.Now for the watermark.
func WithClock(now func() time.Time) SyncOption {
	return func(s *syncService) { s.now = now }
}

type syncService struct {
	client     client.Client
	store      *store.Store
	prefs      Preferences
	logger     logging.Logger
	registerer prometheus.Registerer
	metrics    *syncMetrics
	now        func() time.Time
}

func NewSyncService(c client.Client, st *store.Store, prefs Preferences, opts ...SyncOption) SyncService {
	s := &syncService{
		client: c,
		store:  st,
		prefs:  prefs,
		logger: logging.Nop(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With("component", "sync")
	s.metrics = newSyncMetrics(s.registerer)
	return s
}

func (s *syncService) Sync(ctx context.Context, forceFull bool) (*SyncResult, error) {
	started := time.Now()
	res := &SyncResult{PassID: uuid.NewString(), Mode: SyncIncremental}
	log := s.logger.With("sync_pass", res.PassID)

	err := s.pass(ctx, forceFull, res, log)

	result := "success"
	if err != nil {
		result = "error"
	}
	s.metrics.passes.WithLabelValues(string(res.Mode), result).Inc()
	s.metrics.duration.Observe(time.Since(started).Seconds())

	if err != nil {
		log.Error(ctx, "sync failed", "mode", res.Mode, "error", err)
		return nil, err
	}
	log.Info(ctx, "sync finished",
		"mode", res.Mode,
		"primary", res.Primary,
		"compare_to", res.CompareTo,
		"conventions", res.Conventions,
		"attendees", res.Attendees,
		"elapsed", time.Since(started))
	return res, nil
}

func (s *syncService) pass(ctx context.Context, forceFull bool, res *SyncResult, log logging.Logger) error {
	cached, err := s.store.Conventions(ctx)
	if err != nil {
		return client.StoreError(err)
	}
	includeInactive, err := s.prefs.IncludeInactive(ctx)
	if err != nil {
		return client.StoreError(err)
	}
	preferred, err := s.prefs.LastConvention(ctx)
	if err != nil {
		return client.StoreError(err)
	}

	var since *time.Time
	if forceFull || len(cached) == 0 {
		res.Mode = SyncFull
		// Wipe before fetching so a failure leaves an empty cache rather
		// than a half-stale one.
		if err := s.store.Wipe(ctx); err != nil {
			return client.StoreError(err)
		}
		cached = nil
	} else if since, err = s.store.LastSyncTime(ctx); err != nil {
		return client.StoreError(err)
	}
	sinceAttr := "none"
	if since != nil {
		sinceAttr = client.FormatTimestamp(*since)
	}
	log.Debug(ctx, "sync started", "mode", res.Mode, "since", sinceAttr, "include_inactive", includeInactive)

	remote, err := s.client.Conventions(ctx, since, includeInactive)
	if err != nil {
		return err
	}
	if err := s.mergeConventions(ctx, remote...); err != nil {
		return err
	}
	res.Conventions = len(remote)

	candidates := remote
	if len(candidates) == 0 {
		candidates = filterConventions(cached, includeInactive)
	}
	primary, ok := SelectPrimary(candidates, preferred)
	if !ok {
		log.Info(ctx, "no convention to sync attendees for")
		return s.commitWatermark(ctx, res, log)
	}
	res.Primary = primary.ShortName
	targets := []models.Convention{primary}

	if primary.CompareTo != nil && *primary.CompareTo != primary.ID {
		other, found := findConvention(remote, *primary.CompareTo)
		if !found {
			fetched, err := s.client.Convention(ctx, *primary.CompareTo)
			if err != nil {
				return err
			}
			if err := s.mergeConventions(ctx, *fetched); err != nil {
				return err
			}
			other = *fetched
		}
		res.CompareTo = other.ShortName
		targets = append(targets, other)
	}

	for _, target := range targets {
		// A convention that was not cached before this pass has no
		// attendees locally yet, whatever the watermark says.
		targetSince := since
		if _, known := findConvention(cached, target.ID); !known {
			targetSince = nil
		}
		n, err := s.syncAttendees(ctx, target, targetSince)
		if err != nil {
			return err
		}
		log.Debug(ctx, "attendees merged", "convention", target.ShortName, "count", n)
		res.Attendees += n
	}

	return s.commitWatermark(ctx, res, log)
}

func (s *syncService) mergeConventions(ctx context.Context, conventions ...models.Convention) error {
	if len(conventions) == 0 {
		return nil
	}
	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Tx) error {
		for i := range conventions {
			if err := tx.UpsertConvention(ctx, &conventions[i]); err != nil {
				return err
			}
		}
		return nil
	})
	return client.StoreError(err)
}

func (s *syncService) syncAttendees(ctx context.Context, target models.Convention, since *time.Time) (int, error) {
	list, err := s.client.Attendees(ctx, target.ShortName, since)
	if err != nil {
		return 0, err
	}
	if len(list) == 0 {
		return 0, nil
	}
	err = s.store.Update(ctx, func(ctx context.Context, tx *store.Tx) error {
		for i := range list {
			if err := tx.UpsertAttendee(ctx, target.ID, &list[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, client.StoreError(err)
	}
	return len(list), nil
}

// commitWatermark records the pass. Failing to do so is logged only; the
// next pass then re-fetches from the previous watermark.
func (s *syncService) commitWatermark(ctx context.Context, res *SyncResult, log logging.Logger) error {
	now := s.now().UTC()
	if err := s.store.AdvanceLastSyncTime(ctx, now); err != nil {
		log.Error(ctx, "failed to store sync watermark", "error", err)
		return nil
	}
	w, err := s.store.LastSyncTime(ctx)
	if err != nil {
		log.Warn(ctx, "failed to read back sync watermark", "error", err)
		return nil
	}
	res.Watermark = w
	return nil
}
