package services

import (
	"context"

	"github.com/dmitrijs2005/conops/internal/client/client"
	"github.com/dmitrijs2005/conops/internal/client/models"
	"github.com/dmitrijs2005/conops/internal/client/store"
)

type ConventionService interface {
	// List returns cached conventions, without inactive ones unless the
	// include-inactive setting is on.
	List(ctx context.Context) ([]models.Convention, error)
	// Get looks a cached convention up by short name.
	Get(ctx context.Context, shortName string) (*models.Convention, error)
	// Active asks the server for its public list of active conventions.
	Active(ctx context.Context) ([]models.Convention, error)
	Create(ctx context.Context, c *models.Convention) (*models.Convention, error)
	Update(ctx context.Context, c *models.Convention) (*models.Convention, error)
	Delete(ctx context.Context, id int64) error
}

type conventionService struct {
	client client.Client
	store  *store.Store
	prefs  Preferences
}

func NewConventionService(c client.Client, st *store.Store, prefs Preferences) ConventionService {
	return &conventionService{client: c, store: st, prefs: prefs}
}

func (s *conventionService) List(ctx context.Context) ([]models.Convention, error) {
	all, err := s.store.Conventions(ctx)
	if err != nil {
		return nil, client.StoreError(err)
	}
	includeInactive, err := s.prefs.IncludeInactive(ctx)
	if err != nil {
		return nil, client.StoreError(err)
	}
	return filterConventions(all, includeInactive), nil
}

func (s *conventionService) Get(ctx context.Context, shortName string) (*models.Convention, error) {
	return cachedConvention(ctx, s.store, shortName)
}

func (s *conventionService) Active(ctx context.Context) ([]models.Convention, error) {
	return s.client.ActiveConventions(ctx)
}

func (s *conventionService) Create(ctx context.Context, c *models.Convention) (*models.Convention, error) {
	created, err := s.client.CreateConvention(ctx, c)
	if err != nil {
		return nil, err
	}
	return created, s.save(ctx, created)
}

func (s *conventionService) Update(ctx context.Context, c *models.Convention) (*models.Convention, error) {
	updated, err := s.client.UpdateConvention(ctx, c)
	if err != nil {
		return nil, err
	}
	return updated, s.save(ctx, updated)
}

func (s *conventionService) Delete(ctx context.Context, id int64) error {
	if err := s.client.DeleteConvention(ctx, id); err != nil {
		return err
	}
	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Tx) error {
		return tx.DeleteConvention(ctx, id)
	})
	return client.StoreError(err)
}

func (s *conventionService) save(ctx context.Context, c *models.Convention) error {
	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Tx) error {
		return tx.UpsertConvention(ctx, c)
	})
	return client.StoreError(err)
}

// cachedConvention resolves a short name against the local store.
func cachedConvention(ctx context.Context, st *store.Store, shortName string) (*models.Convention, error) {
	if shortName == "" {
		return nil, client.Unprocessable("convention short name is required")
	}
	c, err := st.ConventionByShortName(ctx, shortName)
	if store.IsNotFound(err) {
		return nil, &client.Error{
			Kind:    client.KindNotFound,
			Message: "convention " + shortName + " is not in the local cache; run sync first",
			Err:     err,
		}
	}
	if err != nil {
		return nil, client.StoreError(err)
	}
	return c, nil
}
