package settings

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/spotbeam/spotbeam/internal/database"
)

// Store provides validated access to persisted property values.
type Store struct {
	repo *database.Repository
	log  zerolog.Logger
}

// NewStore creates a settings store backed by the given repository.
func NewStore(repo *database.Repository, log zerolog.Logger) *Store {
	return &Store{repo: repo, log: log}
}

// Get returns the persisted value of a property, or its default when it
// has never been assigned.
func (s *Store) Get(key string) (string, error) {
	prop, ok := Lookup(key)
	if !ok {
		return "", errors.Errorf("unknown property: %s", key)
	}

	value, found, err := s.repo.GetProperty(key)
	if err != nil {
		return "", err
	}
	if !found {
		return prop.Default, nil
	}
	return value, nil
}

// Set validates and persists a property assignment.
func (s *Store) Set(key, value string) error {
	prop, ok := Lookup(key)
	if !ok {
		return errors.Errorf("unknown property: %s", key)
	}

	if err := prop.Validate(value); err != nil {
		return err
	}

	value = prop.Canonical(value)

	if err := s.repo.SetProperty(key, value); err != nil {
		return err
	}

	s.log.Debug().Str("key", key).Str("value", value).Msg("property updated")
	return nil
}

// All returns the effective value of every registered property.
func (s *Store) All() (map[string]string, error) {
	values := make(map[string]string, len(Registry()))
	for _, prop := range Registry() {
		values[prop.Key] = prop.Default
	}

	stored, err := s.repo.ListProperties()
	if err != nil {
		return nil, err
	}

	for _, p := range stored {
		// Stale rows for properties removed from the registry are skipped.
		if _, ok := values[p.Key]; ok {
			values[p.Key] = p.Value
		}
	}

	return values, nil
}
