package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements Store using environment variables. It is
// read-only and mainly serves CI and containers.
type EnvironmentStore struct{}

// NewEnvironmentStore creates an environment-based credential store.
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables.
func (e *EnvironmentStore) Store(creds *Credentials) error {
	return ErrStoreUnavailable
}

// Retrieve gets credentials from environment variables. When a username
// is given it must match the environment account.
func (e *EnvironmentStore) Retrieve(username string) (*Credentials, error) {
	envUsername := os.Getenv("DASCRAPER_USERNAME")
	envPassword := os.Getenv("DASCRAPER_PASSWORD")

	if envUsername == "" || envPassword == "" {
		return nil, ErrCredentialsNotFound
	}
	if username != "" && username != envUsername {
		return nil, ErrCredentialsNotFound
	}

	return &Credentials{
		Username:     envUsername,
		Password:     envPassword,
		LastModified: time.Now(),
	}, nil
}

// List returns the environment account when it is set.
func (e *EnvironmentStore) List() ([]*Credentials, error) {
	creds, err := e.Retrieve("")
	if err != nil {
		return []*Credentials{}, nil
	}
	return []*Credentials{creds}, nil
}

// Delete is not supported for environment variables.
func (e *EnvironmentStore) Delete(username string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist.
func (e *EnvironmentStore) Exists(username string) bool {
	_, err := e.Retrieve(username)
	return err == nil
}
