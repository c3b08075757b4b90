package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment
// variables, matching the BSKY_USERNAME / BSKY_APP_TOKEN convention
// of a .env file.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve gets credentials from environment variables
func (e *EnvironmentStore) Retrieve(identifier string) (*Account, error) {
	envIdentifier := os.Getenv("BSKY_USERNAME")
	appPassword := os.Getenv("BSKY_APP_TOKEN")

	if envIdentifier == "" || appPassword == "" {
		return nil, ErrCredentialsNotFound
	}
	if identifier != "" && identifier != envIdentifier {
		return nil, ErrCredentialsNotFound
	}

	return &Account{
		Identifier:   envIdentifier,
		AppPassword:  appPassword,
		LastModified: time.Now(),
	}, nil
}

// List returns a single account if environment variables are set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(identifier string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(identifier string) bool {
	_, err := e.Retrieve(identifier)
	return err == nil
}
