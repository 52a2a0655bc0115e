package domain

import "time"

// APIKey is a bearer credential bound to one user. Only the SHA-256 hash of
// the token is kept.
type APIKey struct {
	ID        string
	UserID    string
	Name      string
	KeyHash   string
	CreatedAt time.Time
	RevokedAt *time.Time
}

func NewAPIKey(id, userID, name, keyHash string, createdAt time.Time, revokedAt *time.Time) *APIKey {
	return &APIKey{ID: id, UserID: userID, Name: name, KeyHash: keyHash, CreatedAt: createdAt, RevokedAt: revokedAt}
}

func (a *APIKey) IsRevoked() bool { return a.RevokedAt != nil }

// Status is "active" or "revoked", as shown by the admin commands.
func (a *APIKey) Status() string {
	if a.IsRevoked() {
		return "revoked"
	}
	return "active"
}

// ValidateAPIKey checks the fields a stored key cannot lack.
func ValidateAPIKey(a *APIKey) error {
	if a == nil {
		return errNil("api key")
	}
	return requireFields("api key",
		present("ID", a.ID),
		present("UserID", a.UserID),
		present("Name", a.Name),
		present("KeyHash", a.KeyHash),
	)
}
