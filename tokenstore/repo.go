package tokenstore

// TokenPair is the unit the store persists. Access and refresh tokens are
// opaque strings written, read, and cleared together so the session can never
// recover into a partial credential state.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Empty reports whether no credentials are held.
func (p TokenPair) Empty() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}

// Repo is the durable client key-value store holding the current token pair
// across process restarts. No validation is performed; it is consulted
// exactly once, at session initialization, as the single source of truth.
type Repo interface {
	Save(pair TokenPair) error
	Load() (TokenPair, error)
	Clear() error
}
