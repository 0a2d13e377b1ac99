// Package auth defines the identity collaborator. The core only ever
// sees Session values; the concrete provider is swappable.
package auth

import "errors"

// Auth failure kinds, all recoverable by retry
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownUser        = errors.New("unknown user")
	ErrNotSignedIn        = errors.New("not signed in")
)

// Session identifies the signed-in user
type Session struct {
	ID          string
	UserID      string
	DisplayName string
	Email       string
	AvatarURL   string
}

// ChangeFunc observes session changes; signedIn is false on sign-out
type ChangeFunc func(s Session, signedIn bool)

// Provider is the identity collaborator
type Provider interface {
	// SignIn authenticates with email and password. Unknown users fail
	// with ErrUnknownUser so callers can fall back to sign-up.
	SignIn(email, password string) (Session, error)

	// SignUp registers a new user and signs them in
	SignUp(email, password, displayName string) (Session, error)

	// SignOut ends the current session
	SignOut() error

	// Current returns the open session, if any
	Current() (Session, bool, error)

	// OnChange registers a session-change observer
	OnChange(fn ChangeFunc)
}

// SignInOrSignUp signs in, registering the user first when unknown
func SignInOrSignUp(p Provider, email, password string) (Session, error) {
	s, err := p.SignIn(email, password)
	if errors.Is(err, ErrUnknownUser) {
		return p.SignUp(email, password, "")
	}
	return s, err
}
