package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/n0roo/vibespinner/internal/db"
)

// Local is an identity provider persisted in the local database
type Local struct {
	db        *db.DB
	observers []ChangeFunc
}

// NewLocal creates a local identity provider
func NewLocal(database *db.DB) *Local {
	return &Local{db: database}
}

// SignIn authenticates an existing user
func (l *Local) SignIn(email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	var userID, displayName, avatarURL, hash, salt string
	err := l.db.QueryRow(`
		SELECT id, display_name, avatar_url, password_hash, salt
		FROM users WHERE email = ?
	`, email).Scan(&userID, &displayName, &avatarURL, &hash, &salt)
	if err == sql.ErrNoRows {
		return Session{}, ErrUnknownUser
	}
	if err != nil {
		return Session{}, fmt.Errorf("look up user: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(hashPassword(password, salt)), []byte(hash)) != 1 {
		return Session{}, ErrInvalidCredentials
	}

	return l.openSession(userID, displayName, email, avatarURL)
}

// SignUp registers a new user and signs them in
func (l *Local) SignUp(email, password, displayName string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}
	if displayName == "" {
		displayName = email[:strings.Index(email+"@", "@")]
	}

	salt := newSalt()
	userID := uuid.New().String()
	avatarURL := fallbackAvatar(displayName)

	_, err := l.db.Exec(`
		INSERT INTO users (id, email, display_name, avatar_url, password_hash, salt)
		VALUES (?, ?, ?, ?, ?, ?)
	`, userID, email, displayName, avatarURL, hashPassword(password, salt), salt)
	if err != nil {
		return Session{}, fmt.Errorf("register user: %w", err)
	}

	return l.openSession(userID, displayName, email, avatarURL)
}

// SignOut ends the open session
func (l *Local) SignOut() error {
	res, err := l.db.Exec(`
		UPDATE auth_sessions SET ended_at = CURRENT_TIMESTAMP WHERE ended_at IS NULL
	`)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotSignedIn
	}

	for _, fn := range l.observers {
		fn(Session{}, false)
	}
	return nil
}

// Current returns the open session, if any
func (l *Local) Current() (Session, bool, error) {
	var s Session
	err := l.db.QueryRow(`
		SELECT a.id, u.id, u.display_name, u.email, u.avatar_url
		FROM auth_sessions a JOIN users u ON u.id = a.user_id
		WHERE a.ended_at IS NULL
		ORDER BY a.created_at DESC LIMIT 1
	`).Scan(&s.ID, &s.UserID, &s.DisplayName, &s.Email, &s.AvatarURL)
	if err == sql.ErrNoRows {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("load session: %w", err)
	}
	return s, true, nil
}

// OnChange registers a session-change observer
func (l *Local) OnChange(fn ChangeFunc) {
	l.observers = append(l.observers, fn)
}

// openSession replaces any open session with a fresh one
func (l *Local) openSession(userID, displayName, email, avatarURL string) (Session, error) {
	// One open session at a time
	if _, err := l.db.Exec(`UPDATE auth_sessions SET ended_at = CURRENT_TIMESTAMP WHERE ended_at IS NULL`); err != nil {
		return Session{}, fmt.Errorf("close previous session: %w", err)
	}

	s := Session{
		ID:          uuid.New().String(),
		UserID:      userID,
		DisplayName: displayName,
		Email:       email,
		AvatarURL:   avatarURL,
	}
	_, err := l.db.Exec(`
		INSERT INTO auth_sessions (id, user_id) VALUES (?, ?)
	`, s.ID, userID)
	if err != nil {
		return Session{}, fmt.Errorf("open session: %w", err)
	}

	for _, fn := range l.observers {
		fn(s, true)
	}
	return s, nil
}

func hashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(salt + ":" + password))
	return hex.EncodeToString(sum[:])
}

func newSalt() string {
	buf := make([]byte, 16)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

// fallbackAvatar mirrors the generated-initials avatar the web UI used
func fallbackAvatar(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=violet&color=white"
}
