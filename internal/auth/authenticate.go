package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"

	"yatube/internal/models"
	"yatube/internal/store"
)

const (
	sessionName      = "yatube_session"
	sessionUserIDKey = "user_id"
)

// AuthenticationFailedError means credentials were sent but are not valid.
type AuthenticationFailedError struct {
	Detail string
}

func (e *AuthenticationFailedError) Error() string { return e.Detail }

// UserLookup is the part of the store the authenticator needs.
type UserLookup interface {
	UserByID(ctx context.Context, id uint) (*models.User, error)
	UserByToken(ctx context.Context, key string) (*models.User, error)
}

// Authenticator resolves request credentials to an Identity. It accepts
// "Authorization: Token <key>", "Authorization: Bearer <jwt>" and the
// session cookie, in that order.
type Authenticator struct {
	users    UserLookup
	jwt      *JWTIssuer
	sessions *sessions.CookieStore
}

func NewAuthenticator(users UserLookup, issuer *JWTIssuer, secret string, sessionMaxAge time.Duration) *Authenticator {
	cookies := sessions.NewCookieStore([]byte(secret))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	return &Authenticator{users: users, jwt: issuer, sessions: cookies}
}

// JWT returns the issuer used for bearer tokens.
func (a *Authenticator) JWT() *JWTIssuer { return a.jwt }

// Authenticate returns the request's identity, nil for an anonymous
// request, or an *AuthenticationFailedError for bad credentials.
func (a *Authenticator) Authenticate(r *http.Request) (*Identity, error) {
	ctx := r.Context()
	scheme, credentials, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if found {
		credentials = strings.TrimSpace(credentials)
		switch strings.ToLower(scheme) {
		case "token":
			user, err := a.users.UserByToken(ctx, credentials)
			if err != nil {
				return nil, a.lookupFailure(err, "Invalid token.")
			}
			return identityOf(user), nil
		case "bearer", "jwt":
			userID, err := a.jwt.UserID(credentials)
			if err != nil {
				return nil, &AuthenticationFailedError{Detail: err.Error()}
			}
			user, err := a.users.UserByID(ctx, userID)
			if err != nil {
				return nil, a.lookupFailure(err, "User not found")
			}
			return identityOf(user), nil
		}
	}

	userID, ok := a.sessionUserID(r)
	if !ok {
		return nil, nil
	}
	user, err := a.users.UserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		// Stale session for a deleted user; treat as anonymous.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return identityOf(user), nil
}

// Login binds the session cookie to userID.
func (a *Authenticator) Login(w http.ResponseWriter, r *http.Request, userID uint) error {
	session, _ := a.sessions.Get(r, sessionName)
	session.Values[sessionUserIDKey] = userID
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("auth: save session: %w", err)
	}
	return nil
}

// Logout expires the session cookie.
func (a *Authenticator) Logout(w http.ResponseWriter, r *http.Request) error {
	session, _ := a.sessions.Get(r, sessionName)
	delete(session.Values, sessionUserIDKey)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("auth: clear session: %w", err)
	}
	return nil
}

func (a *Authenticator) sessionUserID(r *http.Request) (uint, bool) {
	session, err := a.sessions.Get(r, sessionName)
	if err != nil {
		return 0, false
	}
	userID, ok := session.Values[sessionUserIDKey].(uint)
	return userID, ok
}

func (a *Authenticator) lookupFailure(err error, detail string) error {
	if errors.Is(err, store.ErrNotFound) {
		return &AuthenticationFailedError{Detail: detail}
	}
	return err
}

func identityOf(user *models.User) *Identity {
	return &Identity{UserID: user.ID, Username: user.Username}
}
