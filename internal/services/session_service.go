package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/config"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/dto"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/models"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidState    = errors.New("invalid or expired login state")
	ErrNotSignedIn     = errors.New("not signed in")
)

const (
	tokenTypeSession = "session"
	tokenTypeState   = "oauth_state"
)

type sessionClaims struct {
	jwt.RegisteredClaims
	Type string `json:"typ"`
}

type SessionService struct {
	sessions SessionStore
	identity IdentityProvider
	cipher   *TokenCipher
	cfg      *config.Config
	now      func() time.Time
}

func NewSessionService(sessions SessionStore, identity IdentityProvider, cipher *TokenCipher, cfg *config.Config) *SessionService {
	return &SessionService{
		sessions: sessions,
		identity: identity,
		cipher:   cipher,
		cfg:      cfg,
		now:      time.Now,
	}
}

// BeginLogin returns a consent URL for a brand new session.
func (s *SessionService) BeginLogin() (string, error) {
	state, err := s.signToken(tokenTypeState, uuid.Nil, s.cfg.OAuthStateExpiry)
	if err != nil {
		return "", err
	}
	return s.identity.AuthURL(state, true), nil
}

// CompleteLogin handles the consent callback and always opens a new
// session, so a consent URL handed to someone else cannot bind their Google
// account to the sender's session. The token is persisted even when the
// profile fetch fails; the next Restore retries the fetch.
func (s *SessionService) CompleteLogin(ctx context.Context, code, state string) (*dto.LoginResponse, error) {
	if _, err := s.parseToken(state, tokenTypeState); err != nil {
		return nil, ErrInvalidState
	}

	token, err := s.identity.Exchange(ctx, code)
	if err != nil {
		slog.Error("google token exchange failed", "action", "login", "error", err)
		return nil, err
	}

	sealed, err := s.cipher.Seal(token)
	if err != nil {
		return nil, err
	}

	session := &models.Session{ID: uuid.New(), GoogleAccessToken: sealed}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	profile := s.refreshProfile(ctx, session.ID, token)

	sessionToken, err := s.signToken(tokenTypeSession, session.ID, s.cfg.JWTSessionExpiry)
	if err != nil {
		return nil, err
	}

	slog.Info("google sign-in completed", "session_id", session.ID.String(), "profile", profile != nil)
	return &dto.LoginResponse{
		SessionToken: sessionToken,
		SignedIn:     profile != nil,
		User:         profile,
	}, nil
}

// Restore is the first-load check: signed in only when both the profile and
// the token are present.
func (s *SessionService) Restore(ctx context.Context, sessionID uuid.UUID) (*dto.SessionState, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	token, err := s.cipher.Open(session.GoogleAccessToken)
	if err != nil {
		slog.Error("stored access token unreadable", "session_id", sessionID.String(), "error", err)
		return s.signedOut()
	}
	if token == "" {
		return s.signedOut()
	}

	profile := decodeProfile(session.GoogleUser)
	if profile == nil {
		profile = s.refreshProfile(ctx, sessionID, token)
	}
	if profile == nil {
		return s.signedOut()
	}

	return &dto.SessionState{SignedIn: true, User: profile}, nil
}

// SignOut forgets the profile and token and prepares a fresh consent request.
// Consenting again opens a new session. The user stays signed in to Google
// itself.
func (s *SessionService) SignOut(ctx context.Context, sessionID uuid.UUID) (*dto.SessionState, error) {
	if err := s.sessions.Clear(ctx, sessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	slog.Info("session signed out", "session_id", sessionID.String())
	return s.signedOut()
}

// Credentials returns the profile and raw access token of a signed-in session.
func (s *SessionService) Credentials(ctx context.Context, sessionID uuid.UUID) (*dto.UserProfile, string, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}

	profile := decodeProfile(session.GoogleUser)
	token, err := s.cipher.Open(session.GoogleAccessToken)
	if err != nil || token == "" || profile == nil {
		return nil, "", ErrNotSignedIn
	}
	return profile, token, nil
}

// Profile returns the stored profile without touching Google.
func (s *SessionService) Profile(ctx context.Context, sessionID uuid.UUID) (*dto.UserProfile, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if profile := decodeProfile(session.GoogleUser); profile != nil {
		return profile, nil
	}
	return nil, ErrNotSignedIn
}

// SessionIDFromToken validates an application session JWT.
func (s *SessionService) SessionIDFromToken(token string) (uuid.UUID, error) {
	return s.parseToken(token, tokenTypeSession)
}

// refreshProfile fetches and stores the profile. Failures are logged and
// yield nil, which callers render as the signed-out view.
func (s *SessionService) refreshProfile(ctx context.Context, sessionID uuid.UUID, token string) *dto.UserProfile {
	profile, err := s.identity.FetchProfile(ctx, token)
	if err != nil {
		slog.Error("failed to fetch user info", "session_id", sessionID.String(), "action", "profile_fetch", "error", err)
		return nil
	}

	raw, err := json.Marshal(profile)
	if err != nil {
		slog.Error("failed to encode user info", "session_id", sessionID.String(), "error", err)
		return nil
	}
	if err := s.sessions.SaveProfile(ctx, sessionID, datatypes.JSON(raw)); err != nil {
		slog.Error("failed to store user info", "session_id", sessionID.String(), "error", err)
		return nil
	}
	return profile
}

func (s *SessionService) signedOut() (*dto.SessionState, error) {
	state, err := s.signToken(tokenTypeState, uuid.Nil, s.cfg.OAuthStateExpiry)
	if err != nil {
		return nil, err
	}
	return &dto.SessionState{
		SignedIn: false,
		LoginURL: s.identity.AuthURL(state, false),
	}, nil
}

func (s *SessionService) load(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *SessionService) signToken(typ string, sessionID uuid.UUID, ttl time.Duration) (string, error) {
	now := s.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Type: typ,
	}
	if sessionID != uuid.Nil {
		claims.Subject = sessionID.String()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", typ, err)
	}
	return signed, nil
}

// parseToken verifies a token of the given type and returns its subject.
// Session tokens must name a session; state tokens must not.
func (s *SessionService) parseToken(raw, typ string) (uuid.UUID, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return uuid.Nil, err
	}
	if claims.Type != typ {
		return uuid.Nil, fmt.Errorf("unexpected token type %q", claims.Type)
	}
	if typ == tokenTypeState {
		if claims.Subject != "" {
			return uuid.Nil, errors.New("state token bound to a session")
		}
		return uuid.Nil, nil
	}
	if claims.Subject == "" {
		return uuid.Nil, errors.New("session token without subject")
	}
	return uuid.Parse(claims.Subject)
}

func decodeProfile(raw datatypes.JSON) *dto.UserProfile {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var profile dto.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil
	}
	return &profile
}
