package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// DefaultSessionTTL is the fixed lifetime of an admin session.
const DefaultSessionTTL = 8 * time.Hour

const adminSubject = "admin"

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AuthService guards administrative operations behind a single admin password.
// Sessions are signed tokens; logout revokes a token until it would have
// expired anyway.
type AuthService struct {
	passwordHash   string
	verifyPassword PasswordVerifier
	secret         []byte
	sessionTTL     time.Duration
	idGenerator    func() string
	now            func() time.Time
	revoked        *cache.Cache
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService for the given argon2id password hash
// and signing secret.
func NewAuthService(passwordHash string, secret []byte, verify PasswordVerifier, idGenerator func() string, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(passwordHash, secret, verify, idGenerator, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(passwordHash string, secret []byte, verify PasswordVerifier, idGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyPassword
	}
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &AuthService{
		passwordHash:   passwordHash,
		verifyPassword: verify,
		secret:         secret,
		sessionTTL:     sessionTTL,
		idGenerator:    idGenerator,
		now:            now,
		revoked:        cache.New(sessionTTL, 10*time.Minute),
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Login checks the admin password and issues a new session.
func (s *AuthService) Login(ctx context.Context, password string) (session Session, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Login")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "admin login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("expires_at", session.ExpiresAt).InfoContext(ctx, "admin session issued")
	}()

	if password == "" || s.passwordHash == "" {
		err = ErrInvalidCredentials
		return
	}
	if verifyErr := s.verifyPassword(s.passwordHash, password); verifyErr != nil {
		if !errors.Is(verifyErr, ErrInvalidCredentials) {
			logger.WarnContext(ctx, "admin password hash rejected", "cause", verifyErr)
		}
		err = ErrInvalidCredentials
		return
	}

	issued := s.now().Truncate(jwt.TimePrecision)
	expires := issued.Add(s.sessionTTL)
	claims := jwt.RegisteredClaims{
		ID:        s.idGenerator(),
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	var token string
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		err = fmt.Errorf("sign session: %w", err)
		return
	}

	session = Session{Token: token, IssuedAt: issued, ExpiresAt: expires}
	return
}

// ValidateSession reports whether token is a live admin session.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (session Session, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	token = strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "ValidateSession", "token_provided", token != "")
	defer func() {
		if err != nil {
			logger.DebugContext(ctx, "session rejected", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	var claims *jwt.RegisteredClaims
	claims, err = s.parse(token)
	if err != nil {
		return
	}
	if _, revoked := s.revoked.Get(claims.ID); revoked {
		err = ErrUnauthenticated
		return
	}

	session = Session{
		Token:     token,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	return
}

// Logout revokes token. Expired tokens need no revocation and succeed.
func (s *AuthService) Logout(ctx context.Context, token string) (err error) {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}

	token = strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "Logout", "token_provided", token != "")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "admin session revoked")
	}()

	claims, err := s.parse(token)
	if errors.Is(err, ErrSessionExpired) {
		return nil
	}
	if err != nil {
		return err
	}

	remaining := claims.ExpiresAt.Time.Sub(s.now())
	if remaining <= 0 {
		return nil
	}
	s.revoked.Set(claims.ID, struct{}{}, remaining)
	return nil
}

func (s *AuthService) parse(token string) (*jwt.RegisteredClaims, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithSubject(adminSubject),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrSessionExpired
	case err != nil || !parsed.Valid:
		return nil, ErrUnauthenticated
	case claims.ID == "" || claims.IssuedAt == nil:
		return nil, ErrUnauthenticated
	}
	return claims, nil
}
