package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"edpharma/logger"
	"edpharma/models"
	"edpharma/store"
)

const minPasswordLength = 6

// Claims is the signed session payload. It is the only source of a caller's role.
type Claims struct {
	UserID string      `json:"userId"`
	Role   models.Role `json:"role"`
	Email  string      `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type Session struct {
	Principal models.Principal `json:"user"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

type Profile struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

type Identity struct {
	users       store.UserRepository
	revoked     store.TokenRevocationRepository
	secret      []byte
	ttl         time.Duration
	adminEmails map[string]bool
	logger      *logger.Logger
	now         func() time.Time
}

func NewIdentity(users store.UserRepository, revoked store.TokenRevocationRepository, secret string, ttl time.Duration, adminEmails []string, log *logger.Logger) *Identity {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		if e = models.NormalizeEmail(e); e != "" {
			admins[e] = true
		}
	}
	return &Identity{
		users:       users,
		revoked:     revoked,
		secret:      []byte(secret),
		ttl:         ttl,
		adminEmails: admins,
		logger:      log,
		now:         time.Now,
	}
}

func (s *Identity) CreateAccount(ctx context.Context, profile Profile, secret string) (Session, error) {
	profile.FirstName = strings.TrimSpace(profile.FirstName)
	profile.LastName = strings.TrimSpace(profile.LastName)
	profile.Email = models.NormalizeEmail(profile.Email)
	profile.Phone = strings.TrimSpace(profile.Phone)

	if fields := validateProfile(profile, secret); len(fields) > 0 {
		return Session{}, &ValidationError{Fields: fields}
	}

	exists, err := s.users.ExistsByEmailOrPhone(ctx, profile.Email, profile.Phone)
	if err != nil {
		return Session{}, storageError("check account", err)
	}
	if exists {
		return Session{}, ErrAccountExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	role := models.RoleUser
	if profile.Email != "" && s.adminEmails[profile.Email] {
		role = models.RoleAdmin
	}

	user := &models.User{
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		Email:        profile.Email,
		Phone:        profile.Phone,
		PasswordHash: string(hashed),
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return Session{}, ErrAccountExists
		}
		return Session{}, storageError("create account", err)
	}

	s.logger.Info("Account created", "user_id", user.ID, "role", user.Role)
	return s.issue(user.Principal())
}

func validateProfile(p Profile, secret string) map[string]string {
	fields := map[string]string{}
	if msg := nameRule("First name")(p.FirstName); msg != "" {
		fields["firstName"] = msg
	}
	if msg := nameRule("Last name")(p.LastName); msg != "" {
		fields["lastName"] = msg
	}
	switch {
	case p.Email == "" && p.Phone == "":
		fields["email"] = "Email or phone is required"
	case p.Email != "":
		if msg := emailRule(p.Email); msg != "" {
			fields["email"] = msg
		}
	}
	if msg := phoneRule(p.Phone); msg != "" {
		fields["phone"] = msg
	}
	if len(secret) < minPasswordLength {
		fields["password"] = fmt.Sprintf("Password must be at least %d characters", minPasswordLength)
	}
	return fields
}

// Authenticate accepts an email or a phone number as identifier. Every
// mismatch yields ErrInvalidCredentials so callers cannot probe for accounts.
func (s *Identity) Authenticate(ctx context.Context, identifier, secret string) (Session, error) {
	if strings.TrimSpace(identifier) == "" || secret == "" {
		return Session{}, ErrInvalidCredentials
	}

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, storageError("find user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(secret)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.issue(user.Principal())
}

func (s *Identity) issue(p models.Principal) (Session, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		UserID: p.ID,
		Role:   p.Role,
		Email:  p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{Principal: p, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *Identity) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.UserID == "" || claims.ExpiresAt == nil {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// Verify resolves a bearer token to its principal. Role and id come from the token alone.
func (s *Identity) Verify(ctx context.Context, token string) (models.Principal, error) {
	claims, err := s.parse(token)
	if err != nil {
		return models.Principal{}, err
	}

	if claims.ID != "" {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return models.Principal{}, storageError("check token", err)
		}
		if revoked {
			return models.Principal{}, ErrUnauthenticated
		}
	}

	return models.Principal{ID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

func (s *Identity) RequireRole(ctx context.Context, token string, role models.Role) (models.Principal, error) {
	p, err := s.Verify(ctx, token)
	if err != nil {
		return models.Principal{}, err
	}
	if p.Role != role {
		return models.Principal{}, ErrForbidden
	}
	return p, nil
}

// Logout revokes the token until it would have expired on its own.
func (s *Identity) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	if claims.ID == "" {
		return ErrUnauthenticated
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return storageError("revoke token", err)
	}
	s.logger.Info("Session revoked", "user_id", claims.UserID)
	return nil
}

// Me loads the full profile of the authenticated principal.
func (s *Identity) Me(ctx context.Context, p models.Principal) (models.UserSummary, error) {
	user, err := s.users.FindByID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.UserSummary{}, ErrNotFound
		}
		return models.UserSummary{}, storageError("find user", err)
	}
	return user.Summary(), nil
}

func (s *Identity) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, storageError("list users", err)
	}
	out := make([]models.UserSummary, len(users))
	for i, u := range users {
		out[i] = u.Summary()
	}
	return out, nil
}

func (s *Identity) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return 0, storageError("count users", err)
	}
	return n, nil
}
