package actor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cargotrace/pkg/domain"
	dErrors "cargotrace/pkg/domain-errors"
	"cargotrace/pkg/platform/sentinel"
	"cargotrace/pkg/requestcontext"
)

const defaultTokenTTL = 12 * time.Hour

// Service registers actors and authenticates them, issuing HS256 JWTs that
// carry the actor ID and role.
type Service struct {
	store      Store
	signingKey []byte
	tokenTTL   time.Duration
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) { s.tokenTTL = ttl }
}

func NewService(store Store, signingKey []byte, opts ...Option) *Service {
	s := &Service{
		store:      store,
		signingKey: signingKey,
		tokenTTL:   defaultTokenTTL,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterParams describes a new stakeholder account.
type RegisterParams struct {
	Name     string
	Email    string
	Role     domain.Role
	Password string
}

// Register creates an actor with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*Actor, error) {
	if params.Name == "" || params.Email == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name and email are required")
	}
	if !strings.Contains(params.Email, "@") {
		return nil, dErrors.New(dErrors.CodeValidation, "email is not valid")
	}
	if len(params.Password) < 8 {
		return nil, dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	if _, err := domain.ParseRole(string(params.Role)); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "hash password")
	}

	a := &Actor{
		ID:           domain.ActorID(uuid.New()),
		Name:         params.Name,
		Email:        strings.ToLower(params.Email),
		Role:         params.Role,
		PasswordHash: hash,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, a); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "email is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create actor")
	}

	s.logger.InfoContext(ctx, "actor registered", "actor_id", a.ID, "role", a.Role)
	return a, nil
}

// Login verifies credentials and returns a signed token. Failures are
// indistinguishable to the caller whether the email or the password was
// wrong.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Actor, error) {
	a, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "find actor")
	}
	if err := bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password)); err != nil {
		return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	now := requestcontext.Now(ctx)
	claims := jwt.MapClaims{
		"sub":  a.ID.String(),
		"role": string(a.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "sign token")
	}

	s.logger.InfoContext(ctx, "actor logged in", "actor_id", a.ID, "role", a.Role)
	return token, a, nil
}

// ValidateToken parses and verifies a bearer token, returning the actor
// identity it carries.
func (s *Service) ValidateToken(tokenString string) (domain.ActorID, domain.Role, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil || !token.Valid {
		return domain.ActorID{}, "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.ActorID{}, "", dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	roleStr, _ := claims["role"].(string)

	id, err := domain.ParseActorID(sub)
	if err != nil {
		return domain.ActorID{}, "", dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	role, err := domain.ParseRole(roleStr)
	if err != nil {
		return domain.ActorID{}, "", dErrors.New(dErrors.CodeUnauthorized, "invalid token role")
	}
	return id, role, nil
}
