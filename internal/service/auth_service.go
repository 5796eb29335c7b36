package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"task_api/internal/domain"
	"task_api/internal/repository"

	"github.com/google/uuid"
)

// UserStore is the credential store. Implementations report a missing user
// as repository.ErrNotFound and an email collision as repository.ErrDuplicate.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=50,nonul"`
	Email    string `json:"email" validate:"required,max=254,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,max=254,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileInput struct {
	Name  *string `json:"name" validate:"omitnil,min=1,max=50,nonul"`
	Email *string `json:"email" validate:"omitnil,max=254,email"`
}

// Session is what a successful register or login hands back to the caller.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	users  UserStore
	hasher *PasswordHasher
	tokens *TokenCodec
}

func NewAuthService(users UserStore, hasher *PasswordHasher, tokens *TokenCodec) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// Register creates an account and opens a session for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if len(in.Password) > MaxPasswordBytes {
		return nil, invalid("Password", "Password must be at most 72 bytes")
	}

	_, err := s.users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// lost the race against a concurrent registration
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.openSession(user)
}

// Login checks credentials. Unknown email and wrong password both return
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = NormalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Burn(in.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.openSession(user)
}

// Authenticate resolves a session token to its user. Every rejection wraps
// ErrUnauthorized; any other error is a store failure.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrUnauthorized, ErrUserNotFound)
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}
	return user, nil
}

// UpdateProfile changes name and/or email of the given user.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*domain.User, error) {
	trimPtr(in.Name)
	if in.Email != nil {
		e := NormalizeEmail(*in.Email)
		in.Email = &e
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if in.Email != nil && *in.Email != user.Email {
		other, err := s.users.GetByEmail(ctx, *in.Email)
		switch {
		case err == nil && other.ID != user.ID:
			return nil, ErrEmailTaken
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("lookup email: %w", err)
		}
		user.Email = *in.Email
	}
	if in.Name != nil {
		user.Name = *in.Name
	}

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// UserIDFromToken verifies a token without touching the store.
func (s *AuthService) UserIDFromToken(token string) (uuid.UUID, error) {
	return s.tokens.Verify(token)
}

func (s *AuthService) openSession(user *domain.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
