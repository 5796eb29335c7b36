package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"task_api/internal/domain"
	"task_api/internal/repository"
	"task_api/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuth(t *testing.T) (*AuthService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return NewAuthService(store.Users(), NewPasswordHasher(bcrypt.MinCost), NewTokenCodec("secret")), store
}

func TestRegister(t *testing.T) {
	svc, store := newAuth(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, RegisterInput{Name: "  Ann ", Email: " Ann@Example.COM ", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "Ann", sess.User.Name)
	assert.Equal(t, "ann@example.com", sess.User.Email)
	assert.NotEmpty(t, sess.Token)

	stored, err := store.Users().GetByID(ctx, sess.User.ID)
	require.NoError(t, err)
	assert.NotContains(t, stored.PasswordHash, "secret123")

	_, err = svc.Register(ctx, RegisterInput{Name: "Other", Email: "ANN@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_ValidationOrder(t *testing.T) {
	svc, _ := newAuth(t)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "bad", Password: "1"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Name", verr.Field, "first failing field wins")
	assert.Equal(t, "Name is required", verr.Message)

	_, err = svc.Register(context.Background(), RegisterInput{Name: string(make([]byte, 51)), Email: "a@b.co", Password: "secret"})
	require.ErrorAs(t, err, &verr)
}

func TestRegister_RejectsUnstorableValues(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	long := strings.Repeat("a", 60) + "@" + strings.Repeat("abcdefghi.", 25) + "com"
	_, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: long, Password: "secret123"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Email", verr.Field)
	assert.Equal(t, "Email must be at most 254 characters", verr.Message)

	_, err = svc.Register(ctx, RegisterInput{Name: "A\x00nn", Email: "ann@example.com", Password: "secret123"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Name", verr.Field)

	sess, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret123"})
	require.NoError(t, err)
	_, err = svc.UpdateProfile(ctx, sess.User.ID, ProfileInput{Email: &long})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Email", verr.Field)
}

// racingUsers reports no existing email on lookup but rejects the insert, as
// the unique index does when two registrations race.
type racingUsers struct {
	UserStore
}

func (racingUsers) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, repository.ErrNotFound
}

func (racingUsers) Create(context.Context, *domain.User) error { return repository.ErrDuplicate }

func TestRegister_LostRaceIsConflict(t *testing.T) {
	svc := NewAuthService(racingUsers{}, NewPasswordHasher(bcrypt.MinCost), NewTokenCodec("s"))
	_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	reg, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret123"})
	require.NoError(t, err)

	sess, err := svc.Login(ctx, LoginInput{Email: "Ann@example.com", Password: "secret123"})
	require.NoError(t, err)
	id, err := svc.UserIDFromToken(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, id)

	_, wrongPass := svc.Login(ctx, LoginInput{Email: "ann@example.com", Password: "nope-nope"})
	_, noUser := svc.Login(ctx, LoginInput{Email: "bob@example.com", Password: "nope-nope"})
	assert.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, noUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), noUser.Error())
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	reg, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret123"})
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, user.ID)

	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, ErrTokenMalformed)

	ghost, _, err := NewTokenCodec("secret").Issue(uuid.New())
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, ghost)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

type brokenUsers struct{ UserStore }

func (brokenUsers) GetByID(context.Context, uuid.UUID) (*domain.User, error) {
	return nil, errors.New("connection reset")
}

func TestAuthenticate_StoreFailureIsNotUnauthorized(t *testing.T) {
	codec := NewTokenCodec("secret")
	svc := NewAuthService(brokenUsers{}, NewPasswordHasher(bcrypt.MinCost), codec)
	token, _, err := codec.Issue(uuid.New())
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	ann, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret123"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "secret123"})
	require.NoError(t, err)

	strp := func(s string) *string { return &s }

	_, err = svc.UpdateProfile(ctx, ann.User.ID, ProfileInput{Email: strp("BOB@example.com")})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.UpdateProfile(ctx, ann.User.ID, ProfileInput{Name: strp("   ")})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	u, err := svc.UpdateProfile(ctx, ann.User.ID, ProfileInput{Email: strp("ANN@example.com")})
	require.NoError(t, err, "own email in another case is not a conflict")
	assert.Equal(t, "ann@example.com", u.Email)

	u, err = svc.UpdateProfile(ctx, ann.User.ID, ProfileInput{Name: strp("Annie"), Email: strp("annie@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "Annie", u.Name)
	assert.Equal(t, "annie@example.com", u.Email)

	_, err = svc.UpdateProfile(ctx, uuid.New(), ProfileInput{Name: strp("x")})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
