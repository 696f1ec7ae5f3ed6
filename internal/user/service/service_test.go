package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"sanita/internal/token"
	"sanita/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users  map[string]*user.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*user.User{}, nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	u.ID = r.nextID
	r.nextID++
	r.users[u.Email] = u
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id int64, name string) error {
	for _, u := range r.users {
		if u.ID == id {
			u.Name = name
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	for _, u := range r.users {
		if u.ID == id {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return sql.ErrNoRows
}

type fakeTokenRepo struct {
	tokens map[string]*token.Token
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: map[string]*token.Token{}}
}

func (r *fakeTokenRepo) Save(_ context.Context, t *token.Token) error {
	r.tokens[t.Token] = t
	return nil
}

func (r *fakeTokenRepo) GetByToken(_ context.Context, tokenStr string) (*token.Token, error) {
	t, ok := r.tokens[tokenStr]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return t, nil
}

func (r *fakeTokenRepo) DeleteByToken(_ context.Context, tokenStr string) error {
	delete(r.tokens, tokenStr)
	return nil
}

func (r *fakeTokenRepo) DeleteByUser(_ context.Context, userID int64) error {
	for key, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, key)
		}
	}
	return nil
}

func TestRegisterAndLogin(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), newFakeTokenRepo())

	u, err := svc.Register(context.Background(), "a@example.com", "secret123", "An")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.NotEqual(t, "secret123", u.PasswordHash)

	logged, refresh, err := svc.Login(context.Background(), "a@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)
	assert.NotEmpty(t, refresh.Token)

	_, _, err = svc.Login(context.Background(), "a@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCreds)

	_, _, err = svc.Login(context.Background(), "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCreds)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), newFakeTokenRepo())

	_, err := svc.Register(context.Background(), "a@example.com", "secret123", "An")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "a@example.com", "other456", "Bình")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRefreshRotatesToken(t *testing.T) {
	tokens := newFakeTokenRepo()
	svc := NewUserService(newFakeUserRepo(), tokens)

	_, err := svc.Register(context.Background(), "a@example.com", "secret123", "An")
	require.NoError(t, err)
	_, refresh, err := svc.Login(context.Background(), "a@example.com", "secret123")
	require.NoError(t, err)

	u, rotated, err := svc.Refresh(context.Background(), refresh.Token)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)
	assert.NotEqual(t, refresh.Token, rotated.Token)

	// The presented token was revoked by the rotation.
	_, _, err = svc.Refresh(context.Background(), refresh.Token)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestRefreshExpiredToken(t *testing.T) {
	tokens := newFakeTokenRepo()
	svc := NewUserService(newFakeUserRepo(), tokens)

	u, err := svc.Register(context.Background(), "a@example.com", "secret123", "An")
	require.NoError(t, err)

	stale := &token.Token{
		UserID:    u.ID,
		Token:     "stale",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, tokens.Save(context.Background(), stale))

	_, _, err = svc.Refresh(context.Background(), "stale")
	assert.ErrorIs(t, err, token.ErrExpiredToken)

	// Expired tokens are removed on use.
	_, _, err = svc.Refresh(context.Background(), "stale")
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestUpdateProfile(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), newFakeTokenRepo())

	u, err := svc.Register(context.Background(), "a@example.com", "secret123", "An")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(context.Background(), u.ID, "Nguyễn Văn An")
	require.NoError(t, err)
	assert.Equal(t, "Nguyễn Văn An", updated.Name)

	_, err = svc.UpdateProfile(context.Background(), 404, "x")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	tokens := newFakeTokenRepo()
	svc := NewUserService(newFakeUserRepo(), tokens)

	u, err := svc.Register(context.Background(), "a@example.com", "secret123", "An")
	require.NoError(t, err)
	_, refresh, err := svc.Login(context.Background(), "a@example.com", "secret123")
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), u.ID, "wrong", "newpass456")
	assert.ErrorIs(t, err, ErrInvalidCreds)

	require.NoError(t, svc.ChangePassword(context.Background(), u.ID, "secret123", "newpass456"))

	// Sessions issued before the change cannot renew themselves.
	_, _, err = svc.Refresh(context.Background(), refresh.Token)
	assert.ErrorIs(t, err, token.ErrInvalidToken)

	_, _, err = svc.Login(context.Background(), "a@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCreds)
	_, _, err = svc.Login(context.Background(), "a@example.com", "newpass456")
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), 404, "newpass456", "whatever789")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
