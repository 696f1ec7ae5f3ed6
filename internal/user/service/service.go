package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sanita/internal/token"
	"sanita/internal/user"
	"sanita/pkg/hash"
)

var (
	ErrUserExists   = errors.New("email đã được đăng ký")
	ErrInvalidCreds = errors.New("email hoặc mật khẩu không đúng")
	ErrUserNotFound = errors.New("user not found")
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
	UpdateProfile(ctx context.Context, id int64, name string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type TokenRepository interface {
	Save(ctx context.Context, t *token.Token) error
	GetByToken(ctx context.Context, tokenStr string) (*token.Token, error)
	DeleteByToken(ctx context.Context, tokenStr string) error
	DeleteByUser(ctx context.Context, userID int64) error
}

type UserService struct {
	repo   UserRepository
	tokens TokenRepository
}

func NewUserService(repo UserRepository, tokens TokenRepository) *UserService {
	return &UserService{repo: repo, tokens: tokens}
}

func (s *UserService) Register(ctx context.Context, email, password, name string) (*user.User, error) {
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	}

	hashed, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		Email:        email,
		PasswordHash: hashed,
		Name:         name,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// Login verifies credentials and issues a fresh refresh token.
func (s *UserService) Login(ctx context.Context, email, password string) (*user.User, *token.Token, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, ErrInvalidCreds
	}
	if !hash.CheckPassword(u.PasswordHash, password) {
		return nil, nil, ErrInvalidCreds
	}

	refresh, err := s.issueRefresh(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}

	return u, refresh, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// one is issued, so a stolen token stops working after its first reuse.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*user.User, *token.Token, error) {
	t, err := s.tokens.GetByToken(ctx, refreshToken)
	if err != nil {
		return nil, nil, token.ErrInvalidToken
	}

	if err := s.tokens.DeleteByToken(ctx, refreshToken); err != nil {
		return nil, nil, err
	}
	if t.Expired(time.Now()) {
		return nil, nil, token.ErrExpiredToken
	}

	u, err := s.repo.GetByID(ctx, t.UserID)
	if err != nil {
		return nil, nil, token.ErrInvalidToken
	}

	refresh, err := s.issueRefresh(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}

	return u, refresh, nil
}

func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.DeleteByToken(ctx, refreshToken)
}

func (s *UserService) Get(ctx context.Context, id int64) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *UserService) UpdateProfile(ctx context.Context, id int64, name string) (*user.User, error) {
	if err := s.repo.UpdateProfile(ctx, id, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// ChangePassword verifies the current password before storing the new hash
// and revokes every refresh token for the user, so sessions opened before
// the change cannot renew themselves.
func (s *UserService) ChangePassword(ctx context.Context, id int64, current, next string) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	if !hash.CheckPassword(u.PasswordHash, current) {
		return ErrInvalidCreds
	}

	hashed, err := hash.HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, id, hashed); err != nil {
		return err
	}

	return s.tokens.DeleteByUser(ctx, id)
}

func (s *UserService) issueRefresh(ctx context.Context, userID int64) (*token.Token, error) {
	refresh, err := token.NewRefreshToken(userID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Save(ctx, refresh); err != nil {
		return nil, err
	}
	return refresh, nil
}
