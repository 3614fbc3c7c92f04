package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sheisgracious/mindwell/internal/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("account not found")
)

type Service struct {
	repo     Repository
	location *time.Location
}

func NewService(repo Repository, location *time.Location) *Service {
	return &Service{
		repo:     repo,
		location: location,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (Account, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return Account{}, err
	}

	now := time.Now().In(s.location)
	account := Account{
		ID:           primitive.NewObjectID().Hex(),
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, account); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Account{}, ErrUsernameTaken
		}
		return Account{}, err
	}
	return account, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (Account, error) {
	account, err := s.repo.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, err
	}
	if err := auth.ComparePassword(account.PasswordHash, req.Password); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return account, nil
}

func (s *Service) Get(ctx context.Context, id string) (Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	return account, nil
}
