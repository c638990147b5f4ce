package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"eclat-backend/internal/auth"
	"eclat-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("user not found")
)

// EnsureClientFunc links a registration to the studio's client book and
// returns the client id to store on the user, so a fresh account can book
// reservations without an admin creating the client record first.
type EnsureClientFunc func(ctx context.Context, email, firstName, lastName string) (string, error)

type Service struct {
	repo         Repository
	tokens       *auth.Manager
	ensureClient EnsureClientFunc
	location     *time.Location
}

func NewService(repo Repository, tokens *auth.Manager, ensureClient EnsureClientFunc, location *time.Location) *Service {
	return &Service{
		repo:         repo,
		tokens:       tokens,
		ensureClient: ensureClient,
		location:     location,
	}
}

// Register creates a user with the default role and immediately issues a
// token: registration implies login.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, string, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return User{}, "", err
	}

	now := time.Now().In(s.location)
	user := User{
		ID:           primitive.NewObjectID().Hex(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if s.ensureClient != nil {
		clientID, err := s.ensureClient(ctx, user.Email, user.FirstName, user.LastName)
		if err != nil {
			return User{}, "", err
		}
		user.ClientID = clientID
	}

	if err := s.repo.Insert(ctx, user); err != nil {
		return User{}, "", err
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return User{}, "", ErrInvalidCredentials
		}
		return User{}, "", err
	}

	if err := auth.ComparePassword(user.PasswordHash, req.Password); err != nil {
		return User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}

// Me resolves the token subject back to a stored user. A valid token whose
// user has since disappeared yields ErrNotFound.
func (s *Service) Me(ctx context.Context, userID string) (User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}
