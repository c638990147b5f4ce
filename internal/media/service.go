package media

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("media asset not found")

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

// Create registers an uploaded file. The stored name is a fresh uuid with the
// original extension so collisions between identical upload names cannot occur.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Asset, error) {
	fileName := strings.TrimSpace(req.FileName)
	asset := Asset{
		ID:         primitive.NewObjectID().Hex(),
		FileName:   fileName,
		StoredName: uuid.NewString() + strings.ToLower(path.Ext(fileName)),
		URL:        strings.TrimSpace(req.URL),
		MimeType:   strings.TrimSpace(req.MimeType),
		SizeBytes:  req.SizeBytes,
		Alt:        strings.TrimSpace(req.Alt),
		CreatedAt:  time.Now().In(s.location),
	}

	if err := s.repo.Insert(ctx, asset); err != nil {
		return Asset{}, err
	}
	return asset, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (Asset, error) {
	set := bson.M{}
	if req.FileName != nil {
		set["fileName"] = strings.TrimSpace(*req.FileName)
	}
	if req.Alt != nil {
		set["alt"] = strings.TrimSpace(*req.Alt)
	}
	if len(set) == 0 {
		return s.Get(ctx, id)
	}

	updated, err := s.repo.Update(ctx, strings.TrimSpace(id), set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Asset{}, ErrNotFound
		}
		return Asset{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (Asset, error) {
	asset, err := s.repo.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Asset{}, ErrNotFound
		}
		return Asset{}, err
	}
	return asset, nil
}

func (s *Service) List(ctx context.Context, limit, offset int64) ([]Asset, int64, error) {
	items, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
