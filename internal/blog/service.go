package blog

import (
	"context"
	"errors"
	"strings"
	"time"

	"eclat-backend/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound  = errors.New("post not found")
	ErrSlugTaken = errors.New("slug already exists")
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

func (s *Service) Create(ctx context.Context, req UpsertRequest) (Post, error) {
	now := time.Now().In(s.location)

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = utils.Slugify(req.Title)
	}

	published := req.Published != nil && *req.Published

	post := Post{
		ID:         primitive.NewObjectID().Hex(),
		Title:      strings.TrimSpace(req.Title),
		Slug:       slug,
		Excerpt:    strings.TrimSpace(req.Excerpt),
		Content:    req.Content,
		CoverImage: strings.TrimSpace(req.CoverImage),
		Published:  published,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if published {
		post.PublishedAt = &now
	}

	if err := s.repo.Insert(ctx, post); err != nil {
		return Post{}, err
	}
	return post, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (Post, error) {
	now := time.Now().In(s.location)

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = utils.Slugify(req.Title)
	}

	set := bson.M{
		"title":      strings.TrimSpace(req.Title),
		"slug":       slug,
		"excerpt":    strings.TrimSpace(req.Excerpt),
		"content":    req.Content,
		"coverImage": strings.TrimSpace(req.CoverImage),
		"updatedAt":  now,
	}
	if req.Published != nil {
		set["published"] = *req.Published
		if *req.Published {
			set["publishedAt"] = now
		} else {
			// a post pulled back to draft must not keep its old publish date
			set["publishedAt"] = nil
		}
	}

	updated, err := s.repo.Update(ctx, strings.TrimSpace(id), set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Post{}, ErrNotFound
		}
		return Post{}, err
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

// GetPublished resolves a public slug; unpublished posts stay invisible.
func (s *Service) GetPublished(ctx context.Context, slug string) (Post, error) {
	post, err := s.repo.FindBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Post{}, ErrNotFound
		}
		return Post{}, err
	}
	if !post.Published {
		return Post{}, ErrNotFound
	}
	return post, nil
}

func (s *Service) Get(ctx context.Context, id string) (Post, error) {
	post, err := s.repo.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Post{}, ErrNotFound
		}
		return Post{}, err
	}
	return post, nil
}

func (s *Service) ListPublished(ctx context.Context) ([]Post, error) {
	return s.repo.ListPublished(ctx)
}

func (s *Service) ListAll(ctx context.Context, limit, offset int64) ([]Post, int64, error) {
	items, err := s.repo.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
