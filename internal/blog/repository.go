package blog

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	// Insert and Update return ErrSlugTaken when the unique slug index
	// rejects the write.
	Insert(ctx context.Context, post Post) error
	Update(ctx context.Context, id string, set bson.M) (Post, error)
	Delete(ctx context.Context, id string) (bool, error)
	FindByID(ctx context.Context, id string) (Post, error)
	FindBySlug(ctx context.Context, slug string) (Post, error)
	ListPublished(ctx context.Context) ([]Post, error)
	ListAll(ctx context.Context, limit, offset int64) ([]Post, error)
	Count(ctx context.Context) (int64, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Insert(ctx context.Context, post Post) error {
	_, err := r.col.InsertOne(ctx, post)
	if mongo.IsDuplicateKeyError(err) {
		return ErrSlugTaken
	}
	return err
}

func (r *MongoRepository) Update(ctx context.Context, id string, set bson.M) (Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Post
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if mongo.IsDuplicateKeyError(err) {
		return Post{}, ErrSlugTaken
	}
	if err != nil {
		return Post{}, err
	}
	return updated, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (Post, error) {
	var post Post
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	return post, err
}

func (r *MongoRepository) FindBySlug(ctx context.Context, slug string) (Post, error) {
	var post Post
	err := r.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&post)
	return post, err
}

func (r *MongoRepository) ListPublished(ctx context.Context) ([]Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "publishedAt", Value: -1}})
	return r.list(ctx, bson.M{"published": true}, opts)
}

func (r *MongoRepository) ListAll(ctx context.Context, limit, offset int64) ([]Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)
	return r.list(ctx, bson.M{}, opts)
}

func (r *MongoRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *MongoRepository) list(ctx context.Context, query bson.M, opts *options.FindOptions) ([]Post, error) {
	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Post, 0)
	for cursor.Next(ctx) {
		var post Post
		if err := cursor.Decode(&post); err != nil {
			return nil, err
		}
		items = append(items, post)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
