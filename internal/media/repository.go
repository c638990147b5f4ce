package media

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Insert(ctx context.Context, asset Asset) error
	Update(ctx context.Context, id string, set bson.M) (Asset, error)
	Delete(ctx context.Context, id string) (bool, error)
	FindByID(ctx context.Context, id string) (Asset, error)
	List(ctx context.Context, limit, offset int64) ([]Asset, error)
	Count(ctx context.Context) (int64, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Insert(ctx context.Context, asset Asset) error {
	_, err := r.col.InsertOne(ctx, asset)
	return err
}

func (r *MongoRepository) Update(ctx context.Context, id string, set bson.M) (Asset, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Asset
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		return Asset{}, err
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

func (r *MongoRepository) FindByID(ctx context.Context, id string) (Asset, error) {
	var asset Asset
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&asset)
	return asset, err
}

func (r *MongoRepository) List(ctx context.Context, limit, offset int64) ([]Asset, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Asset, 0)
	for cursor.Next(ctx) {
		var a Asset
		if err := cursor.Decode(&a); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}
