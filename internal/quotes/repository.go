package quotes

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	// Insert and Update return ErrNumberTaken when the unique number index
	// rejects the write.
	Insert(ctx context.Context, quote Quote) error
	Update(ctx context.Context, id string, set bson.M) (Quote, error)
	Delete(ctx context.Context, id string) (bool, error)
	FindByID(ctx context.Context, id string) (Quote, error)
	List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Quote, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	CountYear(ctx context.Context, year int) (int64, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func listQuery(filter ListFilter) bson.M {
	query := bson.M{}
	if filter.ClientID != "" {
		query["clientId"] = filter.ClientID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return query
}

func (r *MongoRepository) Insert(ctx context.Context, quote Quote) error {
	_, err := r.col.InsertOne(ctx, quote)
	if mongo.IsDuplicateKeyError(err) {
		return ErrNumberTaken
	}
	return err
}

func (r *MongoRepository) Update(ctx context.Context, id string, set bson.M) (Quote, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Quote
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if mongo.IsDuplicateKeyError(err) {
		return Quote{}, ErrNumberTaken
	}
	if err != nil {
		return Quote{}, err
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

func (r *MongoRepository) FindByID(ctx context.Context, id string) (Quote, error) {
	var quote Quote
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&quote)
	return quote, err
}

func (r *MongoRepository) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Quote, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "issuedAt", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.col.Find(ctx, listQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Quote, 0)
	for cursor.Next(ctx) {
		var q Quote
		if err := cursor.Decode(&q); err != nil {
			return nil, err
		}
		items = append(items, q)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	return r.col.CountDocuments(ctx, listQuery(filter))
}

func (r *MongoRepository) CountYear(ctx context.Context, year int) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"number": bson.M{"$regex": fmt.Sprintf("^DV-%04d-", year)}})
}
