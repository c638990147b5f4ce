package clients

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	// Insert and Update return ErrEmailTaken when the unique email index
	// rejects the write.
	Insert(ctx context.Context, client Client) error
	Update(ctx context.Context, id string, set bson.M) (Client, error)
	Delete(ctx context.Context, id string) (bool, error)
	FindByID(ctx context.Context, id string) (Client, error)
	FindByEmail(ctx context.Context, email string) (Client, error)
	List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Client, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func listQuery(filter ListFilter) bson.M {
	query := bson.M{}
	if filter.Search != "" {
		pattern := primitiveRegex(filter.Search)
		query["$or"] = []bson.M{
			{"firstName": pattern},
			{"lastName": pattern},
			{"email": pattern},
		}
	}
	return query
}

func primitiveRegex(search string) bson.M {
	return bson.M{"$regex": search, "$options": "i"}
}

func (r *MongoRepository) Insert(ctx context.Context, client Client) error {
	_, err := r.col.InsertOne(ctx, client)
	if mongo.IsDuplicateKeyError(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *MongoRepository) Update(ctx context.Context, id string, set bson.M) (Client, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Client
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if mongo.IsDuplicateKeyError(err) {
		return Client{}, ErrEmailTaken
	}
	if err != nil {
		return Client{}, err
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

func (r *MongoRepository) FindByID(ctx context.Context, id string) (Client, error) {
	var client Client
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&client)
	return client, err
}

func (r *MongoRepository) FindByEmail(ctx context.Context, email string) (Client, error) {
	var client Client
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&client)
	return client, err
}

func (r *MongoRepository) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Client, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "lastName", Value: 1}, {Key: "firstName", Value: 1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.col.Find(ctx, listQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Client, 0)
	for cursor.Next(ctx) {
		var c Client
		if err := cursor.Decode(&c); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	return r.col.CountDocuments(ctx, listQuery(filter))
}
