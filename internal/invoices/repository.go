package invoices

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
	Insert(ctx context.Context, invoice Invoice) error
	Update(ctx context.Context, id string, set bson.M) (Invoice, error)
	Delete(ctx context.Context, id string) (bool, error)
	FindByID(ctx context.Context, id string) (Invoice, error)
	List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Invoice, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	// CountYear counts invoices issued in a calendar year, used for numbering.
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

func (r *MongoRepository) Insert(ctx context.Context, invoice Invoice) error {
	_, err := r.col.InsertOne(ctx, invoice)
	if mongo.IsDuplicateKeyError(err) {
		return ErrNumberTaken
	}
	return err
}

func (r *MongoRepository) Update(ctx context.Context, id string, set bson.M) (Invoice, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Invoice
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if mongo.IsDuplicateKeyError(err) {
		return Invoice{}, ErrNumberTaken
	}
	if err != nil {
		return Invoice{}, err
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

func (r *MongoRepository) FindByID(ctx context.Context, id string) (Invoice, error) {
	var invoice Invoice
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&invoice)
	return invoice, err
}

func (r *MongoRepository) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Invoice, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "issuedAt", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.col.Find(ctx, listQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Invoice, 0)
	for cursor.Next(ctx) {
		var inv Invoice
		if err := cursor.Decode(&inv); err != nil {
			return nil, err
		}
		items = append(items, inv)
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
	return r.col.CountDocuments(ctx, bson.M{"number": bson.M{"$regex": fmt.Sprintf("^FA-%04d-", year)}})
}
