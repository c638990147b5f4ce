package reservations

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Insert(ctx context.Context, reservation Reservation) error
	Update(ctx context.Context, id string, set bson.M) (Reservation, error)
	Delete(ctx context.Context, id string) (bool, error)
	FindByID(ctx context.Context, id string) (Reservation, error)
	List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Reservation, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	// BookedTimes returns the time slots of non-cancelled reservations on a date.
	BookedTimes(ctx context.Context, date string) (map[string]bool, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func listQuery(filter ListFilter) bson.M {
	query := bson.M{}
	if filter.Date != "" {
		query["date"] = filter.Date
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.ClientID != "" {
		query["clientId"] = filter.ClientID
	}
	return query
}

func (r *MongoRepository) Insert(ctx context.Context, reservation Reservation) error {
	_, err := r.col.InsertOne(ctx, reservation)
	return err
}

func (r *MongoRepository) Update(ctx context.Context, id string, set bson.M) (Reservation, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Reservation
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated); err != nil {
		return Reservation{}, err
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

func (r *MongoRepository) FindByID(ctx context.Context, id string) (Reservation, error) {
	var reservation Reservation
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&reservation)
	return reservation, err
}

func (r *MongoRepository) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Reservation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.col.Find(ctx, listQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Reservation, 0)
	for cursor.Next(ctx) {
		var res Reservation
		if err := cursor.Decode(&res); err != nil {
			return nil, err
		}
		items = append(items, res)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	return r.col.CountDocuments(ctx, listQuery(filter))
}

func (r *MongoRepository) BookedTimes(ctx context.Context, date string) (map[string]bool, error) {
	query := bson.M{
		"date":   date,
		"status": bson.M{"$ne": StatusCancelled},
	}

	cursor, err := r.col.Find(ctx, query, options.Find().SetProjection(bson.M{"time": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	booked := make(map[string]bool)
	for cursor.Next(ctx) {
		var doc struct {
			Time string `bson:"time"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		booked[doc.Time] = true
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return booked, nil
}
