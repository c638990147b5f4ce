package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Collections struct {
	Users           *mongo.Collection
	Clients         *mongo.Collection
	Services        *mongo.Collection
	Formations      *mongo.Collection
	Reservations    *mongo.Collection
	Invoices        *mongo.Collection
	Quotes          *mongo.Collection
	Posts           *mongo.Collection
	Media           *mongo.Collection
	TeamMembers     *mongo.Collection
	Testimonials    *mongo.Collection
	ContactMessages *mongo.Collection
	Content         *mongo.Collection
}

func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *Collections, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, err
	}

	db := client.Database(dbName)

	cols := &Collections{
		Users:           db.Collection("users"),
		Clients:         db.Collection("clients"),
		Services:        db.Collection("services"),
		Formations:      db.Collection("formations"),
		Reservations:    db.Collection("reservations"),
		Invoices:        db.Collection("invoices"),
		Quotes:          db.Collection("quotes"),
		Posts:           db.Collection("posts"),
		Media:           db.Collection("media"),
		TeamMembers:     db.Collection("team_members"),
		Testimonials:    db.Collection("testimonials"),
		ContactMessages: db.Collection("contact_messages"),
		Content:         db.Collection("content"),
	}

	return client, cols, nil
}

// EnsureIndexes creates the unique indexes that back every application-level
// uniqueness guarantee. Duplicate emails and slugs are rejected by the engine,
// so concurrent check-then-insert writes cannot slip through.
func EnsureIndexes(ctx context.Context, cols *Collections) error {
	indexTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	unique := func(col *mongo.Collection, key string) error {
		_, err := col.Indexes().CreateOne(indexTimeout, mongo.IndexModel{
			Keys:    bson.D{{Key: key, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		return err
	}

	if err := unique(cols.Users, "email"); err != nil {
		return err
	}
	if err := unique(cols.Clients, "email"); err != nil {
		return err
	}
	if err := unique(cols.Services, "slug"); err != nil {
		return err
	}
	if err := unique(cols.Formations, "slug"); err != nil {
		return err
	}
	if err := unique(cols.Posts, "slug"); err != nil {
		return err
	}

	_, err := cols.Reservations.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}}},
		{Keys: bson.D{{Key: "clientId", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = cols.Invoices.Indexes().CreateOne(indexTimeout, mongo.IndexModel{
		Keys:    bson.D{{Key: "number", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = cols.Quotes.Indexes().CreateOne(indexTimeout, mongo.IndexModel{
		Keys:    bson.D{{Key: "number", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
