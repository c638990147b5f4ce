package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"eclat-backend/internal/auth"
	"eclat-backend/internal/config"
	"eclat-backend/internal/db"
	"eclat-backend/internal/models"
	"eclat-backend/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type seedService struct {
	Name            string
	Description     string
	Category        string
	Price           int
	DurationMinutes int
}

type seedFormation struct {
	Name          string
	Description   string
	Level         string
	Price         int
	DurationHours int
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		log.Fatal(err)
	}

	services := []seedService{
		{Name: "Maquillage jour", Description: "Mise en beauté naturelle pour le quotidien.", Category: "Beauté", Price: 45, DurationMinutes: 60},
		{Name: "Maquillage soirée", Description: "Mise en beauté sophistiquée pour vos événements.", Category: "Beauté", Price: 65, DurationMinutes: 60},
		{Name: "Maquillage mariée", Description: "Essai et mise en beauté le jour J.", Category: "Mariage", Price: 150, DurationMinutes: 120},
		{Name: "Cours d'auto-maquillage", Description: "Apprenez les gestes adaptés à votre visage.", Category: "Cours", Price: 80, DurationMinutes: 90},
	}

	now := time.Now().In(cfg.Timezone)

	for _, svc := range services {
		slug := utils.Slugify(svc.Name)
		update := bson.M{
			"$setOnInsert": bson.M{
				"_id":             primitive.NewObjectID().Hex(),
				"name":            svc.Name,
				"description":     svc.Description,
				"category":        svc.Category,
				"price":           svc.Price,
				"durationMinutes": svc.DurationMinutes,
				"slug":            slug,
				"isActive":        true,
				"createdAt":       now,
				"updatedAt":       now,
			},
		}
		_, err := cols.Services.UpdateOne(ctx, bson.M{"slug": slug}, update, options.Update().SetUpsert(true))
		if err != nil {
			log.Fatalf("seed service %s: %v", svc.Name, err)
		}
	}

	formations := []seedFormation{
		{Name: "Initiation maquillage", Description: "Les bases du maquillage professionnel.", Level: "debutant", Price: 290, DurationHours: 8},
		{Name: "Perfectionnement teint", Description: "Techniques avancées du travail du teint.", Level: "intermediaire", Price: 450, DurationHours: 14},
		{Name: "Maquillage artistique", Description: "Création et effets pour la scène et le shooting.", Level: "avance", Price: 690, DurationHours: 21},
	}

	for _, f := range formations {
		slug := utils.Slugify(f.Name)
		update := bson.M{
			"$setOnInsert": bson.M{
				"_id":           primitive.NewObjectID().Hex(),
				"name":          f.Name,
				"description":   f.Description,
				"level":         f.Level,
				"price":         f.Price,
				"durationHours": f.DurationHours,
				"slug":          slug,
				"isActive":      true,
				"createdAt":     now,
				"updatedAt":     now,
			},
		}
		_, err := cols.Formations.UpdateOne(ctx, bson.M{"slug": slug}, update, options.Update().SetUpsert(true))
		if err != nil {
			log.Fatalf("seed formation %s: %v", f.Name, err)
		}
	}

	sections := map[string]map[string]interface{}{
		"hero": {
			"title":    "Éclat Studio",
			"subtitle": "Maquilleuse professionnelle",
		},
		"about": {
			"title": "À propos",
			"body":  "",
		},
		"footer": {
			"instagram": "",
			"phone":     "",
		},
	}

	for key, data := range sections {
		update := bson.M{
			"$setOnInsert": bson.M{
				"data":      data,
				"updatedAt": now,
			},
		}
		_, err := cols.Content.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
		if err != nil {
			log.Fatalf("seed content %s: %v", key, err)
		}
	}

	if err := seedAdminUser(ctx, cols, cfg.Timezone); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	log.Println("seed completed")
}

// seedAdminUser upserts the administrator account from ADMIN_EMAIL and
// ADMIN_PASSWORD. It is skipped when either variable is unset, and the
// password hash is refreshed on every run so a rotated password takes
// effect on the next seed.
func seedAdminUser(ctx context.Context, cols *db.Collections, loc *time.Location) error {
	email := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("seed admin: ADMIN_EMAIL or ADMIN_PASSWORD missing, skipping")
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	now := time.Now().In(loc)
	update := bson.M{
		"$set": bson.M{
			"passwordHash": hash,
			"role":         models.RoleAdmin,
			"updatedAt":    now,
		},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID().Hex(),
			"firstName": "Admin",
			"lastName":  "Éclat",
			"email":     email,
			"createdAt": now,
		},
	}
	_, err = cols.Users.UpdateOne(ctx, bson.M{"email": email}, update, options.Update().SetUpsert(true))
	return err
}
