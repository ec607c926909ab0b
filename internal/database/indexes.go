package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureProductIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("products").Indexes()

	skuIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "sku", Value: 1}},
		Options: options.Index().
			SetName("sku_unique").
			SetUnique(true),
	}

	log.Println("EnsureProductIndexes: creating sku_unique index")
	_, err := indexes.CreateOne(ctx, skuIndex)
	if err != nil {
		log.Println("EnsureProductIndexes: sku index error:", err)
		return err
	}
	return nil
}

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("users").Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureUserIndexes: creating email_unique index")
	_, err := indexes.CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureUserIndexes: email index error:", err)
		return err
	}
	return nil
}

// EnsureOrderIndexes backs the 6-digit order number with a unique index so the
// random generator can retry on collisions instead of silently duplicating.
func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	indexModels := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "orderNumber", Value: 1}},
			Options: options.Index().
				SetName("orderNumber_unique").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("userId_index"),
		},
	}

	log.Println("EnsureOrderIndexes: creating orderNumber_unique and userId indexes")
	_, err := indexes.CreateMany(ctx, indexModels)
	if err != nil {
		log.Println("EnsureOrderIndexes: order index error:", err)
		return err
	}
	return nil
}

func EnsureCartIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("carts").Indexes()

	indexModels := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().
				SetName("userId_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"userId": bson.M{"$exists": true},
				}),
		},
		{
			Keys: bson.D{{Key: "guestId", Value: 1}},
			Options: options.Index().
				SetName("guestId_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"guestId": bson.M{"$exists": true},
				}),
		},
	}

	log.Println("EnsureCartIndexes: creating userId_unique and guestId_unique indexes")
	_, err := indexes.CreateMany(ctx, indexModels)
	if err != nil {
		log.Println("EnsureCartIndexes: cart index error:", err)
		return err
	}
	return nil
}

func EnsureSubscriberIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("subscribers").Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureSubscriberIndexes: creating email_unique index")
	_, err := indexes.CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureSubscriberIndexes: email index error:", err)
		return err
	}
	return nil
}
