package repository

import (
	"context"

	db "marketplace-hub/database"
	"marketplace-hub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRequestItemRepository struct {
	coll *mongo.Collection
}

func NewMongoRequestItemRepository(database *mongo.Database) *MongoRequestItemRepository {
	return &MongoRequestItemRepository{coll: database.Collection(db.RequestItemsCollection)}
}

func (r *MongoRequestItemRepository) Create(ctx context.Context, item *models.RequestItem) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, item)
	return translate(err)
}

func (r *MongoRequestItemRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.RequestItem, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return findAll[models.RequestItem](ctx, r.coll, bson.M{"userId": userID}, options.Find().SetSort(newestFirst))
}

func (r *MongoRequestItemRepository) List(ctx context.Context) ([]models.RequestItem, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return findAll[models.RequestItem](ctx, r.coll, bson.M{}, options.Find().SetSort(newestFirst))
}

func (r *MongoRequestItemRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status models.RequestStatus) (*models.RequestItem, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return updateOne[models.RequestItem](ctx, r.coll, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
}
