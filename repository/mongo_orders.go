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

type MongoOrderRepository struct {
	coll *mongo.Collection
}

func NewMongoOrderRepository(database *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{coll: database.Collection(db.OrdersCollection)}
}

func (r *MongoOrderRepository) Create(ctx context.Context, o *models.Order) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, o)
	return translate(err)
}

func (r *MongoOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return findOne[models.Order](ctx, r.coll, bson.M{"_id": id})
}

func (r *MongoOrderRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return findAll[models.Order](ctx, r.coll, bson.M{"userId": userID}, options.Find().SetSort(newestFirst))
}

func (r *MongoOrderRepository) ListByVendor(ctx context.Context, vendorID primitive.ObjectID) ([]models.Order, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return findAll[models.Order](ctx, r.coll, bson.M{"items.vendorId": vendorID}, options.Find().SetSort(newestFirst))
}

func (r *MongoOrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return updateOne[models.Order](ctx, r.coll, bson.M{"_id": id}, bson.M{"$set": bson.M{"orderStatus": status}})
}

func (r *MongoOrderRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *MongoOrderRepository) Recent(ctx context.Context, n int64) ([]models.Order, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return findAll[models.Order](ctx, r.coll, bson.M{}, options.Find().SetSort(newestFirst).SetLimit(n))
}

func (r *MongoOrderRepository) Revenue(ctx context.Context) (float64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "paymentStatus", Value: models.PaymentCompleted}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$totalAmount"}}},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
