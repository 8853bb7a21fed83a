package repository

import (
	"context"

	db "marketplace-hub/database"
	"marketplace-hub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoVendorRepository struct {
	coll *mongo.Collection
}

func NewMongoVendorRepository(database *mongo.Database) *MongoVendorRepository {
	return &MongoVendorRepository{coll: database.Collection(db.VendorsCollection)}
}

func (r *MongoVendorRepository) Create(ctx context.Context, v *models.Vendor) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, v)
	return translate(err)
}

func (r *MongoVendorRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Vendor, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return findOne[models.Vendor](ctx, r.coll, bson.M{"userId": userID})
}

func (r *MongoVendorRepository) List(ctx context.Context) ([]models.Vendor, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return findAll[models.Vendor](ctx, r.coll, bson.M{})
}

func (r *MongoVendorRepository) Update(ctx context.Context, userID primitive.ObjectID, upd VendorUpdate) (*models.Vendor, error) {
	set := bson.M{}
	if upd.BusinessName != nil {
		set["businessName"] = *upd.BusinessName
	}
	if upd.BusinessType != nil {
		set["businessType"] = *upd.BusinessType
	}
	if upd.GSTNumber != nil {
		set["gstNumber"] = *upd.GSTNumber
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if len(set) == 0 {
		return r.FindByUserID(ctx, userID)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return updateOne[models.Vendor](ctx, r.coll, bson.M{"userId": userID}, bson.M{"$set": set})
}

func (r *MongoVendorRepository) SetVerified(ctx context.Context, id primitive.ObjectID, verified bool) (*models.Vendor, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return updateOne[models.Vendor](ctx, r.coll, bson.M{"_id": id}, bson.M{"$set": bson.M{"isVerified": verified}})
}
