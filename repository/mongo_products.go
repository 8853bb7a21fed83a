package repository

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	db "marketplace-hub/database"
	"marketplace-hub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoProductRepository struct {
	coll *mongo.Collection
}

func NewMongoProductRepository(database *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{coll: database.Collection(db.ProductsCollection)}
}

func (r *MongoProductRepository) Create(ctx context.Context, p *models.Product) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	_, err := r.coll.InsertOne(ctx, p)
	return translate(err)
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return findOne[models.Product](ctx, r.coll, bson.M{"_id": id})
}

func productQuery(f ProductFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.VendorID != nil {
		filter["vendorId"] = *f.VendorID
	}
	if f.Search != "" {
		pattern := regexp.QuoteMeta(f.Search)
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": pattern, "$options": "i"}},
			{"description": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	return filter
}

func (r *MongoProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := productQuery(f)
	opts := options.Find().SetSort(newestFirst).SetSkip(f.Skip)
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	products, err := findAll[models.Product](ctx, r.coll, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *MongoProductRepository) Categories(ctx context.Context) ([]string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	values, err := r.coll.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *MongoProductRepository) Update(ctx context.Context, id primitive.ObjectID, upd ProductUpdate) (*models.Product, error) {
	set := bson.M{}
	if upd.VendorID != nil {
		set["vendorId"] = *upd.VendorID
	}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Price != nil {
		set["price"] = *upd.Price
	}
	if upd.Quantity != nil {
		set["quantity"] = *upd.Quantity
	}
	if upd.Images != nil {
		set["images"] = *upd.Images
	}
	if upd.Specifications != nil {
		set["specifications"] = upd.Specifications
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return updateOne[models.Product](ctx, r.coll, bson.M{"_id": id}, bson.M{"$set": set})
}

func (r *MongoProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProductRepository) AddImages(ctx context.Context, id primitive.ObjectID, urls []string) (*models.Product, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return updateOne[models.Product](ctx, r.coll, bson.M{"_id": id},
		bson.M{"$push": bson.M{"images": bson.M{"$each": urls}}})
}

func (r *MongoProductRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *MongoProductRepository) ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "quantity": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"quantity": -qty}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *MongoProductRepository) ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"quantity": qty}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProductRepository) SyncStockStatus(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	soldOut, err := r.coll.UpdateMany(ctx,
		bson.M{"quantity": bson.M{"$lte": 0}, "status": models.ProductAvailable},
		bson.M{"$set": bson.M{"status": models.ProductOutOfStock}},
	)
	if err != nil {
		return 0, fmt.Errorf("mark out of stock: %w", err)
	}
	restocked, err := r.coll.UpdateMany(ctx,
		bson.M{"quantity": bson.M{"$gt": 0}, "status": models.ProductOutOfStock},
		bson.M{"$set": bson.M{"status": models.ProductAvailable}},
	)
	if err != nil {
		return soldOut.ModifiedCount, fmt.Errorf("mark available: %w", err)
	}
	return soldOut.ModifiedCount + restocked.ModifiedCount, nil
}
