package repository

import (
	"context"

	db "marketplace-hub/database"
	"marketplace-hub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(database *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: database.Collection(db.UsersCollection)}
}

func (r *MongoUserRepository) Create(ctx context.Context, u *models.User) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Email = models.NormalizeEmail(u.Email)
	_, err := r.coll.InsertOne(ctx, u)
	return translate(err)
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return findOne[models.User](ctx, r.coll, bson.M{"_id": id})
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return findOne[models.User](ctx, r.coll, bson.M{"email": models.NormalizeEmail(email)})
}

func (r *MongoUserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	users, err := findAll[models.User](ctx, r.coll, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (r *MongoUserRepository) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return findAll[models.User](ctx, r.coll, bson.M{})
}

func (r *MongoUserRepository) Update(ctx context.Context, id primitive.ObjectID, upd UserUpdate) (*models.User, error) {
	set := bson.M{}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.Address != nil {
		set["address"] = *upd.Address
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return updateOne[models.User](ctx, r.coll, bson.M{"_id": id}, bson.M{"$set": set})
}

func (r *MongoUserRepository) SetActive(ctx context.Context, id primitive.ObjectID, active bool) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return updateOne[models.User](ctx, r.coll, bson.M{"_id": id}, bson.M{"$set": bson.M{"isActive": active}})
}

func (r *MongoUserRepository) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"password": hash}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{"role": role})
}

func (r *MongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
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
