package repository

import (
	"context"
	"strings"
	"time"

	"github.com/Blessan-Corley/fixly-server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoUserRepo struct {
	col *mongo.Collection
}

func NewMongoUserRepo(db *mongo.Database, collection string) UserRepository {
	col := db.Collection(collection)
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "external_id", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	})
	return &mongoUserRepo{col: col}
}

func (r *mongoUserRepo) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &DuplicateFieldError{Field: duplicateField(err)}
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

// duplicateField extracts which unique index collided. The error text
// carries the index name ("email_1" etc.); fields are checked in the
// fixed precedence order email, username, phone, external_id.
func duplicateField(err error) string {
	msg := err.Error()
	for _, f := range []string{"email", "username", "phone", "external_id"} {
		if strings.Contains(msg, f+"_1") {
			return f
		}
	}
	return "account"
}

func (r *mongoUserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, filter).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *mongoUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *mongoUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *mongoUserRepo) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"phone": phone})
}

func (r *mongoUserRepo) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"external_id": externalID})
}

func (r *mongoUserRepo) FindConflict(ctx context.Context, email, username, phone, externalID string) (*models.User, error) {
	or := bson.A{}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if phone != "" {
		or = append(or, bson.M{"phone": phone})
	}
	if externalID != "" {
		or = append(or, bson.M{"external_id": externalID})
	}
	if len(or) == 0 {
		return nil, ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"$or": or})
}

func (r *mongoUserRepo) UpdateByID(ctx context.Context, id string, update *models.Update) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrUserNotFound
	}
	if update.Empty() {
		return nil
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range update.Set {
		set[k] = v
	}
	doc := bson.M{"$set": set}
	if len(update.Unset) > 0 {
		unset := bson.M{}
		for _, f := range update.Unset {
			unset[f] = ""
		}
		doc["$unset"] = unset
	}
	if len(update.Push) > 0 {
		push := bson.M{}
		for k, v := range update.Push {
			push[k] = v
		}
		doc["$push"] = push
	}
	if len(update.Inc) > 0 {
		inc := bson.M{}
		for k, v := range update.Inc {
			inc[k] = v
		}
		doc["$inc"] = inc
	}

	res, err := r.col.UpdateByID(ctx, oid, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &DuplicateFieldError{Field: duplicateField(err)}
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *mongoUserRepo) FindResetCandidates(ctx context.Context, now time.Time, maxAttempts int) ([]*models.User, error) {
	filter := bson.M{
		"password_reset_expiry":   bson.M{"$gt": now},
		"password_reset_attempts": bson.M{"$lt": maxAttempts},
	}
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.User
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, cur.Err()
}
