package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoJobRepo struct {
	col *mongo.Collection
}

func NewMongoJobRepo(db *mongo.Database, collection string) JobRepository {
	return &mongoJobRepo{col: db.Collection(collection)}
}

func (r *mongoJobRepo) CountPostedBy(ctx context.Context, hirerID string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"hirer_id": hirerID})
}

func (r *mongoJobRepo) CountCompletedBy(ctx context.Context, fixerID string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"fixer_id": fixerID, "status": "completed"})
}

func (r *mongoJobRepo) SumEarnings(ctx context.Context, fixerID string) (float64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"fixer_id": fixerID, "status": "completed"}}},
		bson.D{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var row struct {
		Total float64 `bson:"total"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&row); err != nil {
			return 0, err
		}
	}
	return row.Total, cur.Err()
}
