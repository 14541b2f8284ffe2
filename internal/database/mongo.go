package database

import (
	"context"
	"time"

	"github.com/Blessan-Corley/fixly-server/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const mongoConnectTimeout = 15 * time.Second

// ConnectMongo opens the identity store and verifies it is reachable.
func ConnectMongo(cfg config.MongoCfg, logger *zap.SugaredLogger) (*mongo.Database, *mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		logger.Errorf("identity store connection failed: %v", err)
		return nil, nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Errorf("identity store ping failed: %v", err)
		return nil, nil, err
	}

	logger.Infow("identity store connected", "database", cfg.Database)
	return client.Database(cfg.Database), client, nil
}
