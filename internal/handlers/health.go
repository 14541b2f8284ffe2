package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Healthz reports liveness of the process and its two stores.
func Healthz(mongoClient *mongo.Client, redisClient *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		status := fiber.StatusOK
		checks := fiber.Map{"mongo": "up", "redis": "up"}
		if err := mongoClient.Ping(ctx, readpref.Primary()); err != nil {
			checks["mongo"] = "down"
			status = fiber.StatusServiceUnavailable
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			checks["redis"] = "down"
			status = fiber.StatusServiceUnavailable
		}

		return c.Status(status).JSON(fiber.Map{
			"success": status == fiber.StatusOK,
			"status":  checks,
			"time":    time.Now().UTC(),
		})
	}
}
