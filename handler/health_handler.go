package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/pophero110/trackly-sub002/services"
	"github.com/pophero110/trackly-sub002/utils"
)

// HealthHandler reports liveness of the process and its backing stores.
// Degraded dependencies flip the status but still return 200 so load
// balancers keep routing while Redis recovers.
func HealthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	mongoStatus := "up"
	if err := utils.MongoClient.Ping(ctx, readpref.Primary()); err != nil {
		mongoStatus = "down"
	}

	redisStatus := "up"
	if services.TokenBlacklist == nil || !services.TokenBlacklist.IsConnected() {
		redisStatus = "down"
	}

	status := "ok"
	if mongoStatus == "down" {
		status = "degraded"
	}

	pool := utils.GetMongoMetrics()
	c.JSON(200, gin.H{
		"status": status,
		"mongo":  mongoStatus,
		"redis":  redisStatus,
		"cpu":    utils.GetCPUUsage(),
		"pool": gin.H{
			"active":  pool.ActiveConnections,
			"created": pool.CreatedConnections,
			"closed":  pool.ClosedConnections,
		},
		"time": time.Now().UTC().Format(time.RFC3339),
	})
}
