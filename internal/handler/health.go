package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const healthProbeTimeout = 3 * time.Second

// healthStatus is the readiness report for the two backing stores the
// invoice service cannot run without: Postgres (the ledger) and Redis
// (the delivery queue).
type healthStatus struct {
	Status   string `json:"status"` // ok | degraded
	Postgres bool   `json:"postgres"`
	Redis    bool   `json:"redis"`
}

// Health probes both stores with a bounded deadline and answers 503 as soon
// as either one is unreachable, so load balancers stop routing here before
// requests start failing mid-transaction.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
		defer cancel()

		report := healthStatus{Status: "ok", Postgres: true, Redis: true}

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			report.Postgres = false
		}
		if rdb.Ping(ctx).Err() != nil {
			report.Redis = false
		}

		code := http.StatusOK
		if !report.Postgres || !report.Redis {
			report.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, report)
	}
}
