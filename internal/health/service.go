package health

import (
	"context"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var startTime = time.Now()

// DepStatus is one dependency's probe result.
type DepStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"ping_ms"`
}

// Report is the /health payload.
type Report struct {
	Status        string               `json:"status"`
	UptimeSeconds int64                `json:"uptime_seconds"`
	GoVersion     string               `json:"go_version"`
	Dependencies  map[string]DepStatus `json:"dependencies"`
}

// Collect probes the database and Redis. Overall status degrades when either
// dependency fails; the process itself answering still counts for liveness.
func Collect(ctx context.Context, db *gorm.DB, rdb *redis.Client) Report {
	report := Report{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(startTime).Seconds()),
		GoVersion:     runtime.Version(),
		Dependencies:  make(map[string]DepStatus),
	}

	dbStatus := DepStatus{Status: "disconnected"}
	if db != nil {
		start := time.Now()
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.PingContext(ctx); err == nil {
				ms := time.Since(start).Milliseconds()
				dbStatus = DepStatus{Status: "connected", PingMs: &ms}
			} else {
				dbStatus.Status = "error"
			}
		} else {
			dbStatus.Status = "error"
		}
	}
	report.Dependencies["database"] = dbStatus

	redisStatus := DepStatus{Status: "disconnected"}
	if rdb != nil {
		start := time.Now()
		if err := rdb.Ping(ctx).Err(); err == nil {
			ms := time.Since(start).Milliseconds()
			redisStatus = DepStatus{Status: "connected", PingMs: &ms}
		} else {
			redisStatus.Status = "error"
		}
	}
	report.Dependencies["redis"] = redisStatus

	if dbStatus.Status != "connected" || redisStatus.Status != "connected" {
		report.Status = "degraded"
	}
	return report
}
