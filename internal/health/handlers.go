package health

import (
	"naviport-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Handlers struct {
	DB  *gorm.DB
	Rdb *redis.Client
}

// Check GET /health
func (h *Handlers) Check(c *fiber.Ctx) error {
	report := Collect(c.Context(), h.DB, h.Rdb)
	if report.Status != "ok" {
		return response.Error(c, "Service degraded", fiber.StatusServiceUnavailable, report)
	}
	return response.Success(c, "Healthy", report, nil)
}
