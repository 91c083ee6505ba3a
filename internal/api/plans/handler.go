package plans

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"socialhub-app/internal/domain/access"
	"socialhub-app/internal/domain/plans"
)

type PlanDTO struct {
	PriceID      string   `json:"priceId"`
	PlanType     string   `json:"planType"`
	MaxPlatforms int      `json:"maxPlatforms"`
	Capabilities []string `json:"capabilities"`
}

// ListPlans serves the configured price catalog, cheapest first.
func ListPlans(catalog *plans.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries := catalog.Entries()
		out := make([]PlanDTO, 0, len(entries))
		for _, e := range entries {
			caps := []string{}
			for _, capability := range access.CapabilitiesFor(access.AccessFull, e.PlanType) {
				caps = append(caps, string(capability))
			}
			out = append(out, PlanDTO{
				PriceID:      e.PriceID,
				PlanType:     string(e.PlanType),
				MaxPlatforms: access.MaxPlatformsFor(e.PlanType),
				Capabilities: caps,
			})
		}
		c.JSON(http.StatusOK, gin.H{"plans": out})
	}
}
