// Package router assembles the HTTP route table.
package router

import (
	"github.com/gin-gonic/gin"

	adminhandler "checkin_backend/internal/feature/admin/transport/handler"
	checkinhandler "checkin_backend/internal/feature/checkin/transport/handler"
	identityhandler "checkin_backend/internal/feature/identity/transport/handler"
	"checkin_backend/internal/platform/http/handler"
	jwtmw "checkin_backend/internal/platform/jwt"
	"checkin_backend/internal/shared/ratelimiter"
)

// NewRouter wires every endpoint. The lookup endpoints sit behind the
// fixed-window limiter; the admin group sits behind the JWT middleware.
func NewRouter(identity *identityhandler.IdentityHandler, checkin *checkinhandler.CheckinHandler,
	admin *adminhandler.AdminHandler, lookupLimiter *ratelimiter.FixedWindow) *gin.Engine {
	r := gin.Default()

	// Liveness probe
	r.GET("/healthz", handler.Health)

	// Visitor-facing endpoints
	r.POST("/register", identity.Register)
	r.POST("/login", identity.Login)
	r.POST("/checkin", checkin.CheckIn)
	r.POST("/checkin/quick", checkin.QuickCheckIn)
	r.POST("/profile/update", identity.UpdateProfile)

	// Lookups are the endpoints the kiosk hits on every keystroke, so they
	// carry the per-IP limit.
	limited := r.Group("/")
	limited.Use(lookupLimiter.Middleware())
	{
		limited.POST("/lookup", identity.Lookup)
		limited.POST("/lookup-by-pin", identity.LookupByPIN)
	}

	// Staff endpoints: password login issues the token, everything else
	// requires it.
	r.POST("/admin/login", admin.Login)
	adminGroup := r.Group("/admin")
	adminGroup.Use(jwtmw.AdminRequired())
	{
		adminGroup.GET("/analytics", admin.Analytics)
		adminGroup.GET("/identities", admin.Identities)
		adminGroup.GET("/identities/:id/visits", admin.IdentityVisits)
		adminGroup.GET("/export", admin.Export)
	}

	return r
}
