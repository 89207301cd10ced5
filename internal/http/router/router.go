package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/ignatzorin/foodrescue-backend/internal/config"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
	"github.com/ignatzorin/foodrescue-backend/internal/http/handlers"
	"github.com/ignatzorin/foodrescue-backend/internal/http/middleware"
	"github.com/ignatzorin/foodrescue-backend/internal/service"
)

// Handlers собирает все HTTP обработчики приложения.
type Handlers struct {
	Health      *handlers.HealthHandler
	Reports     *handlers.ReportHandler
	Profiles    *handlers.ProfileHandler
	Needy       *handlers.NeedyHandler
	Preferences *handlers.PreferenceHandler
	Media       *handlers.MediaHandler
	WS          *handlers.WSHandler
}

// SetupRouter регистрирует маршруты. nrApp может быть nil, тогда трассировка New Relic отключена.
func SetupRouter(cfg *config.Config, h Handlers, tokenManager *service.TokenManager, nrApp *newrelic.Application) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	if nrApp != nil {
		r.Use(nrgin.Middleware(nrApp))
	}
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	if h.Media != nil {
		r.StaticFS(handlers.MediaPrefix, http.Dir(cfg.MediaStoragePath))
	}

	api := r.Group("/api")
	api.GET("/ws", h.WS.Handle)

	hotels := []valueobject.Role{valueobject.RoleHotel, valueobject.RoleAdmin}
	agents := []valueobject.Role{valueobject.RoleAgent, valueobject.RoleAdmin}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		reports := protected.Group("/reports")
		reports.POST("", middleware.RequireRoles(valueobject.RoleHotel), h.Reports.Create)
		reports.GET("/available", middleware.RequireRoles(agents...), h.Reports.ListAvailable)
		reports.GET("/my", h.Reports.ListMine)
		reports.GET("/:id", middleware.UUIDValidator("id"), h.Reports.Get)

		// переходы статусов ограничены по частоте на пользователя
		transitions := reports.Group("/:id")
		transitions.Use(middleware.UUIDValidator("id"), middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
		{
			transitions.POST("/claim", middleware.RequireRoles(valueobject.RoleAgent), h.Reports.Claim)
			transitions.POST("/picked", middleware.RequireRoles(valueobject.RoleAgent), h.Reports.MarkPicked)
			transitions.POST("/delivered", middleware.RequireRoles(valueobject.RoleAgent), h.Reports.MarkDelivered)
			transitions.POST("/cancel", middleware.RequireRoles(hotels...), h.Reports.Cancel)
		}

		protected.GET("/agents/me", middleware.RequireRoles(valueobject.RoleAgent), h.Profiles.GetAgent)
		protected.PUT("/agents/me", middleware.RequireRoles(valueobject.RoleAgent), h.Profiles.UpsertAgent)
		protected.GET("/hotels/me", middleware.RequireRoles(valueobject.RoleHotel), h.Profiles.GetHotel)
		protected.PUT("/hotels/me", middleware.RequireRoles(valueobject.RoleHotel), h.Profiles.UpsertHotel)

		protected.POST("/needy", h.Needy.Register)
		protected.GET("/needy", h.Needy.List)

		protected.GET("/notifications/preferences", h.Preferences.Get)
		protected.PUT("/notifications/preferences", h.Preferences.Update)

		if h.Media != nil {
			protected.POST("/media/photos", middleware.RequireRoles(hotels...), h.Media.UploadPhoto)
			protected.DELETE("/media/photos/:owner/:file", h.Media.DeletePhoto)
		}
	}

	return r
}
