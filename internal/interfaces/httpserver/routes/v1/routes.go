package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/folioworks/media-ingest/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all v1 routes under /v1 prefix.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")

	group.POST("/drafts", r.handlers.Drafts.Create)
	group.GET("/drafts", r.handlers.Drafts.List)
	group.GET("/drafts/:id", r.handlers.Drafts.Get)
	group.PATCH("/drafts/:id", r.handlers.Drafts.Update)
	group.DELETE("/drafts/:id", r.handlers.Drafts.Delete)

	group.POST("/drafts/:id/media/:slot", r.handlers.Media.Upload)
	group.GET("/drafts/:id/media/:slot", r.handlers.Media.Progress)
	group.DELETE("/drafts/:id/media/:slot", r.handlers.Media.Clear)
	group.POST("/drafts/:id/video/recheck", r.handlers.Media.Recheck)
	group.GET("/drafts/:id/video/thumbnail", r.handlers.Media.Thumbnail)
}
