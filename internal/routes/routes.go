package routes

import (
	"github.com/elemently/builder-backend/internal/handler"
	"github.com/elemently/builder-backend/internal/middleware"
	"github.com/elemently/builder-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	contentHandler *handler.ContentHandler,
	jwtManager *jwt.Manager,
) {
	// Every request gets its own content instance table
	api := router.Group("/api/v1", middleware.ContentScope())

	contents := api.Group("/contents")
	{
		// Read endpoints are public; optional auth still surfaces the
		// member to audit fields when a token is present
		contents.GET("", middleware.OptionalAuth(jwtManager), contentHandler.ListContents)
		contents.GET("/:id", middleware.OptionalAuth(jwtManager), contentHandler.GetContent)
		contents.GET("/identifier/:identifier", middleware.OptionalAuth(jwtManager), contentHandler.GetContentByIdentifier)
		contents.GET("/:id/render", middleware.OptionalAuth(jwtManager), contentHandler.RenderContent)
		contents.GET("/:id/revisions", middleware.JWTAuth(jwtManager), contentHandler.ListRevisions)

		// Mutations require a session; the publish gate applies on top
		contents.POST("", middleware.JWTAuth(jwtManager), contentHandler.CreateContent)
		contents.PUT("/:id", middleware.JWTAuth(jwtManager), contentHandler.UpdateContent)
		contents.DELETE("/:id", middleware.JWTAuth(jwtManager), contentHandler.DeleteContent)
	}
}
