package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the /api/v1 routes.
func SetupRoutes(router gin.IRouter, handler *Handler) {
	v1 := router.Group("/api/v1")

	v1.GET("/schema", handler.GetSchema)                   // GET /api/v1/schema
	v1.POST("/indexes", handler.CreateIndex)               // POST /api/v1/indexes
	v1.DELETE("/indexes/:index_name", handler.DeleteIndex) // DELETE /api/v1/indexes/:index_name
	v1.POST("/analyze", handler.Analyze)                   // POST /api/v1/analyze
	v1.POST("/verify", handler.Verify)                     // POST /api/v1/verify
}
