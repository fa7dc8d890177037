package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/racemap/cell-service-go/internal/handler"
	"github.com/racemap/cell-service-go/internal/middleware"
)

// SetupRouter builds the HTTP routes
func SetupRouter(cellHandler *handler.CellHandler) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(gin.Recovery())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	// Cell lookups
	r.GET("/cell", cellHandler.GetCell)
	r.GET("/cells", cellHandler.GetCells)
	r.POST("/cells/lookup", cellHandler.LookupCells)

	return r
}
