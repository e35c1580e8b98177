package v1

import (
	"github.com/gin-gonic/gin"
)

// NumberingRouteHandler defines the endpoints of the numbering API.
type NumberingRouteHandler interface {
	EffectiveFormat(c *gin.Context)
	ListFormats(c *gin.Context)
	GetFormat(c *gin.Context)
	CreateFormat(c *gin.Context)
	UpdateFormat(c *gin.Context)
	Preview(c *gin.Context)
	Generate(c *gin.Context)
	GetListDisplay(c *gin.Context)
	SaveListDisplay(c *gin.Context)
}

// RegisterNumberingRoutes registers the numbering routes on group.
func RegisterNumberingRoutes(group *gin.RouterGroup, handler NumberingRouteHandler) {
	formats := group.Group("/formats")
	{
		formats.GET("", handler.ListFormats)
		formats.POST("", handler.CreateFormat)
		formats.GET("/effective", handler.EffectiveFormat)
		formats.GET("/:id", handler.GetFormat)
		formats.PUT("/:id", handler.UpdateFormat)
	}

	group.POST("/preview", handler.Preview)
	group.POST("/generate", handler.Generate)

	group.GET("/list-display", handler.GetListDisplay)
	group.PUT("/list-display", handler.SaveListDisplay)
}
