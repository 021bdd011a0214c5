package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/routing_console/internal/core/ports/services"
	"github.com/SscSPs/routing_console/internal/dto"
	"github.com/SscSPs/routing_console/internal/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterAmountRoutes registers the stateless amount conversion endpoint.
func RegisterAmountRoutes(rg *gin.RouterGroup, converter portssvc.AmountConverterSvc) {
	rg.POST("/amounts/convert", func(c *gin.Context) {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		var req dto.ConvertAmountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, logger, err, "request format")
			return
		}

		res, err := converter.Convert(c.Request.Context(), req)
		if err != nil {
			respondServiceError(c, logger, err, "convert amount")
			return
		}
		c.JSON(http.StatusOK, res)
	})
}
