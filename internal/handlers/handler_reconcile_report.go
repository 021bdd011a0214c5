package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/routing_console/internal/core/ports/services"
	"github.com/SscSPs/routing_console/internal/dto"
	"github.com/SscSPs/routing_console/internal/middleware"
	"github.com/gin-gonic/gin"
)

type reconcileReportHandler struct {
	reportService portssvc.ReconcileReportSvc
}

// RegisterReconcileReportRoutes registers direct report lookups.
func RegisterReconcileReportRoutes(rg *gin.RouterGroup, reportService portssvc.ReconcileReportSvc) {
	h := &reconcileReportHandler{reportService: reportService}
	rg.GET("/reconcile-reports/:reportID", h.getReport)
}

func (h *reconcileReportHandler) getReport(c *gin.Context) {
	reportID := c.Param("reportID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("report_id", reportID))

	report, err := h.reportService.GetReport(c.Request.Context(), reportID)
	if err != nil {
		respondServiceError(c, logger, err, "get reconcile report")
		return
	}
	c.JSON(http.StatusOK, dto.ToReconcileReportResponse(report))
}
