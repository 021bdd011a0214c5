package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/routing_console/internal/core/ports/services"
	"github.com/SscSPs/routing_console/internal/dto"
	"github.com/SscSPs/routing_console/internal/middleware"
	"github.com/gin-gonic/gin"
)

// editorHandler handles HTTP requests made by resource editors.
type editorHandler struct {
	editorService portssvc.EditorSvcFacade
	feeService    portssvc.FeeWriterSvc
	reportService portssvc.ReconcileReportSvc
}

// RegisterEditorRoutes registers routes for loading and submitting a parent entity.
func RegisterEditorRoutes(
	rg *gin.RouterGroup,
	editorService portssvc.EditorSvcFacade,
	feeService portssvc.FeeWriterSvc,
	reportService portssvc.ReconcileReportSvc,
) {
	h := &editorHandler{
		editorService: editorService,
		feeService:    feeService,
		reportService: reportService,
	}

	entity := rg.Group("/entities/:parentType/:id")
	{
		entity.GET("", h.loadEditor)
		entity.PUT("", h.submit)
		entity.POST("/fees", h.createFee)
		entity.DELETE("/fees/:feeRef", h.removeFee)
		entity.GET("/reconcile-reports", h.listReports)
	}
}

// loadEditor returns the entity an editor form is seeded from, with fee
// values rendered as percentages.
func (h *editorHandler) loadEditor(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var uri dto.ParentURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, logger, err, "entity path")
		return
	}
	ref := uri.Ref()
	logger = logger.With(slog.String("parent", ref.String()))

	entity, err := h.editorService.LoadEditor(c.Request.Context(), ref)
	if err != nil {
		respondServiceError(c, logger, err, "load entity")
		return
	}

	res, err := dto.ToEditorResponse(entity)
	if err != nil {
		// the backend returned a fee value outside [0, 1]
		logger.Error("Entity has an unrenderable fee", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Entity contains an invalid fee value"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// submit applies an editor submission. A fully successful submit answers 200;
// when some operations failed the per-operation outcome is returned with 207
// so the console can show which codes did not go through.
func (h *editorHandler) submit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var uri dto.ParentURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, logger, err, "entity path")
		return
	}
	var req dto.SubmitEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err, "request format")
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	ref := uri.Ref()
	logger = logger.With(slog.String("parent", ref.String()))
	logger.Info("Received editor submit",
		slog.Int("associations", len(req.Associations)),
		slog.Int("fees", len(req.Fees)))

	outcome, err := h.editorService.Submit(c.Request.Context(), ref, req, userID)
	if outcome == nil {
		respondServiceError(c, logger, err, "submit entity")
		return
	}
	if err != nil {
		logger.Warn("Submit partially failed", slog.String("error", err.Error()))
		c.JSON(http.StatusMultiStatus, dto.ToSubmitEntityResponse(outcome))
		return
	}
	c.JSON(http.StatusOK, dto.ToSubmitEntityResponse(outcome))
}

func (h *editorHandler) createFee(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var uri dto.ParentURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, logger, err, "entity path")
		return
	}
	var req dto.CreateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err, "request format")
		return
	}
	ref := uri.Ref()
	logger = logger.With(slog.String("parent", ref.String()))

	draft, err := h.feeService.CreateFee(c.Request.Context(), ref, req)
	if err != nil {
		respondServiceError(c, logger, err, "create fee")
		return
	}
	c.JSON(http.StatusCreated, dto.ToCreateFeeResponse(draft, req.Percentage))
}

func (h *editorHandler) removeFee(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var uri dto.FeeURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, logger, err, "fee path")
		return
	}
	ref := uri.Ref()
	logger = logger.With(slog.String("parent", ref.String()), slog.String("fee_ref", uri.FeeRef))

	if err := h.feeService.RemoveFee(c.Request.Context(), ref, uri.FeeRef); err != nil {
		respondServiceError(c, logger, err, "remove fee")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *editorHandler) listReports(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var uri dto.ParentURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, logger, err, "entity path")
		return
	}
	var params dto.ListReconcileReportsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err, "query parameters")
		return
	}
	ref := uri.Ref()

	res, err := h.reportService.ListReports(c.Request.Context(), ref, params)
	if err != nil {
		respondServiceError(c, logger.With(slog.String("parent", ref.String())), err, "list reconcile reports")
		return
	}
	c.JSON(http.StatusOK, res)
}
