package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andeserp/fxcore_backend/internal/apperrors"
	portssvc "github.com/andeserp/fxcore_backend/internal/core/ports/services"
	"github.com/andeserp/fxcore_backend/internal/dto"
	"github.com/andeserp/fxcore_backend/internal/middleware"
)

// snapshotHandler handles HTTP requests for transaction snapshots.
type snapshotHandler struct {
	snapshotService portssvc.SnapshotSvcFacade
}

func newSnapshotHandler(ss portssvc.SnapshotSvcFacade) *snapshotHandler {
	return &snapshotHandler{snapshotService: ss}
}

// registerSnapshotRoutes registers routes related to transaction snapshots.
// There are no update or delete routes: snapshots are immutable.
func registerSnapshotRoutes(rg *gin.RouterGroup, snapshotService portssvc.SnapshotSvcFacade) {
	h := newSnapshotHandler(snapshotService)

	snapshots := rg.Group("/snapshots")
	{
		snapshots.POST("", h.createSnapshot)
		snapshots.GET("", h.listSnapshotsByTransaction)
		snapshots.GET("/:snapshotID", h.getSnapshotByID)
	}
}

// createSnapshot godoc
// @Summary Freeze a transaction's monetary context
// @Description Converts the payment to the base currency, computes taxes and IGTF, and stores the immutable record
// @Tags snapshots
// @Accept  json
// @Produce  json
// @Param   snapshot body dto.CreateSnapshotRequest true "Transaction and payment details"
// @Success 201 {object} dto.SnapshotResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 502 {object} map[string]string "No exchange rate available"
// @Security BearerAuth
// @Router /snapshots [post]
func (h *snapshotHandler) createSnapshot(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, userID, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req dto.CreateSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	snapshot, err := h.snapshotService.CreateSnapshot(c.Request.Context(), companyID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNoApplicableRate) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "No exchange rate available for the payment currency"})
		} else {
			logger.Error("Failed to create snapshot", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create snapshot"})
		}
		return
	}

	logger.Info("Snapshot created",
		slog.String("snapshot_id", snapshot.SnapshotID),
		slog.String("transaction_id", snapshot.TransactionID))
	c.JSON(http.StatusCreated, dto.ToSnapshotResponse(snapshot))
}

// getSnapshotByID godoc
// @Summary Get a snapshot
// @Tags snapshots
// @Produce  json
// @Param   snapshotID path string true "Snapshot ID"
// @Success 200 {object} dto.SnapshotResponse
// @Failure 404 {object} map[string]string "Snapshot not found"
// @Security BearerAuth
// @Router /snapshots/{snapshotID} [get]
func (h *snapshotHandler) getSnapshotByID(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, _, ok := requireIdentity(c)
	if !ok {
		return
	}

	snapshot, err := h.snapshotService.GetSnapshotByID(c.Request.Context(), companyID, c.Param("snapshotID"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Snapshot not found"})
		} else {
			logger.Error("Failed to get snapshot", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve snapshot"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToSnapshotResponse(snapshot))
}

// listSnapshotsByTransaction godoc
// @Summary List a transaction's snapshots
// @Description Retrieves the snapshots recorded for one business transaction, newest first
// @Tags snapshots
// @Produce  json
// @Param   transactionKind query string true "Transaction kind, e.g. invoice"
// @Param   transactionID query string true "Transaction ID"
// @Success 200 {array} dto.SnapshotResponse
// @Failure 400 {object} map[string]string "Missing transaction reference"
// @Security BearerAuth
// @Router /snapshots [get]
func (h *snapshotHandler) listSnapshotsByTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, _, ok := requireIdentity(c)
	if !ok {
		return
	}

	transactionKind := c.Query("transactionKind")
	transactionID := c.Query("transactionID")
	if transactionKind == "" || transactionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Both 'transactionKind' and 'transactionID' query parameters are required"})
		return
	}

	snapshots, err := h.snapshotService.ListSnapshotsByTransaction(c.Request.Context(), companyID, transactionKind, transactionID)
	if err != nil {
		logger.Error("Failed to list snapshots", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list snapshots"})
		return
	}
	c.JSON(http.StatusOK, dto.ToListSnapshotResponse(snapshots))
}
