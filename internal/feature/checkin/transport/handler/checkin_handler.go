// Package handler provides the HTTP handlers for the checkin feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"checkin_backend/internal/feature/checkin/domain/entity"
	"checkin_backend/internal/feature/checkin/transport/http/dto"
	"checkin_backend/internal/feature/checkin/usecase"
	identityusecase "checkin_backend/internal/feature/identity/usecase"
)

// CheckinUsecase defines the check-in operations the handler depends on.
type CheckinUsecase interface {
	CheckIn(ctx context.Context, identityID, reason string) (*entity.Visit, error)
	QuickCheckIn(ctx context.Context, in usecase.QuickCheckInInput) (*entity.Visit, error)
}

// CheckinHandler handles the visitor-facing check-in endpoints.
type CheckinHandler struct {
	checkins CheckinUsecase
}

// NewCheckinHandler creates a CheckinHandler with its usecase injected.
func NewCheckinHandler(checkins CheckinUsecase) *CheckinHandler {
	return &CheckinHandler{checkins: checkins}
}

// respondError translates check-in failures into HTTP responses.
func respondError(c *gin.Context, err error) {
	var vErr *identityusecase.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message, "field": vErr.Field})
	case errors.Is(err, usecase.ErrDuplicateCheckIn):
		c.JSON(http.StatusConflict, gin.H{"error": "already checked in, please wait a minute before checking in again"})
	case errors.Is(err, identityusecase.ErrIdentityNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "identity not found"})
	case errors.Is(err, identityusecase.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "this email is already registered"})
	case errors.Is(err, identityusecase.ErrNoCredential):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no PIN is set for this account, please contact staff"})
	case errors.Is(err, identityusecase.ErrPINMismatch):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect PIN"})
	default:
		slog.Error("check-in failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed, please try again"})
	}
}

// CheckIn records a visit for an already-resolved identity.
// - 400 on a bad reason (field-tagged)
// - 404 when the identity does not exist
// - 409 when the identity checked in inside the suppression window
// - 200 with the visit id on success
func (h *CheckinHandler) CheckIn(c *gin.Context) {
	var req dto.CheckInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("check-in validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	visit, err := h.checkins.CheckIn(c.Request.Context(), req.IdentityID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	slog.Info("visit recorded", "visit_id", visit.ID, "identity_id", visit.IdentityID)
	c.JSON(http.StatusOK, gin.H{"visit_id": visit.ID})
}

// QuickCheckIn is the single-step flow: resolve or register the identity
// from the form, then record the visit.
func (h *CheckinHandler) QuickCheckIn(c *gin.Context) {
	var req dto.QuickCheckInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("quick check-in validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	visit, err := h.checkins.QuickCheckIn(c.Request.Context(), usecase.QuickCheckInInput{
		Email:       req.Email,
		PIN:         req.PIN,
		Name:        req.Name,
		Disciplines: req.Disciplines,
		Reason:      req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	slog.Info("visit recorded", "visit_id", visit.ID, "identity_id", visit.IdentityID)
	c.JSON(http.StatusOK, gin.H{"visit_id": visit.ID})
}
