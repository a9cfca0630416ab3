// Package handler provides the HTTP handlers for the identity feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"checkin_backend/internal/feature/identity/domain/entity"
	"checkin_backend/internal/feature/identity/transport/http/dto"
	"checkin_backend/internal/feature/identity/usecase"
)

// IdentityUsecase defines the identity operations the handler depends on.
// Following Go convention, the interface is defined by the consumer
// (handler), not the provider (usecase).
type IdentityUsecase interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*entity.Identity, error)
	Authenticate(ctx context.Context, email, pin string) (*entity.Identity, error)
	LookupByEmail(ctx context.Context, email string) (*usecase.LookupResult, error)
	LookupByPIN(ctx context.Context, pin string) (*entity.Identity, error)
	UpdateProfile(ctx context.Context, in usecase.UpdateProfileInput) (*entity.Identity, error)
}

// IdentityHandler handles the visitor-facing identity endpoints.
type IdentityHandler struct {
	identities IdentityUsecase
}

// NewIdentityHandler creates an IdentityHandler with its usecase injected.
func NewIdentityHandler(identities IdentityUsecase) *IdentityHandler {
	return &IdentityHandler{identities: identities}
}

// respondError translates usecase failures into HTTP responses. Store
// failures are logged with their cause and surfaced as a generic message,
// never verbatim.
func respondError(c *gin.Context, err error) {
	var vErr *usecase.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message, "field": vErr.Field})
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "this email is already registered"})
	case errors.Is(err, usecase.ErrIdentityNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "identity not found"})
	default:
		slog.Error("identity operation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed, please try again"})
	}
}

// Register handles new visitor registration.
// - 400 on malformed or out-of-range input (field-tagged)
// - 409 when the email is already registered
// - 200 with the new identity id on success
func (h *IdentityHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	identity, err := h.identities.Register(c.Request.Context(), usecase.RegisterInput{
		Email:         req.Email,
		Name:          req.Name,
		PreferredName: req.PreferredName,
		Workplace:     req.Workplace,
		PIN:           req.PIN,
		Disciplines:   req.Disciplines,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	slog.Info("visitor registered", "identity_id", identity.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"id": identity.ID})
}

// Login authenticates an email/PIN pair. The three failure cases each get
// their own message so legitimate visitors know what to fix.
func (h *IdentityHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	identity, err := h.identities.Authenticate(c.Request.Context(), req.Email, req.PIN)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrIdentityNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no registration found for this email, please register first"})
		case errors.Is(err, usecase.ErrNoCredential):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no PIN is set for this account, please contact staff"})
		case errors.Is(err, usecase.ErrPINMismatch):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect PIN"})
		default:
			respondError(c, err)
		}
		slog.Warn("login failed", "error", err, "remote_addr", c.ClientIP())
		return
	}
	slog.Info("visitor login successful", "identity_id", identity.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.LookupResp{Exists: true, User: dto.NewIdentityView(identity)})
}

// Lookup resolves an identity by email. A miss is a 200 with exists=false,
// not an error; on a hit the most recent visit is attached for pre-fill.
func (h *IdentityHandler) Lookup(c *gin.Context) {
	var req dto.LookupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	res, err := h.identities.LookupByEmail(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	if res.Identity == nil {
		c.JSON(http.StatusOK, dto.LookupResp{Exists: false})
		return
	}
	c.JSON(http.StatusOK, dto.LookupResp{
		Exists:    true,
		User:      dto.NewIdentityView(res.Identity),
		LastVisit: dto.NewLastVisitView(res.LastVisit),
	})
}

// LookupByPIN resolves an identity by PIN alone. The response never echoes
// the credential.
func (h *IdentityHandler) LookupByPIN(c *gin.Context) {
	var req dto.PINLookupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	identity, err := h.identities.LookupByPIN(c.Request.Context(), req.PIN)
	if err != nil {
		respondError(c, err)
		return
	}
	if identity == nil {
		c.JSON(http.StatusOK, dto.LookupResp{Exists: false})
		return
	}
	c.JSON(http.StatusOK, dto.LookupResp{Exists: true, User: dto.NewIdentityView(identity)})
}

// UpdateProfile edits name, workplace, disciplines and optionally the PIN.
func (h *IdentityHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("profile update validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	identity, err := h.identities.UpdateProfile(c.Request.Context(), usecase.UpdateProfileInput{
		IdentityID:    req.IdentityID,
		Name:          req.Name,
		PreferredName: req.PreferredName,
		Workplace:     req.Workplace,
		PIN:           req.PIN,
		Disciplines:   req.Disciplines,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	slog.Info("profile updated", "identity_id", identity.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
