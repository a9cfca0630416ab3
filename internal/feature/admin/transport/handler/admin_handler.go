// Package handler provides the HTTP handlers for the admin dashboard.
package handler

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"checkin_backend/internal/feature/admin/transport/http/dto"
	"checkin_backend/internal/feature/admin/usecase"
	identityentity "checkin_backend/internal/feature/identity/domain/entity"
	identityusecase "checkin_backend/internal/feature/identity/usecase"
)

// dateFormat is the query-parameter date layout for the export filters.
const dateFormat = "2006-01-02"

// SummaryProvider serves the dashboard aggregate. In production this is the
// Redis-caching decorator around the admin usecase.
type SummaryProvider interface {
	GetSummary(ctx context.Context) (*usecase.Summary, error)
}

// AdminUsecase defines the remaining admin operations the handler depends on.
type AdminUsecase interface {
	ListIdentities(ctx context.Context, p usecase.PageRequest) (*usecase.IdentityPage, error)
	IdentityVisits(ctx context.Context, identityID string) (*usecase.IdentityHistory, error)
	ExportCSV(ctx context.Context, f usecase.ExportFilter) (string, error)
}

// TokenGenerator issues the admin dashboard token after a successful login.
type TokenGenerator interface {
	GenerateToken(subject string) (string, error)
}

// AdminHandler handles the password-gated staff endpoints.
type AdminHandler struct {
	summaries SummaryProvider
	admin     AdminUsecase
	tokens    TokenGenerator
	password  string
}

// NewAdminHandler creates an AdminHandler. password is the configured admin
// password; when empty, admin login is disabled.
func NewAdminHandler(summaries SummaryProvider, admin AdminUsecase, tokens TokenGenerator, password string) *AdminHandler {
	return &AdminHandler{
		summaries: summaries,
		admin:     admin,
		tokens:    tokens,
		password:  password,
	}
}

// Login verifies the admin password in constant time and issues a JWT.
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if h.password == "" {
		slog.Error("admin login attempted but ADMIN_PASSWORD is not set")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) != 1 {
		slog.Warn("admin login failed", "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect password"})
		return
	}
	token, err := h.tokens.GenerateToken("admin")
	if err != nil {
		slog.Error("admin token generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed, please try again"})
		return
	}
	slog.Info("admin login successful", "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.TokenResp{Token: token})
}

// Analytics serves the dashboard aggregate.
func (h *AdminHandler) Analytics(c *gin.Context) {
	summary, err := h.summaries.GetSummary(c.Request.Context())
	if err != nil {
		slog.Error("analytics aggregation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed, please try again"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Identities serves the paginated, sortable identity listing with visit
// counts. Query parameters: page, per_page, sort, order.
func (h *AdminHandler) Identities(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "25"))

	result, err := h.admin.ListIdentities(c.Request.Context(), usecase.PageRequest{
		Page:    page,
		PerPage: perPage,
		Sort:    c.Query("sort"),
		Order:   c.Query("order"),
	})
	if err != nil {
		slog.Error("identity listing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed, please try again"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// IdentityVisits serves one identity's full visit history.
func (h *AdminHandler) IdentityVisits(c *gin.Context) {
	history, err := h.admin.IdentityVisits(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, identityusecase.ErrIdentityNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "identity not found"})
			return
		}
		slog.Error("visit history read failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed, please try again"})
		return
	}
	c.JSON(http.StatusOK, history)
}

// Export streams the filtered visit log as a CSV download. Query
// parameters: start, end (YYYY-MM-DD, end inclusive), discipline, q.
func (h *AdminHandler) Export(c *gin.Context) {
	filter := usecase.ExportFilter{
		Search: c.Query("q"),
	}
	if s := c.Query("start"); s != "" {
		t, err := time.ParseInLocation(dateFormat, s, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date", "field": "start"})
			return
		}
		filter.Start = &t
	}
	if s := c.Query("end"); s != "" {
		t, err := time.ParseInLocation(dateFormat, s, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date", "field": "end"})
			return
		}
		// End date is inclusive: filter up to the following midnight.
		cutoff := t.AddDate(0, 0, 1)
		filter.End = &cutoff
	}
	if s := c.Query("discipline"); s != "" {
		d := identityentity.Discipline(s)
		if !d.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown discipline", "field": "discipline"})
			return
		}
		filter.Discipline = d
	}

	csv, err := h.admin.ExportCSV(c.Request.Context(), filter)
	if err != nil {
		slog.Error("CSV export failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed, please try again"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="checkins.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csv))
}
