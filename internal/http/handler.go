package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/askhat/gigledger/internal/http/middleware"
	"github.com/askhat/gigledger/internal/model"
	"github.com/askhat/gigledger/internal/service"
)

type Handler struct {
	contracts *service.ContractService
	payments  *service.PaymentService
	reports   *service.ReportService
	log       zerolog.Logger
}

func NewHandler(contracts *service.ContractService, payments *service.PaymentService, reports *service.ReportService, log zerolog.Logger) *Handler {
	return &Handler{contracts: contracts, payments: payments, reports: reports, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.GET("/profiles/me", h.getOwnProfile)
	protected.GET("/contracts/:id", h.getContract)
	protected.GET("/contracts", h.listContracts)
	protected.GET("/jobs/unpaid", h.listUnpaidJobs)
	protected.POST("/jobs/:id/pay", h.payJob)
	protected.POST("/balances/deposit/:userId", h.deposit)

	admin := protected.Group("/admin")
	admin.GET("/best-profession", h.bestProfession)
	admin.GET("/best-clients", h.bestClients)
	admin.POST("/reports/export", h.exportReport)
	admin.POST("/reports/export/pdf", h.exportReportPDF)
}

type contractResponse struct {
	ID           string `json:"id"`
	ClientID     string `json:"client_id"`
	ContractorID string `json:"contractor_id"`
	Terms        string `json:"terms"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

type jobResponse struct {
	ID          string  `json:"id"`
	ContractID  string  `json:"contract_id"`
	Description string  `json:"description"`
	Price       string  `json:"price"`
	Paid        bool    `json:"paid"`
	PaymentDate *string `json:"payment_date,omitempty"`
}

type clientTotalResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Paid     string `json:"paid"`
}

type profileResponse struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Profession string `json:"profession,omitempty"`
	Role       string `json:"role"`
	Balance    string `json:"balance"`
}

func (h *Handler) getOwnProfile(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	profile, err := h.contracts.GetOwnProfile(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profileResponse{
		ID:         profile.ID.String(),
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
		Profession: profile.Profession,
		Role:       string(profile.Role),
		Balance:    profile.Balance.StringFixed(2),
	})
}

func (h *Handler) getContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contractID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	contract, err := h.contracts.GetContract(c.Request.Context(), principal, contractID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(*contract))
}

func (h *Handler) listContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contracts, err := h.contracts.ListContracts(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response := make([]contractResponse, 0, len(contracts))
	for _, contract := range contracts {
		response = append(response, toContractResponse(contract))
	}
	c.JSON(http.StatusOK, response)
}

func (h *Handler) listUnpaidJobs(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	jobs, err := h.contracts.ListUnpaidJobs(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response := make([]jobResponse, 0, len(jobs))
	for _, job := range jobs {
		response = append(response, toJobResponse(job))
	}
	c.JSON(http.StatusOK, response)
}

func (h *Handler) payJob(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	jobID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	if err := h.payments.PayJob(c.Request.Context(), principal, jobID); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "paid"})
}

type depositRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

func (h *Handler) deposit(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	targetID, err := uuid.Parse(strings.TrimSpace(c.Param("userId")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.payments.Deposit(c.Request.Context(), principal, targetID, req.Amount); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deposited"})
}

func (h *Handler) bestProfession(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	start, end, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	profession, err := h.reports.BestProfession(c.Request.Context(), principal, start, end)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profession": profession})
}

func (h *Handler) bestClients(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	start, end, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	clients, err := h.reports.BestClients(c.Request.Context(), principal, start, end, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response := make([]clientTotalResponse, 0, len(clients))
	for _, client := range clients {
		response = append(response, clientTotalResponse{
			ID:       client.ID.String(),
			FullName: client.FullName,
			Paid:     client.Paid.StringFixed(2),
		})
	}
	c.JSON(http.StatusOK, response)
}

type exportRequest struct {
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
}

func (h *Handler) exportReport(c *gin.Context) {
	h.export(c, false)
}

func (h *Handler) exportReportPDF(c *gin.Context) {
	h.export(c, true)
}

func (h *Handler) export(c *gin.Context, asPDF bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := parseDate(req.PeriodStart, false)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_start"})
		return
	}
	end, err := parseDate(req.PeriodEnd, true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_end"})
		return
	}

	var result *service.ExportResult
	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if asPDF {
		contentType = "application/pdf"
		result, err = h.reports.ExportPDF(c.Request.Context(), principal, start, end)
	} else {
		result, err = h.reports.ExportExcel(c.Request.Context(), principal, start, end)
	}
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentType, result.Content)
}

func (h *Handler) parsePeriod(c *gin.Context) (time.Time, time.Time, bool) {
	start, err := parseDate(c.Query("start"), false)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start"})
		return time.Time{}, time.Time{}, false
	}
	end, err := parseDate(c.Query("end"), true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end"})
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrJobAlreadyPaid):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDepositCeiling):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("ledger operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func toContractResponse(contract model.Contract) contractResponse {
	return contractResponse{
		ID:           contract.ID.String(),
		ClientID:     contract.ClientID.String(),
		ContractorID: contract.ContractorID.String(),
		Terms:        contract.Terms,
		Status:       string(contract.Status),
		CreatedAt:    contract.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toJobResponse(job model.Job) jobResponse {
	response := jobResponse{
		ID:          job.ID.String(),
		ContractID:  job.ContractID.String(),
		Description: job.Description,
		Price:       job.Price.StringFixed(2),
		Paid:        job.Paid,
	}
	if job.PaymentDate != nil {
		formatted := job.PaymentDate.UTC().Format(time.RFC3339)
		response.PaymentDate = &formatted
	}
	return response
}

// parseDate accepts timestamps and plain dates. A date-only end bound is
// promoted to the end of that day so the period stays inclusive.
func parseDate(raw string, endOfDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if endOfDay && layout == "2006-01-02" {
			parsed = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return parsed, nil
	}
	return time.Time{}, service.ErrInvalidInput
}
