package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/clm-workflow/internal/http/middleware"
	"github.com/nurpe/clm-workflow/internal/model"
	"github.com/nurpe/clm-workflow/internal/service"
)

type Handler struct {
	workflow *service.WorkflowService
	exports  *service.ExportService
	log      zerolog.Logger
}

func NewHandler(workflow *service.WorkflowService, exports *service.ExportService, log zerolog.Logger) *Handler {
	return &Handler{workflow: workflow, exports: exports, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/contracts", h.createContract)
	protected.GET("/contracts", h.listContracts)
	protected.GET("/contracts/:id", h.getContract)
	protected.GET("/contracts/:id/audit", h.listAudit)
	protected.GET("/contracts/:id/export/pdf", h.exportContractPDF)

	protected.POST("/contracts/:id/submit", h.contractAction(h.workflow.Submit))
	protected.POST("/contracts/:id/send-to-finance", h.contractAction(h.workflow.SendToFinance))
	protected.POST("/contracts/:id/approve", h.contractAction(h.workflow.MarkApproved))
	protected.POST("/contracts/:id/send-to-counterparty", h.contractAction(h.workflow.SendToCounterparty))
	protected.POST("/contracts/:id/countersign", h.contractAction(h.workflow.Countersign))
	protected.POST("/contracts/:id/activate", h.contractAction(h.workflow.Activate))
	protected.POST("/contracts/:id/cancel", h.contractAction(h.workflow.Cancel))
	protected.POST("/contracts/:id/terminate", h.contractAction(h.workflow.Terminate))
	protected.POST("/contracts/:id/documents/final", h.attachFinalDocument)

	protected.POST("/approvals/contracts/:id/escalate-to-legal-head", h.escalateToLegalHead)
	protected.POST("/approvals/:id/approve", h.approveApproval)
	protected.POST("/approvals/:id/reject", h.rejectApproval)
	protected.POST("/approvals/export", h.exportApprovals)
}

type createContractRequest struct {
	Title             string  `json:"title" binding:"required"`
	TemplateID        *string `json:"template_id"`
	Content           string  `json:"content"`
	AnnexureData      string  `json:"annexure_data"`
	FieldData         string  `json:"field_data"`
	CounterpartyName  string  `json:"counterparty_name"`
	CounterpartyEmail string  `json:"counterparty_email"`
	StartDate         *string `json:"start_date"`
	EndDate           *string `json:"end_date"`
	Amount            float64 `json:"amount"`
}

func (h *Handler) createContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.CreateContractInput{
		Title:             req.Title,
		Content:           req.Content,
		CounterpartyName:  req.CounterpartyName,
		CounterpartyEmail: req.CounterpartyEmail,
		Amount:            req.Amount,
	}
	if req.AnnexureData != "" {
		input.AnnexureData = []byte(req.AnnexureData)
	}
	if req.FieldData != "" {
		input.FieldData = []byte(req.FieldData)
	}
	if req.TemplateID != nil {
		templateID, err := uuid.Parse(*req.TemplateID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template_id"})
			return
		}
		input.TemplateID = &templateID
	}
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
			return
		}
		input.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := parseDate(*req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
			return
		}
		input.EndDate = &end
	}

	contract, err := h.workflow.CreateContract(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contractResponse(contract))
}

func (h *Handler) getContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	contract, approvals, err := h.workflow.GetContract(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response := contractResponse(contract)
	list := make([]gin.H, 0, len(approvals))
	for i := range approvals {
		list = append(list, approvalResponse(&approvals[i]))
	}
	response["approvals"] = list
	c.JSON(http.StatusOK, response)
}

func (h *Handler) listContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var status *model.ContractStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		s := model.ContractStatus(strings.ToUpper(raw))
		status = &s
	}

	contracts, err := h.workflow.ListContracts(c.Request.Context(), principal, status)
	if err != nil {
		h.handleError(c, err)
		return
	}

	list := make([]gin.H, 0, len(contracts))
	for i := range contracts {
		list = append(list, contractResponse(&contracts[i]))
	}
	c.JSON(http.StatusOK, gin.H{"contracts": list})
}

func (h *Handler) listAudit(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	entries, err := h.workflow.ListAudit(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	list := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		list = append(list, gin.H{
			"id":          entry.ID,
			"actor_id":    entry.ActorID,
			"action":      entry.Action,
			"module":      entry.Module,
			"target_type": entry.TargetType,
			"target_id":   entry.TargetID,
			"old_value":   rawJSON(entry.OldValue),
			"new_value":   rawJSON(entry.NewValue),
			"metadata":    rawJSON(entry.Metadata),
			"created_at":  entry.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"entries": list})
}

func (h *Handler) contractAction(action func(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Contract, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.MustPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
			return
		}

		id, err := parseID(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
			return
		}

		contract, err := action(c.Request.Context(), principal, id)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, contractResponse(contract))
	}
}

type escalateRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *Handler) escalateToLegalHead(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	var req escalateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	approval, err := h.workflow.EscalateToLegalHead(c.Request.Context(), principal, id, req.Reason)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, approvalResponse(approval))
}

type resolveRequest struct {
	Comment string `json:"comment"`
}

func (h *Handler) approveApproval(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid approval id"})
		return
	}

	// Comment is optional on approve, so an empty body is fine.
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	approval, err := h.workflow.Approve(c.Request.Context(), principal, id, req.Comment)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, approvalResponse(approval))
}

func (h *Handler) rejectApproval(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid approval id"})
		return
	}

	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	approval, err := h.workflow.Reject(c.Request.Context(), principal, id, req.Comment)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, approvalResponse(approval))
}

type attachFinalRequest struct {
	DocumentID string `json:"document_id" binding:"required"`
}

func (h *Handler) attachFinalDocument(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	var req attachFinalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	documentID, err := uuid.Parse(strings.TrimSpace(req.DocumentID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document_id"})
		return
	}

	contract, err := h.workflow.AttachFinalDocument(c.Request.Context(), principal, id, documentID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contractResponse(contract))
}

type exportApprovalsRequest struct {
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
}

func (h *Handler) exportApprovals(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req exportApprovalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := parseDate(req.PeriodStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_start"})
		return
	}
	end, err := parseDate(req.PeriodEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_end"})
		return
	}

	result, err := h.exports.ApprovalsRegister(c.Request.Context(), principal, start, end)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

func (h *Handler) exportContractPDF(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	result, err := h.exports.ContractPDF(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrApprovalNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotPending), errors.Is(err, service.ErrDuplicatePending), errors.Is(err, service.ErrStaleState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoEligibleApprover):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("workflow action failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func contractResponse(contract *model.Contract) gin.H {
	return gin.H{
		"id":                 contract.ID,
		"reference":          contract.Reference,
		"title":              contract.Title,
		"status":             contract.Status,
		"template_id":        contract.TemplateID,
		"organization_id":    contract.OrganizationID,
		"created_by_user_id": contract.CreatedByUserID,
		"counterparty_name":  contract.CounterpartyName,
		"counterparty_email": contract.CounterpartyEmail,
		"start_date":         contract.StartDate,
		"end_date":           contract.EndDate,
		"amount":             contract.Amount,
		"final_document_id":  contract.FinalDocumentID,
		"created_at":         contract.CreatedAt,
		"updated_at":         contract.UpdatedAt,
	}
}

func approvalResponse(approval *model.Approval) gin.H {
	return gin.H{
		"id":          approval.ID,
		"contract_id": approval.ContractID,
		"type":        approval.Type,
		"status":      approval.Status,
		"actor_id":    approval.ActorID,
		"due_date":    approval.DueDate,
		"comment":     approval.Comment,
		"reason":      approval.Reason,
		"resolved_by": approval.ResolvedBy,
		"resolved_at": approval.ResolvedAt,
		"created_at":  approval.CreatedAt,
	}
}

func rawJSON(data []byte) interface{} {
	if len(data) == 0 {
		return nil
	}
	return json.RawMessage(data)
}

func parseID(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Param("id")))
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
