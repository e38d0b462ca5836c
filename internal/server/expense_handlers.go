package server

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"timeledger/internal/models"
	"timeledger/internal/repository"
)

type expenseRequest struct {
	Username      string          `json:"username"`
	Client        string          `json:"client"`
	Project       string          `json:"project"`
	ExpenseDate   string          `json:"expense_date" binding:"required"`
	ExpenseType   string          `json:"expense_type"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method"`
	Vendor        string          `json:"vendor"`
	ReferenceNo   string          `json:"reference_no"`
}

type expenseStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (req *expenseRequest) toModel(c *gin.Context) (*models.Expense, bool) {
	expenseDate, err := time.Parse(dateLayout, req.ExpenseDate)
	if err != nil {
		badRequest(c, "expense_date must be formatted as "+dateLayout)
		return nil, false
	}

	claims := identity(c)
	username := req.Username
	if username == "" {
		username = claims.Username
	}
	if !canAccess(claims, username) {
		c.JSON(http.StatusForbidden, Response{Success: false, Error: "cannot write records for another user"})
		return nil, false
	}

	if req.Amount.IsNegative() {
		badRequest(c, "amount must not be negative")
		return nil, false
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	return &models.Expense{
		Username:      username,
		Client:        req.Client,
		Project:       req.Project,
		ExpenseDate:   expenseDate,
		ExpenseType:   req.ExpenseType,
		Description:   req.Description,
		Amount:        req.Amount,
		Currency:      currency,
		PaymentMethod: req.PaymentMethod,
		Vendor:        req.Vendor,
		ReferenceNo:   req.ReferenceNo,
		Status:        models.ExpenseStatusDraft,
	}, true
}

// getOwnedExpense loads the expense and enforces ownership.
func (h *Handlers) getOwnedExpense(c *gin.Context, action string) (*models.Expense, bool) {
	id, ok := pathID(c)
	if !ok {
		return nil, false
	}

	expense, err := h.expenses.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondRepoError(c, err, action)
		return nil, false
	}
	if !canAccess(identity(c), expense.Username) {
		c.JSON(http.StatusForbidden, Response{Success: false, Error: "not your record"})
		return nil, false
	}
	return expense, true
}

// ListExpenses handles GET /api/v1/expenses
func (h *Handlers) ListExpenses(c *gin.Context) {
	claims := identity(c)

	filter := repository.ExpenseFilter{
		Username: c.Query("username"),
		Status:   c.Query("status"),
	}
	if claims.Role != models.RoleAdmin {
		filter.Username = claims.Username
	}
	if filter.Status != "" && !models.ValidExpenseStatus(filter.Status) {
		badRequest(c, "unknown expense status")
		return
	}

	expenses, err := h.expenses.List(c.Request.Context(), filter)
	if err != nil {
		h.respondRepoError(c, err, "list expenses")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: expenses})
}

// CreateExpense handles POST /api/v1/expenses. New expenses start in Draft.
func (h *Handlers) CreateExpense(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "expense_date is required")
		return
	}

	expense, ok := req.toModel(c)
	if !ok {
		return
	}

	if err := h.expenses.Create(c.Request.Context(), expense); err != nil {
		h.respondRepoError(c, err, "create expense")
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: expense})
}

// GetExpense handles GET /api/v1/expenses/:id
func (h *Handlers) GetExpense(c *gin.Context) {
	expense, ok := h.getOwnedExpense(c, "get expense")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: expense})
}

// UpdateExpense handles PUT /api/v1/expenses/:id. Status is changed only
// through the status endpoint.
func (h *Handlers) UpdateExpense(c *gin.Context) {
	existing, ok := h.getOwnedExpense(c, "update expense")
	if !ok {
		return
	}

	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "expense_date is required")
		return
	}

	expense, ok := req.toModel(c)
	if !ok {
		return
	}
	expense.ID = existing.ID
	expense.Status = existing.Status
	expense.ReceiptKey = existing.ReceiptKey

	if err := h.expenses.Update(c.Request.Context(), expense); err != nil {
		h.respondRepoError(c, err, "update expense")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: expense})
}

// DeleteExpense handles DELETE /api/v1/expenses/:id
func (h *Handlers) DeleteExpense(c *gin.Context) {
	expense, ok := h.getOwnedExpense(c, "delete expense")
	if !ok {
		return
	}

	if err := h.expenses.Delete(c.Request.Context(), expense.ID); err != nil {
		h.respondRepoError(c, err, "delete expense")
		return
	}

	if expense.ReceiptKey != "" {
		if err := h.receipts.Delete(c.Request.Context(), expense.ReceiptKey); err != nil {
			h.logger.Warn("Failed to delete orphaned receipt",
				zap.String("key", expense.ReceiptKey), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// ChangeExpenseStatus handles POST /api/v1/expenses/:id/status. Illegal
// transitions come back as 409.
func (h *Handlers) ChangeExpenseStatus(c *gin.Context) {
	expense, ok := h.getOwnedExpense(c, "change expense status")
	if !ok {
		return
	}

	var req expenseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}

	if err := expense.Transition(req.Status); err != nil {
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
		return
	}

	if err := h.expenses.UpdateStatus(c.Request.Context(), expense.ID, expense.Status); err != nil {
		h.respondRepoError(c, err, "change expense status")
		return
	}

	h.notifyStatusChange(c, expense)

	c.JSON(http.StatusOK, Response{Success: true, Data: expense})
}

// notifyStatusChange emails the expense owner and, on submission, the
// approver. Email failures never fail the request.
func (h *Handlers) notifyStatusChange(c *gin.Context, expense *models.Expense) {
	owner, err := h.users.GetByUsername(c.Request.Context(), expense.Username)
	if err != nil {
		h.logger.Warn("No owner account for status notification",
			zap.String("username", expense.Username), zap.Error(err))
	} else if err := h.mailer.SendExpenseStatusChanged(expense, owner.Email); err != nil {
		h.logger.Warn("Failed to send status email",
			zap.String("username", expense.Username), zap.Error(err))
	}

	if expense.Status == models.ExpenseStatusSubmitted && h.cfg.Email.ApproverEmail != "" {
		if err := h.mailer.SendExpenseStatusChanged(expense, h.cfg.Email.ApproverEmail); err != nil {
			h.logger.Warn("Failed to send approver email", zap.Error(err))
		}
	}
}

// UploadReceipt handles POST /api/v1/expenses/:id/receipt (multipart,
// field "receipt"). Replaces any previous receipt.
func (h *Handlers) UploadReceipt(c *gin.Context) {
	expense, ok := h.getOwnedExpense(c, "upload receipt")
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Import.MaxUploadBytes)

	file, header, err := c.Request.FormFile("receipt")
	if err != nil {
		badRequest(c, "multipart field 'receipt' is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		badRequest(c, "failed to read upload")
		return
	}

	key := uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	contentType := header.Header.Get("Content-Type")

	if err := h.receipts.Save(c.Request.Context(), key, content, contentType); err != nil {
		h.logger.Error("Failed to store receipt", zap.String("key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "upload receipt failed"})
		return
	}

	if err := h.expenses.UpdateReceiptKey(c.Request.Context(), expense.ID, key); err != nil {
		h.respondRepoError(c, err, "upload receipt")
		return
	}

	if expense.ReceiptKey != "" && expense.ReceiptKey != key {
		if err := h.receipts.Delete(c.Request.Context(), expense.ReceiptKey); err != nil {
			h.logger.Warn("Failed to delete replaced receipt",
				zap.String("key", expense.ReceiptKey), zap.Error(err))
		}
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: gin.H{"receipt_key": key}})
}

// DownloadReceipt handles GET /api/v1/expenses/:id/receipt
func (h *Handlers) DownloadReceipt(c *gin.Context) {
	expense, ok := h.getOwnedExpense(c, "download receipt")
	if !ok {
		return
	}
	if expense.ReceiptKey == "" {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "no receipt attached"})
		return
	}

	content, contentType, err := h.receipts.Load(c.Request.Context(), expense.ReceiptKey)
	if err != nil {
		h.logger.Error("Failed to load receipt",
			zap.String("key", expense.ReceiptKey), zap.Error(err))
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "receipt not found"})
		return
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Content-Disposition", `attachment; filename="`+expense.ReceiptKey+`"`)
	c.Data(http.StatusOK, contentType, content)
}
