package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sebuszqo/ExpenseTracker/internal/auth"
	"github.com/sebuszqo/ExpenseTracker/internal/expense/domain"
	expenseErrors "github.com/sebuszqo/ExpenseTracker/internal/expense/errors"
	"github.com/sebuszqo/ExpenseTracker/internal/logger"
)

type ExpenseServiceInterface interface {
	ListExpenses(ctx context.Context, userID string) ([]domain.Expense, error)
	CreateExpense(ctx context.Context, userID string, expense *domain.Expense) error
	UpdateExpense(ctx context.Context, expenseID uuid.UUID, userID string, patch domain.ExpensePatch) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, expenseID uuid.UUID, userID string) error
	RenameCategory(ctx context.Context, userID, oldCategory, newCategory string) error
}

type ExpenseHandler struct {
	service      ExpenseServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewExpenseHandler(
	service ExpenseServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *ExpenseHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &ExpenseHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

type createExpenseRequest struct {
	Title    string            `json:"title"`
	Amount   decimal.Decimal   `json:"amount"`
	Category string            `json:"category"`
	Date     *domain.Timestamp `json:"date"`
}

type updateExpenseRequest struct {
	Title    domain.Optional[string]           `json:"title"`
	Amount   domain.Optional[decimal.Decimal]  `json:"amount"`
	Category domain.Optional[string]           `json:"category"`
	Date     domain.Optional[domain.Timestamp] `json:"date"`
}

func (req updateExpenseRequest) toPatch() domain.ExpensePatch {
	patch := domain.ExpensePatch{
		Title:    req.Title,
		Amount:   req.Amount,
		Category: req.Category,
	}
	if req.Date.Set {
		patch.Date = domain.Some(req.Date.Value.Time)
	}
	return patch
}

type renameCategoryRequest struct {
	NewCategory string `json:"newCategory"`
}

type expenseResponse struct {
	ID       string      `json:"id"`
	UserID   string      `json:"user_id"`
	Title    string      `json:"title"`
	Amount   json.Number `json:"amount"`
	Category string      `json:"category"`
	Date     time.Time   `json:"date"`
}

func toExpenseResponse(expense domain.Expense) expenseResponse {
	return expenseResponse{
		ID:       expense.ID.String(),
		UserID:   expense.UserID,
		Title:    expense.Title,
		Amount:   json.Number(expense.Amount.String()),
		Category: expense.Category,
		Date:     expense.Date,
	}
}

func (h *ExpenseHandler) getUserIDReq(w http.ResponseWriter, r *http.Request) string {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return ""
	}
	return userID
}

// respondServiceError maps service errors to status codes. Unclassified
// errors are logged and answered with a plain-text 500.
func (h *ExpenseHandler) respondServiceError(w http.ResponseWriter, operation string, err error) {
	switch {
	case expenseErrors.IsValidationError(err):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case expenseErrors.IsNotFoundError(err):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, expenseErrors.ErrUnauthorizedAccess):
		h.respondError(w, http.StatusUnauthorized, err.Error())
	default:
		logger.Error("expense operation failed", zap.String("operation", operation), zap.Error(err))
		http.Error(w, "Server Error", http.StatusInternalServerError)
	}
}

func (h *ExpenseHandler) GetExpenses(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}

	expenses, err := h.service.ListExpenses(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, "list", err)
		return
	}

	response := make([]expenseResponse, 0, len(expenses))
	for _, expense := range expenses {
		response = append(response, toExpenseResponse(expense))
	}
	h.respondJSON(w, http.StatusOK, response)
}

func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}

	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	expense := domain.Expense{
		Title:    req.Title,
		Amount:   req.Amount,
		Category: req.Category,
	}
	if req.Date != nil {
		expense.Date = req.Date.Time
	}

	if err := h.service.CreateExpense(r.Context(), userID, &expense); err != nil {
		h.respondServiceError(w, "create", err)
		return
	}
	h.respondJSON(w, http.StatusOK, toExpenseResponse(expense))
}

func (h *ExpenseHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}
	// validated by ValidateExpensePathParamsMiddleware
	expenseID := expenseIDFromContext(r.Context())

	var req updateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	expense, err := h.service.UpdateExpense(r.Context(), expenseID, userID, req.toPatch())
	if err != nil {
		h.respondServiceError(w, "update", err)
		return
	}
	h.respondJSON(w, http.StatusOK, toExpenseResponse(*expense))
}

func (h *ExpenseHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}
	expenseID := expenseIDFromContext(r.Context())

	if err := h.service.DeleteExpense(r.Context(), expenseID, userID); err != nil {
		h.respondServiceError(w, "delete", err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Expense removed",
	})
}

func (h *ExpenseHandler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}
	oldCategory := r.PathValue("oldCategory")

	var req renameCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.RenameCategory(r.Context(), userID, oldCategory, req.NewCategory); err != nil {
		h.respondServiceError(w, "rename category", err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": fmt.Sprintf("Category '%s' was successfully updated to '%s'.", oldCategory, req.NewCategory),
	})
}
