package interfaces

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebuszqo/ExpenseTracker/internal/auth"
	"github.com/sebuszqo/ExpenseTracker/internal/expense/domain"
	expenseErrors "github.com/sebuszqo/ExpenseTracker/internal/expense/errors"
)

const testUserID = "user-1"

func newTestMux(h *ExpenseHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /api/expenses", http.HandlerFunc(h.GetExpenses))
	mux.Handle("POST /api/expenses", http.HandlerFunc(h.CreateExpense))
	mux.Handle("PUT /api/expenses/{id}", h.ValidateExpensePathParamsMiddleware(http.HandlerFunc(h.UpdateExpense), "id"))
	mux.Handle("DELETE /api/expenses/{id}", h.ValidateExpensePathParamsMiddleware(http.HandlerFunc(h.DeleteExpense), "id"))
	mux.Handle("PUT /api/expenses/category/{oldCategory}", http.HandlerFunc(h.RenameCategory))
	return mux
}

func doRequest(t *testing.T, service *MockExpenseService, method, target string, body string, userID string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
	}
	w := httptest.NewRecorder()

	handler := NewExpenseHandler(service, respondJSON, respondError)
	newTestMux(handler).ServeHTTP(w, req)
	return w.Result()
}

func decodeMap(t *testing.T, res *http.Response) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&response))
	return response
}

func sampleExpense() domain.Expense {
	return domain.Expense{
		ID:       uuid.MustParse("0b7f5a52-7d43-4d7e-8b8f-2f3b1d1c9e01"),
		UserID:   testUserID,
		Title:    "Lunch",
		Amount:   decimal.RequireFromString("12.5"),
		Category: "Food",
		Date:     time.Date(2024, time.May, 20, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewExpenseHandler_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewExpenseHandler(nil, respondJSON, respondError) })
}

func TestGetExpenses_Success(t *testing.T) {
	service := &MockExpenseService{Expenses: []domain.Expense{sampleExpense()}}

	res := doRequest(t, service, http.MethodGet, "/api/expenses", "", testUserID)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, testUserID, service.lastUserID)

	var expenses []map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&expenses))
	require.Len(t, expenses, 1)
	assert.Equal(t, "0b7f5a52-7d43-4d7e-8b8f-2f3b1d1c9e01", expenses[0]["id"])
	assert.Equal(t, "Lunch", expenses[0]["title"])
	assert.Equal(t, 12.5, expenses[0]["amount"])
	assert.Equal(t, "Food", expenses[0]["category"])
	assert.Equal(t, "2024-05-20T12:00:00Z", expenses[0]["date"])
}

func TestGetExpenses_EmptyIsArray(t *testing.T) {
	service := &MockExpenseService{}

	res := doRequest(t, service, http.MethodGet, "/api/expenses", "", testUserID)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(body))
}

func TestGetExpenses_Unauthorized(t *testing.T) {
	service := &MockExpenseService{}

	res := doRequest(t, service, http.MethodGet, "/api/expenses", "", "")
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, 0, service.calls)
}

func TestGetExpenses_StoreError(t *testing.T) {
	service := &MockExpenseService{Err: errors.New("connection refused")}

	res := doRequest(t, service, http.MethodGet, "/api/expenses", "", testUserID)
	defer res.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "Server Error\n", string(body))
}

func TestCreateExpense_IgnoresSuppliedOwner(t *testing.T) {
	service := &MockExpenseService{}
	body := `{"title":"Lunch","amount":12,"category":"Food","date":"2024-05-20","user_id":"intruder"}`

	res := doRequest(t, service, http.MethodPost, "/api/expenses", body, testUserID)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	assert.Equal(t, testUserID, service.lastUserID)
	assert.Equal(t, "Lunch", service.lastCreated.Title)
	assert.True(t, service.lastCreated.Amount.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC), service.lastCreated.Date)

	response := decodeMap(t, res)
	assert.Equal(t, testUserID, response["user_id"])
	assert.Equal(t, "8d9c2a3e-1f0b-4c55-9a0e-3c1d7c6b2a10", response["id"])
	assert.Equal(t, float64(12), response["amount"])
}

func TestCreateExpense_InvalidBody(t *testing.T) {
	for _, body := range []string{"invalid body", `{"amount":"twelve"}`, `{"date":"soon"}`} {
		service := &MockExpenseService{}
		res := doRequest(t, service, http.MethodPost, "/api/expenses", body, testUserID)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, body)

		response := decodeMap(t, res)
		res.Body.Close()
		assert.Equal(t, "error", response["status"])
		assert.Equal(t, "Invalid request body", response["message"])
		assert.Equal(t, float64(http.StatusBadRequest), response["code"])
		assert.Equal(t, 0, service.calls)
	}
}

func TestUpdateExpense_PassesExplicitZeroValues(t *testing.T) {
	updated := sampleExpense()
	updated.Title = ""
	updated.Amount = decimal.Zero
	service := &MockExpenseService{Updated: &updated}

	res := doRequest(t, service, http.MethodPut, "/api/expenses/"+updated.ID.String(), `{"title":"","amount":0,"category":null}`, testUserID)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	assert.True(t, service.lastPatch.Title.Set)
	assert.Equal(t, "", service.lastPatch.Title.Value)
	assert.True(t, service.lastPatch.Amount.Set)
	assert.True(t, service.lastPatch.Amount.Value.IsZero())
	assert.False(t, service.lastPatch.Category.Set)
	assert.False(t, service.lastPatch.Date.Set)

	response := decodeMap(t, res)
	assert.Equal(t, "", response["title"])
	assert.Equal(t, float64(0), response["amount"])
}

func TestUpdateExpense_EmptyBodyIsEmptyPatch(t *testing.T) {
	current := sampleExpense()
	service := &MockExpenseService{Updated: &current}

	res := doRequest(t, service, http.MethodPut, "/api/expenses/"+current.ID.String(), "", testUserID)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, service.lastPatch.IsEmpty())
}

func TestUpdateExpense_ErrorMapping(t *testing.T) {
	id := uuid.New().String()
	tests := []struct {
		name            string
		err             error
		expectedCode    int
		expectedMessage string
	}{
		{name: "not found", err: expenseErrors.ErrExpenseNotFound, expectedCode: http.StatusNotFound, expectedMessage: "Expense not found"},
		{name: "not owner", err: expenseErrors.ErrUnauthorizedAccess, expectedCode: http.StatusUnauthorized, expectedMessage: "Not authorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &MockExpenseService{Err: tt.err}
			res := doRequest(t, service, http.MethodPut, "/api/expenses/"+id, `{"title":"x"}`, testUserID)
			defer res.Body.Close()

			assert.Equal(t, tt.expectedCode, res.StatusCode)
			response := decodeMap(t, res)
			assert.Equal(t, "error", response["status"])
			assert.Equal(t, tt.expectedMessage, response["message"])
		})
	}
}

func TestUpdateExpense_InvalidIDIsNotFound(t *testing.T) {
	service := &MockExpenseService{}

	res := doRequest(t, service, http.MethodPut, "/api/expenses/not-a-uuid", `{"title":"x"}`, testUserID)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, 0, service.calls)
}

func TestDeleteExpense(t *testing.T) {
	id := uuid.New().String()

	service := &MockExpenseService{}
	res := doRequest(t, service, http.MethodDelete, "/api/expenses/"+id, "", testUserID)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	response := decodeMap(t, res)
	res.Body.Close()
	assert.Equal(t, "Expense removed", response["message"])

	service = &MockExpenseService{Err: expenseErrors.ErrUnauthorizedAccess}
	res = doRequest(t, service, http.MethodDelete, "/api/expenses/"+id, "", "user-2")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	res.Body.Close()

	service = &MockExpenseService{Err: errors.New("disk full")}
	res = doRequest(t, service, http.MethodDelete, "/api/expenses/"+id, "", testUserID)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	res.Body.Close()
}

func TestRenameCategory_Success(t *testing.T) {
	service := &MockExpenseService{}

	res := doRequest(t, service, http.MethodPut, "/api/expenses/category/eating%20out", `{"newCategory":"Meals"}`, testUserID)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, [2]string{"eating out", "Meals"}, service.lastRename)

	response := decodeMap(t, res)
	assert.Equal(t, "success", response["status"])
	assert.Equal(t, "Category 'eating out' was successfully updated to 'Meals'.", response["message"])
}

func TestRenameCategory_PassesNewNameAsSent(t *testing.T) {
	service := &MockExpenseService{}

	res := doRequest(t, service, http.MethodPut, "/api/expenses/category/Food", `{"newCategory":" Meals "}`, testUserID)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, [2]string{"Food", " Meals "}, service.lastRename)

	response := decodeMap(t, res)
	assert.Equal(t, "Category 'Food' was successfully updated to ' Meals '.", response["message"])
}

func TestRenameCategory_ErrorMapping(t *testing.T) {
	service := &MockExpenseService{Err: expenseErrors.ErrNewCategoryRequired}
	res := doRequest(t, service, http.MethodPut, "/api/expenses/category/Food", `{}`, testUserID)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	response := decodeMap(t, res)
	res.Body.Close()
	assert.Equal(t, "New category name is required.", response["message"])

	service = &MockExpenseService{Err: expenseErrors.NewCategoryNotFoundError("Food")}
	res = doRequest(t, service, http.MethodPut, "/api/expenses/category/Food", `{"newCategory":"Meals"}`, testUserID)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	response = decodeMap(t, res)
	res.Body.Close()
	assert.Equal(t, "No expenses found with category 'Food' for this user.", response["message"])

	service = &MockExpenseService{}
	res = doRequest(t, service, http.MethodPut, "/api/expenses/category/Food", `{"newCategory":`, testUserID)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()
	assert.Equal(t, 0, service.calls)
}
