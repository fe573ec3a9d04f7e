package interfaces

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sebuszqo/ExpenseTracker/internal/logger"
)

type pathParamKey string

const expenseIDParam = "id"

func capitalizeFirstLetter(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(string(s[0])) + s[1:]
}

// ValidateExpensePathParamsMiddleware parses the named path parameters as
// UUIDs and stores them in the request context. A parameter that is not a
// UUID cannot name an existing expense, so it is answered with 404.
func (h *ExpenseHandler) ValidateExpensePathParamsMiddleware(next http.Handler, params ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, param := range params {
			paramValue := r.PathValue(param)
			if paramValue == "" {
				h.respondError(w, http.StatusBadRequest, capitalizeFirstLetter(fmt.Sprintf("%s is required", param)))
				return
			}

			parsedUUID, err := uuid.Parse(paramValue)
			if err != nil {
				logger.Debug("invalid path parameter", zap.String("param", param), zap.String("value", paramValue))
				h.respondError(w, http.StatusNotFound, "Expense not found")
				return
			}
			r = r.WithContext(context.WithValue(r.Context(), pathParamKey(param), parsedUUID))
		}
		next.ServeHTTP(w, r)
	})
}

func expenseIDFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(pathParamKey(expenseIDParam)).(uuid.UUID)
	return id
}
