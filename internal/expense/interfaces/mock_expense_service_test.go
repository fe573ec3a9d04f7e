package interfaces

import (
	"context"

	"github.com/google/uuid"

	"github.com/sebuszqo/ExpenseTracker/internal/expense/domain"
)

type MockExpenseService struct {
	Expenses []domain.Expense
	Updated  *domain.Expense
	Err      error

	calls       int
	lastUserID  string
	lastPatch   domain.ExpensePatch
	lastCreated domain.Expense
	lastRename  [2]string
}

func (m *MockExpenseService) ListExpenses(_ context.Context, userID string) ([]domain.Expense, error) {
	m.calls++
	m.lastUserID = userID
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Expenses, nil
}

func (m *MockExpenseService) CreateExpense(_ context.Context, userID string, expense *domain.Expense) error {
	m.calls++
	m.lastUserID = userID
	if m.Err != nil {
		return m.Err
	}
	expense.ID = uuid.MustParse("8d9c2a3e-1f0b-4c55-9a0e-3c1d7c6b2a10")
	expense.UserID = userID
	m.lastCreated = *expense
	return nil
}

func (m *MockExpenseService) UpdateExpense(_ context.Context, _ uuid.UUID, userID string, patch domain.ExpensePatch) (*domain.Expense, error) {
	m.calls++
	m.lastUserID = userID
	m.lastPatch = patch
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Updated, nil
}

func (m *MockExpenseService) DeleteExpense(_ context.Context, _ uuid.UUID, userID string) error {
	m.calls++
	m.lastUserID = userID
	return m.Err
}

func (m *MockExpenseService) RenameCategory(_ context.Context, userID, oldCategory, newCategory string) error {
	m.calls++
	m.lastUserID = userID
	m.lastRename = [2]string{oldCategory, newCategory}
	return m.Err
}
