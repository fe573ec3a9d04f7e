package infrastructure

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/sebuszqo/ExpenseTracker/internal/expense/domain"
	expenseErrors "github.com/sebuszqo/ExpenseTracker/internal/expense/errors"
)

// InMemoryExpenseRepository keeps expenses in a map. Used by tests and by the
// router tests in cmd/expenses.
type InMemoryExpenseRepository struct {
	mu       sync.RWMutex
	expenses map[uuid.UUID]domain.Expense
	// Err, when set, is returned by every method.
	Err error
}

func NewInMemoryExpenseRepository(expenses ...domain.Expense) *InMemoryExpenseRepository {
	repo := &InMemoryExpenseRepository{expenses: make(map[uuid.UUID]domain.Expense)}
	for _, expense := range expenses {
		repo.expenses[expense.ID] = expense
	}
	return repo
}

func (m *InMemoryExpenseRepository) Create(_ context.Context, expense *domain.Expense) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses[expense.ID] = *expense
	return nil
}

func (m *InMemoryExpenseRepository) FindByUserID(_ context.Context, userID string) ([]domain.Expense, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	expenses := make([]domain.Expense, 0)
	for _, expense := range m.expenses {
		if expense.UserID == userID {
			expenses = append(expenses, expense)
		}
	}
	sort.Slice(expenses, func(i, j int) bool {
		if expenses[i].Date.Equal(expenses[j].Date) {
			return expenses[i].ID.String() < expenses[j].ID.String()
		}
		return expenses[i].Date.After(expenses[j].Date)
	})
	return expenses, nil
}

func (m *InMemoryExpenseRepository) FindByID(_ context.Context, expenseID uuid.UUID) (*domain.Expense, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	expense, ok := m.expenses[expenseID]
	if !ok {
		return nil, expenseErrors.ErrExpenseNotFound
	}
	return &expense, nil
}

func (m *InMemoryExpenseRepository) Update(_ context.Context, expenseID uuid.UUID, patch domain.ExpensePatch) (*domain.Expense, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	expense, ok := m.expenses[expenseID]
	if !ok {
		return nil, expenseErrors.ErrExpenseNotFound
	}
	patch.Apply(&expense)
	m.expenses[expenseID] = expense
	return &expense, nil
}

func (m *InMemoryExpenseRepository) Delete(_ context.Context, expenseID uuid.UUID) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.expenses[expenseID]; !ok {
		return expenseErrors.ErrExpenseNotFound
	}
	delete(m.expenses, expenseID)
	return nil
}

func (m *InMemoryExpenseRepository) RenameCategory(_ context.Context, userID, oldCategory, newCategory string) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched int64
	for id, expense := range m.expenses {
		if expense.UserID != userID || !strings.EqualFold(expense.Category, oldCategory) {
			continue
		}
		expense.Category = newCategory
		m.expenses[id] = expense
		matched++
	}
	return matched, nil
}
