package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sebuszqo/ExpenseTracker/internal/expense/domain"
	expenseErrors "github.com/sebuszqo/ExpenseTracker/internal/expense/errors"
)

type ExpenseService struct {
	repo domain.ExpenseRepository
	now  func() time.Time
}

func NewExpenseService(repo domain.ExpenseRepository) *ExpenseService {
	return &ExpenseService{repo: repo, now: time.Now}
}

func (s *ExpenseService) ListExpenses(ctx context.Context, userID string) ([]domain.Expense, error) {
	expenses, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if expenses == nil {
		return []domain.Expense{}, nil
	}
	return expenses, nil
}

// CreateExpense stores a new expense owned by userID. Any ID or owner on the
// input is overwritten.
func (s *ExpenseService) CreateExpense(ctx context.Context, userID string, expense *domain.Expense) error {
	expense.ID = uuid.New()
	expense.UserID = userID
	if expense.Date.IsZero() {
		expense.Date = s.now()
	}
	expense.Date = expense.Date.UTC()
	return s.repo.Create(ctx, expense)
}

func (s *ExpenseService) getOwnedExpense(ctx context.Context, expenseID uuid.UUID, userID string) (*domain.Expense, error) {
	expense, err := s.repo.FindByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if !expense.OwnedBy(userID) {
		return nil, expenseErrors.ErrUnauthorizedAccess
	}
	return expense, nil
}

func (s *ExpenseService) UpdateExpense(ctx context.Context, expenseID uuid.UUID, userID string, patch domain.ExpensePatch) (*domain.Expense, error) {
	expense, err := s.getOwnedExpense(ctx, expenseID, userID)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return expense, nil
	}
	return s.repo.Update(ctx, expenseID, patch)
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, expenseID uuid.UUID, userID string) error {
	if _, err := s.getOwnedExpense(ctx, expenseID, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, expenseID)
}

// RenameCategory moves every expense of the user whose category equals
// oldCategory (ignoring case) to newCategory, stored as given. Renaming onto an
// existing category merges the two.
func (s *ExpenseService) RenameCategory(ctx context.Context, userID, oldCategory, newCategory string) error {
	if strings.TrimSpace(newCategory) == "" {
		return expenseErrors.ErrNewCategoryRequired
	}

	matched, err := s.repo.RenameCategory(ctx, userID, oldCategory, newCategory)
	if err != nil {
		return err
	}
	if matched == 0 {
		return expenseErrors.NewCategoryNotFoundError(oldCategory)
	}
	return nil
}
