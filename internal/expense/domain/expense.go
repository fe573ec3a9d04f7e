package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ExpenseRepository interface {
	Create(ctx context.Context, expense *Expense) error
	FindByUserID(ctx context.Context, userID string) ([]Expense, error)
	FindByID(ctx context.Context, expenseID uuid.UUID) (*Expense, error)
	Update(ctx context.Context, expenseID uuid.UUID, patch ExpensePatch) (*Expense, error)
	Delete(ctx context.Context, expenseID uuid.UUID) error
	// RenameCategory sets category to newCategory on every expense of the user
	// whose category equals oldCategory ignoring case, and returns how many
	// expenses matched.
	RenameCategory(ctx context.Context, userID, oldCategory, newCategory string) (int64, error)
}

type Expense struct {
	ID       uuid.UUID
	UserID   string // owner, set once at creation
	Title    string
	Amount   decimal.Decimal
	Category string
	Date     time.Time
}

func (e *Expense) OwnedBy(userID string) bool {
	return e.UserID == userID
}

// ExpensePatch lists the fields of a partial update. Only fields marked as set
// are written, zero values included.
type ExpensePatch struct {
	Title    Optional[string]
	Amount   Optional[decimal.Decimal]
	Category Optional[string]
	Date     Optional[time.Time]
}

func (p ExpensePatch) IsEmpty() bool {
	return !p.Title.Set && !p.Amount.Set && !p.Category.Set && !p.Date.Set
}

// Apply writes the set fields onto the expense.
func (p ExpensePatch) Apply(expense *Expense) {
	if p.Title.Set {
		expense.Title = p.Title.Value
	}
	if p.Amount.Set {
		expense.Amount = p.Amount.Value
	}
	if p.Category.Set {
		expense.Category = p.Category.Value
	}
	if p.Date.Set {
		expense.Date = p.Date.Value.UTC()
	}
}
