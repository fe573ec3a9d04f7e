package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	database "github.com/sebuszqo/ExpenseTracker/internal/db"
	"github.com/sebuszqo/ExpenseTracker/internal/expense/domain"
	expenseErrors "github.com/sebuszqo/ExpenseTracker/internal/expense/errors"
)

var expenseColumns = []string{"id", "user_id", "title", "amount", "category", "date"}

type ExpenseRepository struct {
	db   *sql.DB
	psql sq.StatementBuilderType
	// lower is the SQL function used for case-insensitive category matching.
	lower string
}

// NewExpenseRepository builds statements with "$n" placeholders for pgx and
// "?" for sqlite. A sqlite db must come from database.NewDBService, which
// registers the casefold function used by RenameCategory.
func NewExpenseRepository(db *sql.DB, driver string) *ExpenseRepository {
	var format sq.PlaceholderFormat = sq.Dollar
	lower := "lower"
	if driver == "sqlite" {
		format = sq.Question
		lower = database.CaseFoldFunc
	}
	return &ExpenseRepository{
		db:    db,
		psql:  sq.StatementBuilder.PlaceholderFormat(format).RunWith(db),
		lower: lower,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanExpense(row rowScanner, expense *domain.Expense) error {
	if err := row.Scan(&expense.ID, &expense.UserID, &expense.Title, &expense.Amount, &expense.Category, &expense.Date); err != nil {
		return err
	}
	expense.Date = expense.Date.UTC()
	return nil
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	now := time.Now().UTC()
	_, err := r.psql.Insert("expenses").
		Columns(append(expenseColumns, "created_at", "updated_at")...).
		Values(expense.ID, expense.UserID, expense.Title, expense.Amount, expense.Category, expense.Date.UTC(), now, now).
		ExecContext(ctx)
	return errors.Wrap(err, "create expense")
}

func (r *ExpenseRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Expense, error) {
	rows, err := r.psql.Select(expenseColumns...).
		From("expenses").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("date DESC", "id").
		QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find expenses by user")
	}
	defer rows.Close()

	expenses := make([]domain.Expense, 0)
	for rows.Next() {
		var expense domain.Expense
		if err := scanExpense(rows, &expense); err != nil {
			return nil, errors.Wrap(err, "scan expense")
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "find expenses by user")
	}
	return expenses, nil
}

func (r *ExpenseRepository) FindByID(ctx context.Context, expenseID uuid.UUID) (*domain.Expense, error) {
	row := r.psql.Select(expenseColumns...).
		From("expenses").
		Where(sq.Eq{"id": expenseID}).
		QueryRowContext(ctx)

	var expense domain.Expense
	if err := scanExpense(row, &expense); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, expenseErrors.ErrExpenseNotFound
		}
		return nil, errors.Wrap(err, "find expense")
	}
	return &expense, nil
}

// Update writes the set fields of the patch in one statement and reads the
// row back.
func (r *ExpenseRepository) Update(ctx context.Context, expenseID uuid.UUID, patch domain.ExpensePatch) (*domain.Expense, error) {
	query := r.psql.Update("expenses").
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": expenseID})

	if patch.Title.Set {
		query = query.Set("title", patch.Title.Value)
	}
	if patch.Amount.Set {
		query = query.Set("amount", patch.Amount.Value)
	}
	if patch.Category.Set {
		query = query.Set("category", patch.Category.Value)
	}
	if patch.Date.Set {
		query = query.Set("date", patch.Date.Value.UTC())
	}

	result, err := query.ExecContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "update expense")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, errors.Wrap(err, "update expense")
	}
	if affected == 0 {
		return nil, expenseErrors.ErrExpenseNotFound
	}

	return r.FindByID(ctx, expenseID)
}

func (r *ExpenseRepository) Delete(ctx context.Context, expenseID uuid.UUID) error {
	result, err := r.psql.Delete("expenses").
		Where(sq.Eq{"id": expenseID}).
		ExecContext(ctx)
	if err != nil {
		return errors.Wrap(err, "delete expense")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete expense")
	}
	if affected == 0 {
		return expenseErrors.ErrExpenseNotFound
	}
	return nil
}

func (r *ExpenseRepository) RenameCategory(ctx context.Context, userID, oldCategory, newCategory string) (int64, error) {
	result, err := r.psql.Update("expenses").
		Set("category", newCategory).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Expr(fmt.Sprintf("%[1]s(category) = %[1]s(?)", r.lower), oldCategory)).
		ExecContext(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "rename category")
	}
	matched, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "rename category")
	}
	return matched, nil
}
