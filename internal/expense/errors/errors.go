package errors

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	return errors.As(err, &validationError)
}

type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string {
	return e.Msg
}

func NewNotFoundError(msg string) error {
	return &NotFoundError{Msg: msg}
}

func IsNotFoundError(err error) bool {
	var notFoundError *NotFoundError
	return errors.As(err, &notFoundError)
}

func NewCategoryNotFoundError(category string) error {
	return NewNotFoundError(fmt.Sprintf("No expenses found with category '%s' for this user.", category))
}

var (
	ErrExpenseNotFound     = NewNotFoundError("Expense not found")
	ErrUnauthorizedAccess  = errors.New("Not authorized")
	ErrNewCategoryRequired = NewValidationError("New category name is required.")
)
