package models

import (
	"errors"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")
)

// Rubrica errors
var (
	ErrRubricaCodeNotUnique       = errors.New("the rubrica code is already in use for this fiscal year")
	ErrRubricaKindRequired        = errors.New("the rubrica kind must be set to 'expense' or 'revenue'")
	ErrRubricaStatusInvalid       = errors.New("the rubrica status must be one of 'active', 'inactive' or 'provisional'")
	ErrParentFiscalYearMismatch   = errors.New("the parent rubrica belongs to a different fiscal year")
	ErrRubricaNotLeaf             = errors.New("only leaf rubricas can have an initial allocation")
	ErrRubricaNotActive           = errors.New("the rubrica must be active")
	ErrInitialAllocationNegative  = errors.New("the initial allocation must not be negative")
	ErrRubricaReferencedByExpense = errors.New("the rubrica is referenced by expenses and can only be deactivated")
	ErrRubricaHasChildren         = errors.New("the rubrica has children and can only be deactivated")
)

// Ledger errors
var (
	ErrAnnualValueNegative    = errors.New("the annual allocation value must not be negative")
	ErrAmountNotPositive      = errors.New("the amount must be larger than zero")
	ErrInsufficientBalance    = errors.New("the available balance is insufficient")
	ErrReservationExceeded    = errors.New("the amount to cancel exceeds the reserved amount")
	ErrNoAllocationForYear    = errors.New("no global allocation exists for the fiscal year")
	ErrConcurrencyConflict    = errors.New("the resource was modified concurrently, retry the operation")
	ErrMovementKindInvalid    = errors.New("the movement kind is invalid")
	ErrExecutionPeriodInvalid = errors.New("the month must be between 1 and 12")
)

// Expense errors
var (
	ErrExpenseConfirmed           = errors.New("the expense is confirmed and can not be modified or deleted")
	ErrExpenseCancelled           = errors.New("the expense is cancelled and can not be modified or confirmed")
	ErrExpenseRubricaRequired     = errors.New("the expense must reference a rubrica")
	ErrIssueDateInFuture          = errors.New("the issue date must not be in the future")
	ErrIssueDateOutsideFiscalYear = errors.New("the issue date must be within the fiscal year")
	ErrSupplierNotActive          = errors.New("the supplier must be active")
)

// Supplier and employee errors
var (
	ErrSupplierKindInvalid    = errors.New("the supplier kind must be 'individual' or 'company'")
	ErrSupplierTaxIDNotUnique = errors.New("the tax ID is already in use by another supplier")
	ErrEmployeeEmailNotUnique = errors.New("the email is already in use by another employee")
)
