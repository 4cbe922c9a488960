package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/orcamento-aberto/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ExpenseStatus string

const (
	ExpensePending   ExpenseStatus = "pending"
	ExpenseConfirmed ExpenseStatus = "confirmed"
	ExpenseCancelled ExpenseStatus = "cancelled"
)

// Expense is a spend recorded against a leaf rubrica.
//
// Expenses are created pending and only hit the global ledger and the
// monthly execution table on confirmation.
type Expense struct {
	DefaultModel
	Rubrica          Rubrica `json:"-"`
	RubricaID        uuid.UUID
	Supplier         *Supplier `json:"-"`
	SupplierID       *uuid.UUID
	SupplierName     string // free text as entered, kept even when a supplier was resolved
	Description      string
	RequisitionRef   string
	JustificationRef string
	PaymentOrderRef  string
	Amount           decimal.Decimal `gorm:"type:DECIMAL(18,2)"`
	IssueDate        time.Time
	FiscalYear       int
	Month            int
	Status           ExpenseStatus
	BatchRef         string
}

func (e *Expense) AfterFind(tx *gorm.DB) error {
	_ = e.DefaultModel.AfterFind(tx)

	e.IssueDate = e.IssueDate.In(time.UTC)
	return nil
}

// CreateExpense validates and creates a pending expense. The fiscal
// year is taken from the rubrica, month and year are derived from the
// issue date. A free text supplier name is resolved to a supplier
// record through the match rules when possible.
func CreateExpense(tx *gorm.DB, expense *Expense) error {
	expense.Status = ExpensePending

	err := validateExpense(tx, expense)
	if err != nil {
		return err
	}

	return tx.Create(expense).Error
}

func validateExpense(tx *gorm.DB, expense *Expense) error {
	if !expense.Amount.IsPositive() {
		return ErrAmountNotPositive
	}

	if expense.RubricaID == uuid.Nil {
		return ErrExpenseRubricaRequired
	}

	var rubrica Rubrica
	err := tx.First(&rubrica, expense.RubricaID).Error
	if err != nil {
		return err
	}

	leaf, err := isLeaf(tx, rubrica.ID)
	if err != nil {
		return err
	}

	if !leaf {
		return ErrRubricaNotLeaf
	}

	if !rubrica.Active() {
		return ErrRubricaNotActive
	}

	expense.FiscalYear = rubrica.FiscalYear

	expense.IssueDate = expense.IssueDate.In(time.UTC)
	if expense.IssueDate.After(time.Now().In(time.UTC)) {
		return ErrIssueDateInFuture
	}

	period := types.PeriodOf(expense.IssueDate)
	if period.Year != expense.FiscalYear {
		return ErrIssueDateOutsideFiscalYear
	}

	expense.Month = period.Month

	if expense.SupplierID != nil {
		var supplier Supplier
		err = tx.First(&supplier, *expense.SupplierID).Error
		if err != nil {
			return err
		}

		if !supplier.Active {
			return ErrSupplierNotActive
		}
	} else if expense.SupplierName != "" {
		supplier, err := ResolveSupplier(tx, expense.SupplierName)
		if err != nil {
			return err
		}

		if supplier != nil {
			if !supplier.Active {
				return ErrSupplierNotActive
			}
			expense.SupplierID = &supplier.ID
		}
	}

	return nil
}

// ExpenseUpdate contains the fields of an expense that can be changed
// while it is pending. Nil fields are left untouched.
type ExpenseUpdate struct {
	RubricaID        *uuid.UUID
	SupplierID       *uuid.UUID
	SupplierName     *string
	Description      *string
	RequisitionRef   *string
	JustificationRef *string
	PaymentOrderRef  *string
	Amount           *decimal.Decimal
	IssueDate        *time.Time
}

// UpdateExpense applies the update to a pending expense. Confirmed
// expenses are immutable, cancel them instead.
func UpdateExpense(tx *gorm.DB, expense *Expense, update ExpenseUpdate) error {
	if expense.Status == ExpenseConfirmed {
		return ErrExpenseConfirmed
	}

	if expense.Status == ExpenseCancelled {
		return ErrExpenseCancelled
	}

	if update.RubricaID != nil {
		expense.RubricaID = *update.RubricaID
	}
	if update.SupplierID != nil {
		expense.SupplierID = update.SupplierID
	}
	if update.SupplierName != nil {
		expense.SupplierName = *update.SupplierName
	}
	if update.Description != nil {
		expense.Description = *update.Description
	}
	if update.RequisitionRef != nil {
		expense.RequisitionRef = *update.RequisitionRef
	}
	if update.JustificationRef != nil {
		expense.JustificationRef = *update.JustificationRef
	}
	if update.PaymentOrderRef != nil {
		expense.PaymentOrderRef = *update.PaymentOrderRef
	}
	if update.Amount != nil {
		expense.Amount = *update.Amount
	}
	if update.IssueDate != nil {
		expense.IssueDate = *update.IssueDate
	}

	err := validateExpense(tx, expense)
	if err != nil {
		return err
	}

	return tx.Save(expense).Error
}

// DeleteExpense removes a pending expense. Confirmed and cancelled
// expenses stay on record.
func DeleteExpense(tx *gorm.DB, expense *Expense) error {
	if expense.Status == ExpenseConfirmed {
		return ErrExpenseConfirmed
	}

	if expense.Status == ExpenseCancelled {
		return ErrExpenseCancelled
	}

	return tx.Delete(expense).Error
}

// ConfirmExpense executes a pending expense against the global ledger:
// the balance is checked and reduced, the movement logged, the status
// flipped and the monthly execution row of the rubrica refreshed. All
// of it in the caller's transaction, a failing balance check leaves
// everything untouched.
//
// Confirming an already confirmed expense is a no-op.
func ConfirmExpense(tx *gorm.DB, expense *Expense, actor string) error {
	if expense.Status == ExpenseConfirmed {
		return nil
	}

	if expense.Status == ExpenseCancelled {
		return ErrExpenseCancelled
	}

	err := postExpenseConfirmed(tx, expense, actor)
	if err != nil {
		return err
	}

	expense.Status = ExpenseConfirmed
	err = tx.Save(expense).Error
	if err != nil {
		return err
	}

	return UpsertExecution(tx, expense.RubricaID, expense.Month, expense.FiscalYear)
}

// CancelExpense cancels a pending or confirmed expense. Cancelling a
// confirmed expense reverses its ledger movement and refreshes the
// monthly execution row. Cancelling a cancelled expense is a no-op.
func CancelExpense(tx *gorm.DB, expense *Expense, actor string) error {
	if expense.Status == ExpenseCancelled {
		return nil
	}

	wasConfirmed := expense.Status == ExpenseConfirmed

	if wasConfirmed {
		err := postExpenseCancelled(tx, expense, actor)
		if err != nil {
			return err
		}
	}

	expense.Status = ExpenseCancelled
	err := tx.Save(expense).Error
	if err != nil {
		return err
	}

	if !wasConfirmed {
		return nil
	}

	return UpsertExecution(tx, expense.RubricaID, expense.Month, expense.FiscalYear)
}
