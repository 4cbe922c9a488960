package models

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GlobalAllocation is the single spendable budget of a fiscal year.
//
// The invariant "annual value = confirmed spend + reserved + available
// balance" holds at all times. The balance is never written without an
// AllocationMovement recording the change in the same transaction, so
// replaying the movement log of a year yields the available balance.
type GlobalAllocation struct {
	DefaultModel
	FiscalYear       int             `gorm:"uniqueIndex"`
	AnnualValue      decimal.Decimal `gorm:"type:DECIMAL(18,2)"`
	Reserved         decimal.Decimal `gorm:"type:DECIMAL(18,2)"`
	AvailableBalance decimal.Decimal `gorm:"type:DECIMAL(18,2)"`
}

type MovementKind string

const (
	MovementAdjustment           MovementKind = "adjustment"
	MovementReservation          MovementKind = "reservation"
	MovementReservationCancelled MovementKind = "reservation_cancelled"
	MovementExpenseConfirmed     MovementKind = "expense_confirmed"
	MovementExpenseCancelled     MovementKind = "expense_cancelled"
)

func (k MovementKind) Valid() bool {
	switch k {
	case MovementAdjustment, MovementReservation, MovementReservationCancelled,
		MovementExpenseConfirmed, MovementExpenseCancelled:
		return true
	}

	return false
}

// AllocationMovement is one entry of the append-only ledger log.
//
// Amounts are signed with the effect on the available balance, except
// for adjustments, which carry the annual value delta. Since an
// adjustment changes the balance by exactly that delta, the running sum
// of all movements of a year equals the available balance.
type AllocationMovement struct {
	DefaultModel
	Allocation   GlobalAllocation `json:"-"`
	AllocationID uuid.UUID
	Kind         MovementKind
	Amount       decimal.Decimal `gorm:"type:DECIMAL(18,2)"`
	Reference    *uuid.UUID
	Description  string
	Actor        string
}

func (m *AllocationMovement) BeforeSave(_ *gorm.DB) error {
	if !m.Kind.Valid() {
		return ErrMovementKindInvalid
	}

	return nil
}

// InsufficientBalanceError carries the amounts involved in a rejected
// spend or reservation.
type InsufficientBalanceError struct {
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: requested %s, available %s", ErrInsufficientBalance, e.Requested, e.Available)
}

func (e InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// AllocationForYear returns the global allocation of the fiscal year.
func AllocationForYear(db *gorm.DB, year int) (GlobalAllocation, error) {
	var allocation GlobalAllocation
	err := db.Where("fiscal_year = ?", year).First(&allocation).Error
	if err != nil {
		return GlobalAllocation{}, err
	}

	return allocation, nil
}

// lockedAllocation fetches the year row with a row lock so that all
// read-modify-write cycles on the ledger serialize. SQLite has a single
// writer anyway, the lock clause keeps the code correct on dialects
// that do not.
func lockedAllocation(tx *gorm.DB, year int) (GlobalAllocation, error) {
	var allocation GlobalAllocation
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("fiscal_year = ?", year).
		First(&allocation).Error
	if err != nil {
		return GlobalAllocation{}, err
	}

	return allocation, nil
}

// SetAnnualValue creates or adjusts the global allocation of the fiscal
// year. The difference to the previous annual value is applied to the
// available balance and logged as an adjustment movement.
func SetAnnualValue(tx *gorm.DB, year int, value decimal.Decimal, description, actor string) (GlobalAllocation, error) {
	if value.IsNegative() {
		return GlobalAllocation{}, ErrAnnualValueNegative
	}

	allocation, err := lockedAllocation(tx, year)
	if err != nil && !isNotFound(err) {
		return GlobalAllocation{}, err
	}

	delta := value.Sub(allocation.AnnualValue)

	if isNotFound(err) {
		allocation = GlobalAllocation{
			FiscalYear:       year,
			AnnualValue:      value,
			AvailableBalance: value,
		}

		err = tx.Create(&allocation).Error
		if err != nil {
			return GlobalAllocation{}, err
		}
	} else {
		if delta.IsZero() {
			return allocation, nil
		}

		allocation.AnnualValue = value
		allocation.AvailableBalance = allocation.AvailableBalance.Add(delta)

		err = tx.Save(&allocation).Error
		if err != nil {
			return GlobalAllocation{}, err
		}
	}

	movement := AllocationMovement{
		AllocationID: allocation.ID,
		Kind:         MovementAdjustment,
		Amount:       delta,
		Description:  description,
		Actor:        actor,
	}

	err = tx.Create(&movement).Error
	if err != nil {
		return GlobalAllocation{}, err
	}

	return allocation, nil
}

// Reserve blocks part of the available balance for a planned spend.
func Reserve(tx *gorm.DB, year int, amount decimal.Decimal, description, actor string) (GlobalAllocation, error) {
	if !amount.IsPositive() {
		return GlobalAllocation{}, ErrAmountNotPositive
	}

	allocation, err := lockedAllocation(tx, year)
	if err != nil {
		return GlobalAllocation{}, notFoundAsNoAllocation(err)
	}

	if amount.GreaterThan(allocation.AvailableBalance) {
		return GlobalAllocation{}, InsufficientBalanceError{Requested: amount, Available: allocation.AvailableBalance}
	}

	allocation.AvailableBalance = allocation.AvailableBalance.Sub(amount)
	allocation.Reserved = allocation.Reserved.Add(amount)

	err = tx.Save(&allocation).Error
	if err != nil {
		return GlobalAllocation{}, err
	}

	movement := AllocationMovement{
		AllocationID: allocation.ID,
		Kind:         MovementReservation,
		Amount:       amount.Neg(),
		Description:  description,
		Actor:        actor,
	}

	err = tx.Create(&movement).Error
	if err != nil {
		return GlobalAllocation{}, err
	}

	return allocation, nil
}

// CancelReservation releases a previously reserved amount back into the
// available balance.
func CancelReservation(tx *gorm.DB, year int, amount decimal.Decimal, description, actor string) (GlobalAllocation, error) {
	if !amount.IsPositive() {
		return GlobalAllocation{}, ErrAmountNotPositive
	}

	allocation, err := lockedAllocation(tx, year)
	if err != nil {
		return GlobalAllocation{}, notFoundAsNoAllocation(err)
	}

	if amount.GreaterThan(allocation.Reserved) {
		return GlobalAllocation{}, ErrReservationExceeded
	}

	allocation.Reserved = allocation.Reserved.Sub(amount)
	allocation.AvailableBalance = allocation.AvailableBalance.Add(amount)

	err = tx.Save(&allocation).Error
	if err != nil {
		return GlobalAllocation{}, err
	}

	movement := AllocationMovement{
		AllocationID: allocation.ID,
		Kind:         MovementReservationCancelled,
		Amount:       amount,
		Description:  description,
		Actor:        actor,
	}

	err = tx.Create(&movement).Error
	if err != nil {
		return GlobalAllocation{}, err
	}

	return allocation, nil
}

// postExpenseConfirmed deducts a confirmed expense from the available
// balance. Called by ConfirmExpense inside its transaction.
func postExpenseConfirmed(tx *gorm.DB, expense *Expense, actor string) error {
	allocation, err := lockedAllocation(tx, expense.FiscalYear)
	if err != nil {
		return notFoundAsNoAllocation(err)
	}

	if expense.Amount.GreaterThan(allocation.AvailableBalance) {
		return InsufficientBalanceError{Requested: expense.Amount, Available: allocation.AvailableBalance}
	}

	allocation.AvailableBalance = allocation.AvailableBalance.Sub(expense.Amount)

	err = tx.Save(&allocation).Error
	if err != nil {
		return err
	}

	movement := AllocationMovement{
		AllocationID: allocation.ID,
		Kind:         MovementExpenseConfirmed,
		Amount:       expense.Amount.Neg(),
		Reference:    &expense.ID,
		Description:  expense.Description,
		Actor:        actor,
	}

	return tx.Create(&movement).Error
}

// postExpenseCancelled restores the balance of a confirmed expense that
// is being cancelled.
func postExpenseCancelled(tx *gorm.DB, expense *Expense, actor string) error {
	allocation, err := lockedAllocation(tx, expense.FiscalYear)
	if err != nil {
		return notFoundAsNoAllocation(err)
	}

	allocation.AvailableBalance = allocation.AvailableBalance.Add(expense.Amount)

	err = tx.Save(&allocation).Error
	if err != nil {
		return err
	}

	movement := AllocationMovement{
		AllocationID: allocation.ID,
		Kind:         MovementExpenseCancelled,
		Amount:       expense.Amount,
		Reference:    &expense.ID,
		Description:  expense.Description,
		Actor:        actor,
	}

	return tx.Create(&movement).Error
}

// Movements returns a page of the movement log of the fiscal year,
// newest first, together with the total number of movements.
func Movements(db *gorm.DB, year int, offset int, limit int) ([]AllocationMovement, int64, error) {
	allocation, err := AllocationForYear(db, year)
	if err != nil {
		return nil, 0, notFoundAsNoAllocation(err)
	}

	var total int64
	err = db.Model(&AllocationMovement{}).Where("allocation_id = ?", allocation.ID).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	query := db.Where("allocation_id = ?", allocation.ID).Order("created_at desc, id desc").Offset(offset)
	if limit >= 0 {
		query = query.Limit(limit)
	}

	var movements []AllocationMovement
	err = query.Find(&movements).Error
	if err != nil {
		return nil, 0, err
	}

	return movements, total, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrResourceNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// notFoundAsNoAllocation turns a missing year row into the dedicated
// sentinel, all ledger operations require the allocation to exist.
func notFoundAsNoAllocation(err error) error {
	if isNotFound(err) {
		return ErrNoAllocationForYear
	}

	return err
}
