package models

import (
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/orcamento-aberto/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MonthlyExecution is the stored execution snapshot of one rubrica for
// one month: the allocation at the time of the last refresh, the
// confirmed spend of the month and the remaining balance.
type MonthlyExecution struct {
	DefaultModel
	Rubrica    Rubrica   `json:"-"`
	RubricaID  uuid.UUID `gorm:"uniqueIndex:execution_cell"`
	Year       int       `gorm:"uniqueIndex:execution_cell"`
	Month      int       `gorm:"uniqueIndex:execution_cell"`
	Allocation decimal.Decimal `gorm:"type:DECIMAL(18,2)"`
	Spend      decimal.Decimal `gorm:"type:DECIMAL(18,2)"`
	Balance    decimal.Decimal `gorm:"type:DECIMAL(18,2)"`
}

// UpsertExecution recomputes the execution row of the given cell from
// the confirmed expenses and the rubrica's current computed allocation.
func UpsertExecution(tx *gorm.DB, rubricaID uuid.UUID, month int, year int) error {
	if !types.NewPeriod(year, month).Valid() {
		return ErrExecutionPeriodInvalid
	}

	var rubrica Rubrica
	err := tx.First(&rubrica, rubricaID).Error
	if err != nil {
		return err
	}

	var expenses []Expense
	err = tx.Where("rubrica_id = ? AND fiscal_year = ? AND month = ? AND status = ?",
		rubricaID, year, month, ExpenseConfirmed).Find(&expenses).Error
	if err != nil {
		return err
	}

	spend := decimal.Zero
	for _, expense := range expenses {
		spend = spend.Add(expense.Amount)
	}

	var execution MonthlyExecution
	err = tx.Where("rubrica_id = ? AND year = ? AND month = ?", rubricaID, year, month).
		First(&execution).Error
	if err != nil && !errors.Is(err, ErrResourceNotFound) && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	execution.RubricaID = rubricaID
	execution.Year = year
	execution.Month = month
	execution.Allocation = rubrica.ComputedAllocation
	execution.Spend = spend
	execution.Balance = rubrica.ComputedAllocation.Sub(spend)

	return tx.Save(&execution).Error
}

// RefreshExecutionAllocations updates the allocation snapshot of all
// execution rows of the given rubricas. Called whenever computed
// allocations change so that the execution table never reports against
// stale allocations.
func RefreshExecutionAllocations(tx *gorm.DB, rubricaIDs []uuid.UUID) error {
	if len(rubricaIDs) == 0 {
		return nil
	}

	var rubricas []Rubrica
	err := tx.Where("id IN ?", rubricaIDs).Find(&rubricas).Error
	if err != nil {
		return err
	}

	for _, rubrica := range rubricas {
		var executions []MonthlyExecution
		err = tx.Where("rubrica_id = ?", rubrica.ID).Find(&executions).Error
		if err != nil {
			return err
		}

		for i := range executions {
			executions[i].Allocation = rubrica.ComputedAllocation
			executions[i].Balance = rubrica.ComputedAllocation.Sub(executions[i].Spend)

			err = tx.Save(&executions[i]).Error
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// ExecutionRow is one line of the yearly execution table: a rubrica
// with its twelve monthly spend figures. Rows of rubricas with children
// aggregate the spend of all of their descendants.
type ExecutionRow struct {
	RubricaID  uuid.UUID         `json:"rubricaId"`
	Code       string            `json:"code"`
	Name       string            `json:"name"`
	Level      int               `json:"level"`
	Allocation decimal.Decimal   `json:"allocation"`
	Months     []decimal.Decimal `json:"months"`
	Total      decimal.Decimal   `json:"total"`
	Balance    decimal.Decimal   `json:"balance"`
}

// ExecutionTable returns the execution table of the fiscal year from
// the stored snapshots, one row per active rubrica ordered by code.
func ExecutionTable(db *gorm.DB, year int) ([]ExecutionRow, error) {
	var rubricas []Rubrica
	err := db.Where("fiscal_year = ?", year).Find(&rubricas).Error
	if err != nil {
		return nil, err
	}

	var executions []MonthlyExecution
	err = db.Where("year = ?", year).Find(&executions).Error
	if err != nil {
		return nil, err
	}

	// Inactive rubricas get no row of their own, but their spend still
	// counts towards their ancestors
	months := make(map[uuid.UUID][]decimal.Decimal, len(rubricas))
	for _, rubrica := range rubricas {
		if !rubrica.Active() {
			continue
		}

		row := make([]decimal.Decimal, 12)
		for i := range row {
			row[i] = decimal.Zero
		}
		months[rubrica.ID] = row
	}

	for _, execution := range executions {
		if row, ok := months[execution.RubricaID]; ok {
			row[execution.Month-1] = row[execution.Month-1].Add(execution.Spend)
		}
	}

	// Roll the spend of every rubrica up into all of its ancestors
	parents := make(map[uuid.UUID]*uuid.UUID, len(rubricas))
	for _, rubrica := range rubricas {
		parents[rubrica.ID] = rubrica.ParentID
	}

	for _, execution := range executions {
		parent := parents[execution.RubricaID]
		for parent != nil {
			if row, ok := months[*parent]; ok {
				row[execution.Month-1] = row[execution.Month-1].Add(execution.Spend)
			}
			parent = parents[*parent]
		}
	}

	rows := make([]ExecutionRow, 0, len(rubricas))
	for _, rubrica := range rubricas {
		if !rubrica.Active() {
			continue
		}

		total := decimal.Zero
		for _, spend := range months[rubrica.ID] {
			total = total.Add(spend)
		}

		rows = append(rows, ExecutionRow{
			RubricaID:  rubrica.ID,
			Code:       rubrica.Code,
			Name:       rubrica.Name,
			Level:      rubrica.Level,
			Allocation: rubrica.ComputedAllocation,
			Months:     months[rubrica.ID],
			Total:      total,
			Balance:    rubrica.ComputedAllocation.Sub(total),
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })

	return rows, nil
}
