package models

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RubricaKind determines whether a rubrica tracks expenses or revenue.
type RubricaKind string

const (
	KindExpense RubricaKind = "expense"
	KindRevenue RubricaKind = "revenue"
)

type RubricaStatus string

const (
	StatusActive      RubricaStatus = "active"
	StatusInactive    RubricaStatus = "inactive"
	StatusProvisional RubricaStatus = "provisional"
)

// Rubrica is a node of the budget hierarchy for one fiscal year.
//
// Leaves carry an initial allocation. The computed allocation of a node
// with children is the sum of the computed allocations of its active
// children. Once a node gains its first child its initial allocation is
// zeroed for good, so a node whose children have all been deactivated
// computes to zero instead of falling back to a stale value.
type Rubrica struct {
	DefaultModel
	Code               string `gorm:"uniqueIndex:rubrica_year_code"`
	Name               string
	Kind               RubricaKind
	FiscalYear         int `gorm:"uniqueIndex:rubrica_year_code"`
	Level              int
	ParentID           *uuid.UUID
	InitialAllocation  decimal.Decimal `gorm:"type:DECIMAL(18,2)"`
	ComputedAllocation decimal.Decimal `gorm:"type:DECIMAL(18,2)"`
	Status             RubricaStatus
}

func (r *Rubrica) BeforeSave(_ *gorm.DB) error {
	r.Code = strings.TrimSpace(r.Code)
	r.Name = strings.TrimSpace(r.Name)

	return nil
}

// Active reports whether the rubrica takes part in allocation
// computation and accepts expenses.
func (r Rubrica) Active() bool {
	return r.Status == StatusActive
}

// CreateRubrica validates and creates a rubrica, then refreshes the
// computed allocations of its ancestor chain.
func CreateRubrica(tx *gorm.DB, rubrica *Rubrica) ([]uuid.UUID, error) {
	return createRubrica(tx, rubrica, true)
}

func createRubrica(tx *gorm.DB, rubrica *Rubrica, recalculate bool) ([]uuid.UUID, error) {
	if rubrica.Status == "" {
		rubrica.Status = StatusActive
	}

	err := validateRubrica(rubrica)
	if err != nil {
		return nil, err
	}

	rubrica.Level = 1
	if rubrica.ParentID != nil {
		var parent Rubrica
		err = tx.First(&parent, *rubrica.ParentID).Error
		if err != nil {
			return nil, err
		}

		if parent.FiscalYear != rubrica.FiscalYear {
			return nil, ErrParentFiscalYearMismatch
		}

		rubrica.Level = parent.Level + 1

		// The parent stops being a leaf, so its initial allocation
		// no longer has meaning. Zeroing it permanently keeps the
		// "active children sum, otherwise own initial" rule correct
		// even after all children are deactivated again.
		wasLeaf, err := isLeaf(tx, parent.ID)
		if err != nil {
			return nil, err
		}

		if wasLeaf && !parent.InitialAllocation.IsZero() {
			err = tx.Model(&parent).Update("InitialAllocation", decimal.Zero).Error
			if err != nil {
				return nil, err
			}
		}
	}

	rubrica.ComputedAllocation = rubrica.InitialAllocation

	err = tx.Create(rubrica).Error
	if err != nil {
		return nil, err
	}

	if !recalculate {
		return nil, nil
	}

	changed, err := recalculateChain(tx, rubrica)
	if err != nil {
		return nil, err
	}

	// The chain walk compares against the value that was just stored,
	// so the new rubrica itself is reported explicitly
	return append([]uuid.UUID{rubrica.ID}, changed...), nil
}

func validateRubrica(rubrica *Rubrica) error {
	if rubrica.Kind != KindExpense && rubrica.Kind != KindRevenue {
		return ErrRubricaKindRequired
	}

	if rubrica.Status != StatusActive && rubrica.Status != StatusInactive && rubrica.Status != StatusProvisional {
		return ErrRubricaStatusInvalid
	}

	if rubrica.InitialAllocation.IsNegative() {
		return ErrInitialAllocationNegative
	}

	return nil
}

// RubricaBatchResult reports the outcome for a single item of a batch
// create. Exactly one of ID and Error is meaningful.
type RubricaBatchResult struct {
	Code  string
	ID    uuid.UUID
	Error error
}

// CreateRubricaBatch creates multiple rubricas, typically siblings
// loaded from a budget document. Items are created independently, a
// failing item does not abort the batch. The ancestor chains are
// recalculated once at the end instead of once per item.
func CreateRubricaBatch(tx *gorm.DB, rubricas []Rubrica) ([]RubricaBatchResult, []uuid.UUID, error) {
	results := make([]RubricaBatchResult, 0, len(rubricas))
	created := make([]*Rubrica, 0, len(rubricas))

	for i := range rubricas {
		rubrica := &rubricas[i]

		_, err := createRubrica(tx.Session(&gorm.Session{}), rubrica, false)
		if err != nil {
			results = append(results, RubricaBatchResult{Code: rubrica.Code, Error: err})
			continue
		}

		results = append(results, RubricaBatchResult{Code: rubrica.Code, ID: rubrica.ID})
		created = append(created, rubrica)
	}

	// Every created rubrica counts as changed, the chain walk only
	// reports ancestors whose stored value moved
	changed := make([]uuid.UUID, 0, len(created))
	reported := make(map[uuid.UUID]bool)
	for _, rubrica := range created {
		changed = append(changed, rubrica.ID)
		reported[rubrica.ID] = true
	}

	// Recalculate each distinct parent chain once
	walked := make(map[uuid.UUID]bool)
	for _, rubrica := range created {
		if rubrica.ParentID != nil && walked[*rubrica.ParentID] {
			continue
		}

		ids, err := recalculateChain(tx, rubrica)
		if err != nil {
			return nil, nil, err
		}

		for _, id := range ids {
			if !reported[id] {
				changed = append(changed, id)
				reported[id] = true
			}
		}

		if rubrica.ParentID != nil {
			walked[*rubrica.ParentID] = true
		}
	}

	return results, changed, nil
}

// RubricaUpdate contains the fields of a rubrica that can be changed
// after creation. Nil fields are left untouched.
type RubricaUpdate struct {
	Name              *string
	Status            *RubricaStatus
	InitialAllocation *decimal.Decimal
}

// UpdateRubrica applies the update and refreshes the computed
// allocations that depend on it.
func UpdateRubrica(tx *gorm.DB, rubrica *Rubrica, update RubricaUpdate) ([]uuid.UUID, error) {
	recalculate := false

	if update.Name != nil {
		rubrica.Name = *update.Name
	}

	if update.Status != nil {
		if *update.Status != StatusActive && *update.Status != StatusInactive && *update.Status != StatusProvisional {
			return nil, ErrRubricaStatusInvalid
		}

		if rubrica.Status != *update.Status {
			rubrica.Status = *update.Status
			recalculate = true
		}
	}

	if update.InitialAllocation != nil {
		leaf, err := isLeaf(tx, rubrica.ID)
		if err != nil {
			return nil, err
		}

		if !leaf {
			return nil, ErrRubricaNotLeaf
		}

		if update.InitialAllocation.IsNegative() {
			return nil, ErrInitialAllocationNegative
		}

		// Only the initial allocation is set here. recalculateChain
		// compares the stored computed allocation against the fresh
		// one, so it both persists the new value and reports the leaf
		// as changed, which refreshes its execution snapshots.
		rubrica.InitialAllocation = *update.InitialAllocation
		recalculate = true
	}

	err := tx.Save(rubrica).Error
	if err != nil {
		return nil, err
	}

	if !recalculate {
		return nil, nil
	}

	return recalculateChain(tx, rubrica)
}

// DeactivateRubrica sets the rubrica inactive, removing it from the
// allocation computation of its ancestors. Expenses already recorded
// against it are kept.
func DeactivateRubrica(tx *gorm.DB, rubrica *Rubrica) ([]uuid.UUID, error) {
	status := StatusInactive
	return UpdateRubrica(tx, rubrica, RubricaUpdate{Status: &status})
}

// DeleteRubrica deletes a rubrica that nothing references. A rubrica
// with children or expenses can only be deactivated.
func DeleteRubrica(tx *gorm.DB, rubrica *Rubrica) ([]uuid.UUID, error) {
	leaf, err := isLeaf(tx, rubrica.ID)
	if err != nil {
		return nil, err
	}

	if !leaf {
		return nil, ErrRubricaHasChildren
	}

	var count int64
	err = tx.Model(&Expense{}).Where("rubrica_id = ?", rubrica.ID).Count(&count).Error
	if err != nil {
		return nil, err
	}

	if count > 0 {
		return nil, ErrRubricaReferencedByExpense
	}

	err = tx.Delete(rubrica).Error
	if err != nil {
		return nil, err
	}

	if rubrica.ParentID == nil {
		return nil, nil
	}

	var parent Rubrica
	err = tx.First(&parent, *rubrica.ParentID).Error
	if err != nil {
		return nil, err
	}

	return recalculateChain(tx, &parent)
}

func isLeaf(tx *gorm.DB, id uuid.UUID) (bool, error) {
	var count int64
	err := tx.Model(&Rubrica{}).Where("parent_id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}

	return count == 0, nil
}

// computedAllocation returns what the computed allocation of the
// rubrica should be: the sum over its active children, or its own
// initial allocation if it has none at all.
func computedAllocation(tx *gorm.DB, rubrica *Rubrica) (decimal.Decimal, error) {
	var children []Rubrica
	err := tx.Where("parent_id = ?", rubrica.ID).Find(&children).Error
	if err != nil {
		return decimal.Zero, err
	}

	if len(children) == 0 {
		return rubrica.InitialAllocation, nil
	}

	sum := decimal.Zero
	for _, child := range children {
		if child.Active() {
			sum = sum.Add(child.ComputedAllocation)
		}
	}

	return sum, nil
}

// recalculateChain refreshes the computed allocation of the rubrica and
// walks up to the root. Once an ancestor's stored value turns out to be
// correct already, nothing above it can have changed either and the
// walk stops. The starting node never stops the walk since its own
// status or allocation may have changed without affecting its stored
// computed allocation.
//
// Returns the IDs of all rubricas whose computed allocation changed and
// refreshes the allocation snapshots of their monthly execution rows.
func recalculateChain(tx *gorm.DB, rubrica *Rubrica) ([]uuid.UUID, error) {
	changed := make([]uuid.UUID, 0)

	current := rubrica
	first := true
	for {
		value, err := computedAllocation(tx, current)
		if err != nil {
			return nil, err
		}

		if !value.Equal(current.ComputedAllocation) {
			err = tx.Model(current).Update("ComputedAllocation", value).Error
			if err != nil {
				return nil, err
			}
			current.ComputedAllocation = value
			changed = append(changed, current.ID)
		} else if !first {
			break
		}

		first = false
		if current.ParentID == nil {
			break
		}

		var parent Rubrica
		err = tx.First(&parent, *current.ParentID).Error
		if err != nil {
			return nil, err
		}
		current = &parent
	}

	err := RefreshExecutionAllocations(tx, changed)
	if err != nil {
		return nil, err
	}

	return changed, nil
}

// RecalculateFiscalYear recomputes the allocation of every rubrica of
// the fiscal year bottom-up. This repairs drift, e.g. after manual
// database surgery, and is exposed as an admin operation.
func RecalculateFiscalYear(tx *gorm.DB, year int) ([]uuid.UUID, error) {
	var rubricas []Rubrica
	err := tx.Where("fiscal_year = ?", year).Order("level desc").Find(&rubricas).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*Rubrica, len(rubricas))
	children := make(map[uuid.UUID][]*Rubrica)
	for i := range rubricas {
		byID[rubricas[i].ID] = &rubricas[i]
	}
	for i := range rubricas {
		if rubricas[i].ParentID != nil {
			children[*rubricas[i].ParentID] = append(children[*rubricas[i].ParentID], &rubricas[i])
		}
	}

	changed := make([]uuid.UUID, 0)

	// rubricas is ordered by level descending, so every node is
	// visited after all of its children
	for i := range rubricas {
		rubrica := &rubricas[i]

		value := rubrica.InitialAllocation
		if len(children[rubrica.ID]) > 0 {
			value = decimal.Zero
			for _, child := range children[rubrica.ID] {
				if child.Active() {
					value = value.Add(child.ComputedAllocation)
				}
			}
		}

		if !value.Equal(rubrica.ComputedAllocation) {
			err = tx.Model(rubrica).Update("ComputedAllocation", value).Error
			if err != nil {
				return nil, err
			}
			rubrica.ComputedAllocation = value
			changed = append(changed, rubrica.ID)
		}
	}

	err = RefreshExecutionAllocations(tx, changed)
	if err != nil {
		return nil, err
	}

	return changed, nil
}

// TreeNode is a rubrica with its children, confirmed spend and balance
// for the tree view.
type TreeNode struct {
	Rubrica
	ConfirmedSpend decimal.Decimal `json:"confirmedSpend"`
	Balance        decimal.Decimal `json:"balance"`
	Children       []*TreeNode     `json:"children"`
}

// FetchTree returns the rubrica hierarchy of the fiscal year. The
// confirmed spend of a node includes all of its descendants.
func FetchTree(db *gorm.DB, year int) ([]*TreeNode, error) {
	var rubricas []Rubrica
	err := db.Where("fiscal_year = ?", year).Order("code").Find(&rubricas).Error
	if err != nil {
		return nil, err
	}

	type spendRow struct {
		RubricaID uuid.UUID
		Total     decimal.Decimal
	}

	var spends []spendRow
	err = db.Model(&Expense{}).
		Select("rubrica_id, SUM(amount) AS total").
		Where("fiscal_year = ? AND status = ?", year, ExpenseConfirmed).
		Group("rubrica_id").
		Scan(&spends).Error
	if err != nil {
		return nil, err
	}

	spendByID := make(map[uuid.UUID]decimal.Decimal, len(spends))
	for _, row := range spends {
		spendByID[row.RubricaID] = row.Total
	}

	nodes := make(map[uuid.UUID]*TreeNode, len(rubricas))
	for _, rubrica := range rubricas {
		nodes[rubrica.ID] = &TreeNode{
			Rubrica:        rubrica,
			ConfirmedSpend: spendByID[rubrica.ID],
			Children:       []*TreeNode{},
		}
	}

	roots := make([]*TreeNode, 0)
	for _, rubrica := range rubricas {
		node := nodes[rubrica.ID]
		if rubrica.ParentID == nil {
			roots = append(roots, node)
			continue
		}

		if parent, ok := nodes[*rubrica.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}

	var rollup func(node *TreeNode) decimal.Decimal
	rollup = func(node *TreeNode) decimal.Decimal {
		for _, child := range node.Children {
			node.ConfirmedSpend = node.ConfirmedSpend.Add(rollup(child))
		}
		node.Balance = node.ComputedAllocation.Sub(node.ConfirmedSpend)
		return node.ConfirmedSpend
	}

	for _, root := range roots {
		rollup(root)
	}

	sort.Slice(roots, func(i, j int) bool { return roots[i].Code < roots[j].Code })

	return roots, nil
}
