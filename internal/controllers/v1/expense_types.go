package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/orcamento-aberto/backend/internal/httputil"
	"github.com/orcamento-aberto/backend/internal/models"
	oa_uuid "github.com/orcamento-aberto/backend/internal/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseEditable represents all user configurable parameters
type ExpenseEditable struct {
	RubricaID        uuid.UUID       `json:"rubricaId" example:"62581472-6f26-4bb6-b049-b7a13e8452a2"`      // ID of the leaf rubrica the expense is recorded against
	SupplierID       *uuid.UUID      `json:"supplierId" example:"00c2d93f-9ca2-4f24-b605-a75327e5e0d8"`     // ID of the supplier, optional
	SupplierName     string          `json:"supplierName" example:"EDP Comercial" default:""`               // Free text supplier name, resolved through the match rules
	Description      string          `json:"description" example:"office supplies" default:""`              // Description of the expense
	RequisitionRef   string          `json:"requisitionRef" example:"REQ-2025-0042" default:""`             // Requisition reference
	JustificationRef string          `json:"justificationRef" example:"JUST-2025-0017" default:""`          // Justification reference
	PaymentOrderRef  string          `json:"paymentOrderRef" example:"OP-2025-0102" default:""`             // Payment order reference
	Amount           decimal.Decimal `json:"amount" example:"149.99"`                                       // Amount of the expense
	IssueDate        time.Time       `json:"issueDate" example:"2025-03-10T00:00:00Z"`                      // Date the expense was issued
	BatchRef         string          `json:"batchRef" example:"2025-march-import" default:""`               // Reference of the batch the expense was loaded with, optional
}

func (editable ExpenseEditable) model() models.Expense {
	return models.Expense{
		RubricaID:        editable.RubricaID,
		SupplierID:       editable.SupplierID,
		SupplierName:     editable.SupplierName,
		Description:      editable.Description,
		RequisitionRef:   editable.RequisitionRef,
		JustificationRef: editable.JustificationRef,
		PaymentOrderRef:  editable.PaymentOrderRef,
		Amount:           editable.Amount,
		IssueDate:        editable.IssueDate,
		BatchRef:         editable.BatchRef,
	}
}

type ExpenseLinks struct {
	Self    string `json:"self" example:"https://example.com/api/v1/expenses/a3a1bd9a-55b1-4132-bf7c-25f2d4ff55ae"`            // The expense itself
	Rubrica string `json:"rubrica" example:"https://example.com/api/v1/rubricas/62581472-6f26-4bb6-b049-b7a13e8452a2"`         // The rubrica the expense is recorded against
	Confirm string `json:"confirm" example:"https://example.com/api/v1/expenses/a3a1bd9a-55b1-4132-bf7c-25f2d4ff55ae/confirm"` // Confirm the expense
	Cancel  string `json:"cancel" example:"https://example.com/api/v1/expenses/a3a1bd9a-55b1-4132-bf7c-25f2d4ff55ae/cancel"`   // Cancel the expense
}

type Expense struct {
	models.DefaultModel
	ExpenseEditable
	Links ExpenseLinks `json:"links"`

	// These fields are computed
	FiscalYear int                  `json:"fiscalYear" example:"2025"`                                // Fiscal year, derived from the rubrica
	Month      int                  `json:"month" example:"3"`                                        // Month, derived from the issue date
	Status     models.ExpenseStatus `json:"status" example:"pending" enums:"pending,confirmed,cancelled"` // Status of the expense
}

func newExpense(c *gin.Context, model models.Expense) Expense {
	url := httputil.RequestHost(c)

	return Expense{
		DefaultModel: model.DefaultModel,
		ExpenseEditable: ExpenseEditable{
			RubricaID:        model.RubricaID,
			SupplierID:       model.SupplierID,
			SupplierName:     model.SupplierName,
			Description:      model.Description,
			RequisitionRef:   model.RequisitionRef,
			JustificationRef: model.JustificationRef,
			PaymentOrderRef:  model.PaymentOrderRef,
			Amount:           model.Amount,
			IssueDate:        model.IssueDate,
			BatchRef:         model.BatchRef,
		},
		FiscalYear: model.FiscalYear,
		Month:      model.Month,
		Status:     model.Status,
		Links: ExpenseLinks{
			Self:    fmt.Sprintf("%s/v1/expenses/%s", url, model.ID),
			Rubrica: fmt.Sprintf("%s/v1/rubricas/%s", url, model.RubricaID),
			Confirm: fmt.Sprintf("%s/v1/expenses/%s/confirm", url, model.ID),
			Cancel:  fmt.Sprintf("%s/v1/expenses/%s/cancel", url, model.ID),
		},
	}
}

type ExpenseListResponse struct {
	Data       []Expense   `json:"data"`                                                          // List of expenses
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type ExpenseResponse struct {
	Data  *Expense `json:"data"`                                                          // Data for the expense
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type ExpenseQueryFilter struct {
	FiscalYear int                  `form:"year"`                       // By fiscal year
	Month      int                  `form:"month"`                      // By month
	RubricaID  oa_uuid.UUID         `form:"rubrica"`                    // By ID of the rubrica
	SupplierID oa_uuid.UUID         `form:"supplier"`                   // By ID of the supplier
	Status     models.ExpenseStatus `form:"status"`                     // By status
	BatchRef   string               `form:"batch"`                      // By batch reference
	Search     string               `form:"search" filterField:"false"` // Search in description and supplier name
	Offset     uint                 `form:"offset" filterField:"false"` // The offset of the first expense returned. Defaults to 0.
	Limit      int                  `form:"limit" filterField:"false"`  // Maximum number of expenses to return. Defaults to 50.
}

func (f ExpenseQueryFilter) model() models.Expense {
	var supplierID *uuid.UUID
	if f.SupplierID.UUID != uuid.Nil {
		supplierID = &f.SupplierID.UUID
	}

	return models.Expense{
		FiscalYear: f.FiscalYear,
		Month:      f.Month,
		RubricaID:  f.RubricaID.UUID,
		SupplierID: supplierID,
		Status:     f.Status,
		BatchRef:   f.BatchRef,
	}
}

// ExpenseUpdateBody contains the fields that can be changed on a
// pending expense.
type ExpenseUpdateBody struct {
	RubricaID        *uuid.UUID       `json:"rubricaId"`        // New rubrica
	SupplierID       *uuid.UUID       `json:"supplierId"`       // New supplier
	SupplierName     *string          `json:"supplierName"`     // New free text supplier name
	Description      *string          `json:"description"`      // New description
	RequisitionRef   *string          `json:"requisitionRef"`   // New requisition reference
	JustificationRef *string          `json:"justificationRef"` // New justification reference
	PaymentOrderRef  *string          `json:"paymentOrderRef"`  // New payment order reference
	Amount           *decimal.Decimal `json:"amount"`           // New amount
	IssueDate        *time.Time       `json:"issueDate"`        // New issue date
}

// ActorBody names who is confirming or cancelling an expense.
type ActorBody struct {
	Actor string `json:"actor" example:"finance department" default:""` // Who is making the change
}
