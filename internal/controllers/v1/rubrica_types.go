package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/orcamento-aberto/backend/internal/httputil"
	"github.com/orcamento-aberto/backend/internal/models"
	oa_uuid "github.com/orcamento-aberto/backend/internal/uuid"
	"github.com/shopspring/decimal"
)

// RubricaEditable represents all user configurable parameters
type RubricaEditable struct {
	Code              string               `json:"code" example:"01.02.03"`                                          // Code of the rubrica, unique per fiscal year
	Name              string               `json:"name" example:"Despesas com pessoal"`                              // Name of the rubrica
	Kind              models.RubricaKind   `json:"kind" example:"expense" enums:"expense,revenue"`                   // Whether the rubrica tracks expenses or revenue
	FiscalYear        int                  `json:"fiscalYear" example:"2025"`                                        // Fiscal year the rubrica belongs to
	ParentID          *uuid.UUID           `json:"parentId" example:"62581472-6f26-4bb6-b049-b7a13e8452a2"`          // ID of the parent rubrica, unset for roots
	InitialAllocation decimal.Decimal      `json:"initialAllocation" example:"15000.00" default:"0"`                 // Initial allocation, only meaningful for leaves
	Status            models.RubricaStatus `json:"status" example:"active" enums:"active,inactive,provisional" default:"active"` // Status of the rubrica
}

func (editable RubricaEditable) model() models.Rubrica {
	return models.Rubrica{
		Code:              editable.Code,
		Name:              editable.Name,
		Kind:              editable.Kind,
		FiscalYear:        editable.FiscalYear,
		ParentID:          editable.ParentID,
		InitialAllocation: editable.InitialAllocation,
		Status:            editable.Status,
	}
}

type RubricaLinks struct {
	Self     string `json:"self" example:"https://example.com/api/v1/rubricas/62581472-6f26-4bb6-b049-b7a13e8452a2"`       // The rubrica itself
	Expenses string `json:"expenses" example:"https://example.com/api/v1/expenses?rubrica=62581472-6f26-4bb6-b049-b7a13e8452a2"` // Expenses recorded against this rubrica
}

type Rubrica struct {
	models.DefaultModel
	RubricaEditable
	Links RubricaLinks `json:"links"`

	// These fields are computed
	Level              int             `json:"level" example:"3"`                    // Depth in the hierarchy, 1 for roots
	ComputedAllocation decimal.Decimal `json:"computedAllocation" example:"15000.00"` // Derived allocation of the rubrica
}

func newRubrica(c *gin.Context, model models.Rubrica) Rubrica {
	url := httputil.RequestHost(c)

	return Rubrica{
		DefaultModel: model.DefaultModel,
		RubricaEditable: RubricaEditable{
			Code:              model.Code,
			Name:              model.Name,
			Kind:              model.Kind,
			FiscalYear:        model.FiscalYear,
			ParentID:          model.ParentID,
			InitialAllocation: model.InitialAllocation,
			Status:            model.Status,
		},
		Level:              model.Level,
		ComputedAllocation: model.ComputedAllocation,
		Links: RubricaLinks{
			Self:     fmt.Sprintf("%s/v1/rubricas/%s", url, model.ID),
			Expenses: fmt.Sprintf("%s/v1/expenses?rubrica=%s", url, model.ID),
		},
	}
}

type RubricaListResponse struct {
	Data       []Rubrica   `json:"data"`                                                          // List of rubricas
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type RubricaResponse struct {
	Data  *Rubrica `json:"data"`                                                          // Data for the rubrica
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// RubricaBatchResponse reports the outcome for every item of a batch
// create in order.
type RubricaBatchResponse struct {
	Data  []RubricaResponse `json:"data"`                                                          // The created rubricas or their respective error
	Error *string           `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (r *RubricaBatchResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, RubricaResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type RubricaTreeResponse struct {
	Data  []*models.TreeNode `json:"data"`                                            // Roots of the rubrica hierarchy
	Error *string            `json:"error" example:"the year query parameter must be set"` // The error, if any occurred
}

type RecalculateResponse struct {
	Data  []uuid.UUID `json:"data"`                                            // IDs of the rubricas whose computed allocation changed
	Error *string     `json:"error" example:"the year query parameter must be set"` // The error, if any occurred
}

type RubricaQueryFilter struct {
	FiscalYear int                  `form:"year"`                       // By fiscal year
	Kind       models.RubricaKind   `form:"kind"`                       // By kind
	Status     models.RubricaStatus `form:"status"`                     // By status
	ParentID   oa_uuid.UUID         `form:"parent"`                     // By ID of the parent rubrica
	Level      int                  `form:"level"`                      // By level in the hierarchy
	Code       string               `form:"code" filterField:"false"`   // By code
	Name       string               `form:"name" filterField:"false"`   // By name
	Offset     uint                 `form:"offset" filterField:"false"` // The offset of the first rubrica returned. Defaults to 0.
	Limit      int                  `form:"limit" filterField:"false"`  // Maximum number of rubricas to return. Defaults to 50.
}

func (f RubricaQueryFilter) model() models.Rubrica {
	var parentID *uuid.UUID
	if f.ParentID.UUID != uuid.Nil {
		parentID = &f.ParentID.UUID
	}

	return models.Rubrica{
		FiscalYear: f.FiscalYear,
		Kind:       f.Kind,
		Status:     f.Status,
		ParentID:   parentID,
		Level:      f.Level,
	}
}

// RubricaUpdateBody contains the fields that can be changed on an
// existing rubrica.
type RubricaUpdateBody struct {
	Name              *string               `json:"name" example:"Despesas com pessoal"`             // New name
	Status            *models.RubricaStatus `json:"status" example:"inactive"`                       // New status
	InitialAllocation *decimal.Decimal      `json:"initialAllocation" example:"20000.00"`            // New initial allocation, leaves only
}
