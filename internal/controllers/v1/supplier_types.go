package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/orcamento-aberto/backend/internal/httputil"
	"github.com/orcamento-aberto/backend/internal/models"
)

// SupplierEditable represents all user configurable parameters
type SupplierEditable struct {
	Name         string              `json:"name" example:"EDP Comercial"`                                // Name of the supplier
	Kind         models.SupplierKind `json:"kind" example:"company" enums:"individual,company"`           // Kind of the supplier
	TaxID        string              `json:"taxId" example:"503504564"`                                   // Tax ID, unique
	InternalCode string              `json:"internalCode" example:"F-0042" default:""`                    // Internal code, optional
	Active       bool                `json:"active" example:"true" default:"true"`                        // Whether the supplier can be used on new expenses
}

func (editable SupplierEditable) model() models.Supplier {
	return models.Supplier{
		Name:         editable.Name,
		Kind:         editable.Kind,
		TaxID:        editable.TaxID,
		InternalCode: editable.InternalCode,
		Active:       editable.Active,
	}
}

type SupplierLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/suppliers/00c2d93f-9ca2-4f24-b605-a75327e5e0d8"` // The supplier itself
}

type Supplier struct {
	models.DefaultModel
	SupplierEditable
	Links SupplierLinks `json:"links"`

	// NormalizedName is computed from the name
	NormalizedName string `json:"normalizedName" example:"edp comercial"` // Lower case with accents folded, used for matching
}

func newSupplier(c *gin.Context, model models.Supplier) Supplier {
	url := httputil.RequestHost(c)

	return Supplier{
		DefaultModel: model.DefaultModel,
		SupplierEditable: SupplierEditable{
			Name:         model.Name,
			Kind:         model.Kind,
			TaxID:        model.TaxID,
			InternalCode: model.InternalCode,
			Active:       model.Active,
		},
		NormalizedName: model.NormalizedName,
		Links: SupplierLinks{
			Self: fmt.Sprintf("%s/v1/suppliers/%s", url, model.ID),
		},
	}
}

type SupplierListResponse struct {
	Data       []Supplier  `json:"data"`                                                          // List of suppliers
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type SupplierResponse struct {
	Data  *Supplier `json:"data"`                                                          // Data for the supplier
	Error *string   `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type SupplierQueryFilter struct {
	Name   string `form:"name" filterField:"false"`   // By name, fuzzy
	Kind   string `form:"kind"`                       // By kind
	TaxID  string `form:"taxId"`                      // By tax ID
	Active bool   `form:"active"`                     // Is the supplier active?
	Offset uint   `form:"offset" filterField:"false"` // The offset of the first supplier returned. Defaults to 0.
	Limit  int    `form:"limit" filterField:"false"`  // Maximum number of suppliers to return. Defaults to 50.
}

func (f SupplierQueryFilter) model() models.Supplier {
	return models.Supplier{
		Kind:   models.SupplierKind(f.Kind),
		TaxID:  f.TaxID,
		Active: f.Active,
	}
}
