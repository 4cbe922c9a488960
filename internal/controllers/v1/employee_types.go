package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/orcamento-aberto/backend/internal/httputil"
	"github.com/orcamento-aberto/backend/internal/models"
)

// EmployeeEditable represents all user configurable parameters
type EmployeeEditable struct {
	Name       string `json:"name" example:"Maria Santos"`                              // Name of the employee
	Email      string `json:"email" example:"maria.santos@example.com"`                 // Email address, unique
	Category   string `json:"category" example:"senior technician" default:""`          // Professional category
	Department string `json:"department" example:"finance" default:""`                  // Department the employee works in
	Active     bool   `json:"active" example:"true" default:"true"`                     // Whether the employee is active
}

func (editable EmployeeEditable) model() models.Employee {
	return models.Employee{
		Name:       editable.Name,
		Email:      editable.Email,
		Category:   editable.Category,
		Department: editable.Department,
		Active:     editable.Active,
	}
}

type EmployeeLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/employees/0a3919b1-083d-41c0-b9b7-8bb2ae25bd30"` // The employee itself
}

type Employee struct {
	models.DefaultModel
	EmployeeEditable
	Links EmployeeLinks `json:"links"`
}

func newEmployee(c *gin.Context, model models.Employee) Employee {
	url := httputil.RequestHost(c)

	return Employee{
		DefaultModel: model.DefaultModel,
		EmployeeEditable: EmployeeEditable{
			Name:       model.Name,
			Email:      model.Email,
			Category:   model.Category,
			Department: model.Department,
			Active:     model.Active,
		},
		Links: EmployeeLinks{
			Self: fmt.Sprintf("%s/v1/employees/%s", url, model.ID),
		},
	}
}

type EmployeeListResponse struct {
	Data       []Employee  `json:"data"`                                                          // List of employees
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type EmployeeResponse struct {
	Data  *Employee `json:"data"`                                                          // Data for the employee
	Error *string   `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type EmployeeQueryFilter struct {
	Name       string `form:"name" filterField:"false"`   // By name, fuzzy
	Email      string `form:"email"`                      // By email address
	Category   string `form:"category"`                   // By professional category
	Department string `form:"department"`                 // By department
	Active     bool   `form:"active"`                     // Is the employee active?
	Offset     uint   `form:"offset" filterField:"false"` // The offset of the first employee returned. Defaults to 0.
	Limit      int    `form:"limit" filterField:"false"`  // Maximum number of employees to return. Defaults to 50.
}

func (f EmployeeQueryFilter) model() models.Employee {
	return models.Employee{
		Email:      f.Email,
		Category:   f.Category,
		Department: f.Department,
		Active:     f.Active,
	}
}
