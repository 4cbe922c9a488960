package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orcamento-aberto/backend/internal/httputil"
	"github.com/orcamento-aberto/backend/internal/models"
	"golang.org/x/exp/slices"
)

// RegisterEmployeeRoutes registers the routes for employees with
// the RouterGroup that is passed.
func RegisterEmployeeRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsEmployeeList)
		r.GET("", GetEmployees)
		r.POST("", CreateEmployee)
	}

	// Employee with ID
	{
		r.OPTIONS("/:id", OptionsEmployeeDetail)
		r.GET("/:id", GetEmployee)
		r.PATCH("/:id", UpdateEmployee)
		r.DELETE("/:id", DeleteEmployee)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Employees
// @Success		204
// @Router			/v1/employees [options]
func OptionsEmployeeList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Employees
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/employees/{id} [options]
func OptionsEmployeeDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.Employee{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create employee
// @Description	Creates a new employee
// @Tags			Employees
// @Produce		json
// @Success		201			{object}	EmployeeResponse
// @Failure		400			{object}	EmployeeResponse
// @Failure		500			{object}	EmployeeResponse
// @Param			employee	body		EmployeeEditable	true	"Employee"
// @Router			/v1/employees [post]
func CreateEmployee(c *gin.Context) {
	var editable EmployeeEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EmployeeResponse{
			Error: &e,
		})
		return
	}

	employee := editable.model()

	err = models.DB.Create(&employee).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EmployeeResponse{
			Error: &e,
		})
		return
	}

	data := newEmployee(c, employee)
	c.JSON(http.StatusCreated, EmployeeResponse{Data: &data})
}

// @Summary		Get employees
// @Description	Returns a list of employees
// @Tags			Employees
// @Produce		json
// @Success		200	{object}	EmployeeListResponse
// @Failure		500	{object}	EmployeeListResponse
// @Router			/v1/employees [get]
// @Param			name		query	string	false	"Filter by name"
// @Param			email		query	string	false	"Filter by email address"
// @Param			category	query	string	false	"Filter by professional category"
// @Param			department	query	string	false	"Filter by department"
// @Param			active		query	bool	false	"Is the employee active?"
// @Param			offset		query	uint	false	"The offset of the first employee returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of employees to return. Defaults to 50."
func GetEmployees(c *gin.Context) {
	var filter EmployeeQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	// Get the fields that we are filtering for
	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.
		Order("name ASC").
		Where(filter.model(), queryFields...)

	q = nameFilter(q, setFields, filter.Name)

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 employees and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var employees []models.Employee
	err := q.Find(&employees).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EmployeeListResponse{
			Error: &e,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EmployeeListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Employee, 0, len(employees))
	for _, employee := range employees {
		data = append(data, newEmployee(c, employee))
	}

	c.JSON(http.StatusOK, EmployeeListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get employee
// @Description	Returns a specific employee
// @Tags			Employees
// @Produce		json
// @Success		200	{object}	EmployeeResponse
// @Failure		400	{object}	EmployeeResponse
// @Failure		404	{object}	EmployeeResponse
// @Failure		500	{object}	EmployeeResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/employees/{id} [get]
func GetEmployee(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EmployeeResponse{
			Error: &e,
		})
		return
	}

	var employee models.Employee
	err = models.DB.First(&employee, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EmployeeResponse{
			Error: &e,
		})
		return
	}

	data := newEmployee(c, employee)
	c.JSON(http.StatusOK, EmployeeResponse{Data: &data})
}

// @Summary		Update employee
// @Description	Updates an employee. Only values to be updated need to be specified.
// @Tags			Employees
// @Accept			json
// @Produce		json
// @Success		200			{object}	EmployeeResponse
// @Failure		400			{object}	EmployeeResponse
// @Failure		404			{object}	EmployeeResponse
// @Failure		500			{object}	EmployeeResponse
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			employee	body		EmployeeEditable	true	"Employee"
// @Router			/v1/employees/{id} [patch]
func UpdateEmployee(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EmployeeResponse{
			Error: &e,
		})
		return
	}

	var employee models.Employee
	err = models.DB.First(&employee, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EmployeeResponse{
			Error: &e,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, EmployeeEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EmployeeResponse{
			Error: &e,
		})
		return
	}

	var data EmployeeEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EmployeeResponse{
			Error: &e,
		})
		return
	}

	// Only apply the fields that were set in the request body
	for _, field := range updateFields {
		switch field {
		case "Name":
			employee.Name = data.Name
		case "Email":
			employee.Email = data.Email
		case "Category":
			employee.Category = data.Category
		case "Department":
			employee.Department = data.Department
		case "Active":
			employee.Active = data.Active
		}
	}

	err = models.DB.Save(&employee).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EmployeeResponse{
			Error: &e,
		})
		return
	}

	response := newEmployee(c, employee)
	c.JSON(http.StatusOK, EmployeeResponse{Data: &response})
}

// @Summary		Delete employee
// @Description	Deletes an employee
// @Tags			Employees
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/employees/{id} [delete]
func DeleteEmployee(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var employee models.Employee
	err = models.DB.First(&employee, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&employee).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
