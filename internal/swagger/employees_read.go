package swagger

import "github.com/antonio-alexander/go-blog-crud/internal/data"

// swagger:route GET /employees Employee ReadEmployees
// Reads all employees, an empty store returns an empty array.
//
//     Produces:
//     - application/json
//
// responses:
//   200: EmployeesGetResponseOk
//   503: ErrorResponseServiceUnavailable

// swagger:response EmployeesGetResponseOk
type EmployeesGetResponseOk struct {
	// in:body
	Employees []data.Employee
}

// swagger:parameters ReadEmployees
type EmployeesGetParams struct {
	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
