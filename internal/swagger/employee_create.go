package swagger

import "github.com/antonio-alexander/go-blog-crud/internal/data"

// swagger:route POST /employees Employee CreateEmployee
// Creates an employee, the id is assigned by the store.
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - text/plain
//
// responses:
//   200: EmployeePostResponseOk
//   400: ErrorResponseBadRequest
//   403: ErrorResponseForbidden
//   503: ErrorResponseServiceUnavailable

// swagger:response EmployeePostResponseOk
type EmployeePostResponseOk struct {
	// example: Create Successfully!
	// in:body
	Message string
}

// swagger:parameters CreateEmployee
type EmployeePostParams struct {
	// in:body
	Employee data.Employee

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
