package swagger

import "github.com/antonio-alexander/go-blog-crud/internal/data"

// swagger:route PUT /employees/{id} Employee UpdateEmployee
// Updates an employee using its id, a missing employee responds with
// "Not Found!".
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - text/plain
//
// responses:
//   200: EmployeePutResponseOk
//   400: ErrorResponseBadRequest
//   403: ErrorResponseForbidden
//   503: ErrorResponseServiceUnavailable

// swagger:response EmployeePutResponseOk
type EmployeePutResponseOk struct {
	// example: Update Successfully!
	// in:body
	Message string
}

// swagger:parameters UpdateEmployee
type EmployeePutParams struct {
	// in:path
	ID int64 `json:"id"`

	// in:body
	Employee data.Employee

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
