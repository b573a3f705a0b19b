package swagger

import "github.com/antonio-alexander/go-blog-crud/internal/data"

// swagger:route GET /employees/{id} Employee ReadEmployee
// Reads an employee using its id.
//
//     Produces:
//     - application/json
//
// responses:
//   200: EmployeeGetResponseOk
//   400: ErrorResponseBadRequest
//   404: ErrorResponseNotFound
//   503: ErrorResponseServiceUnavailable

// swagger:response EmployeeGetResponseOk
type EmployeeGetResponseOk struct {
	// in:body
	Employee data.Employee
}

// swagger:parameters ReadEmployee
type EmployeeGetParams struct {
	// in:path
	ID int64 `json:"id"`

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
