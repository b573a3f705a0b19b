package swagger

// swagger:route DELETE /employees/{id} Employee DeleteEmployee
// Deletes an employee using its id, responds with "Delete Successfully!" or
// "Not Found!".
//
//     Produces:
//     - text/plain
//
// responses:
//   200: EmployeeDeleteResponseOk
//   400: ErrorResponseBadRequest
//   403: ErrorResponseForbidden
//   503: ErrorResponseServiceUnavailable

// swagger:response EmployeeDeleteResponseOk
type EmployeeDeleteResponseOk struct {
	// example: Delete Successfully!
	// in:body
	Message string
}

// swagger:parameters DeleteEmployee
type EmployeeDeleteParams struct {
	// in:path
	ID int64 `json:"id"`

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
