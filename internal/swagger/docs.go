// Package Swagger go-blog-crud
//
// An API to create, read, update and delete employees.
//
//	Schemes: http, https
//	Version: 1.0
//	Host: localhost:8080
//	BasePath:/
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//	- text/plain
//
// swagger:meta
package swagger

import "github.com/antonio-alexander/go-blog-crud/internal/data"

// Returned for a non-integer id or a malformed body.
// swagger:response ErrorResponseBadRequest
type ErrorResponseBadRequest struct {
	// in:body
	Error data.ErrorResponse
}

// Returned when mutation has been disabled.
// swagger:response ErrorResponseForbidden
type ErrorResponseForbidden struct {
	// in:body
	Error data.ErrorResponse
}

// swagger:response ErrorResponseNotFound
type ErrorResponseNotFound struct {
	// in:body
	Error data.ErrorResponse
}

// Returned when the store can't be reached.
// swagger:response ErrorResponseServiceUnavailable
type ErrorResponseServiceUnavailable struct {
	// in:body
	Error data.ErrorResponse
}
