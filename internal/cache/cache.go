package cache

import (
	"context"
	"errors"

	"github.com/antonio-alexander/go-blog-crud/internal/data"
)

var (
	ErrEmployeeNotCached  = errors.New("employee not cached")
	ErrEmployeesNotCached = errors.New("employees not cached")
)

// Cache holds individual employees and, separately, the list of all
// employees; deleting any employee invalidates the list
type Cache interface {
	EmployeeRead(ctx context.Context, id int64) (*data.Employee, error)
	EmployeesRead(ctx context.Context) ([]*data.Employee, error)
	EmployeesWrite(ctx context.Context, employees ...*data.Employee) error
	EmployeeListWrite(ctx context.Context, employees []*data.Employee) error
	EmployeesDelete(ctx context.Context, ids ...int64) error
}

func copyEmployee(e *data.Employee) *data.Employee {
	employee := &data.Employee{}
	*employee = *e
	return employee
}
