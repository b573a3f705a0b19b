package cache

import (
	"context"
	"fmt"

	"github.com/antonio-alexander/go-blog-crud/internal"
	"github.com/antonio-alexander/go-blog-crud/internal/data"
	"github.com/antonio-alexander/go-blog-crud/internal/utilities"

	"github.com/antonio-alexander/go-stash"
)

const stashKeyEmployeesList string = "employees_list"

type stashCache struct {
	utilities.Logger
	stash interface {
		stash.Configurer
		stash.Parameterizer
		stash.Initializer
		stash.Shutdowner
	}
	stash.Stasher
}

// NewStash wraps a go-stash implementation (e.g. memory or redis), without
// one every read is a miss
func NewStash(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	Cache
} {
	c := &stashCache{Logger: utilities.NewNopLogger()}
	for _, p := range parameters {
		switch p := p.(type) {
		case utilities.Logger:
			c.Logger = p
		case interface {
			stash.Configurer
			stash.Parameterizer
			stash.Initializer
			stash.Shutdowner
			stash.Stasher
		}:
			c.stash = p
			c.Stasher = p
		}
	}
	if c.stash != nil {
		c.stash.SetParameters(parameters...)
	}
	return c
}

func employeeKey(id int64) string {
	return fmt.Sprintf("employee_%d", id)
}

func (c *stashCache) Configure(envs map[string]string) error {
	if c.stash != nil {
		if err := c.stash.Configure(envs); err != nil {
			return err
		}
	}
	return nil
}

func (c *stashCache) Open(ctx context.Context) error {
	if c.stash != nil {
		return c.stash.Initialize()
	}
	return nil
}

func (c *stashCache) Close(ctx context.Context) error {
	if c.stash != nil {
		return c.stash.Shutdown()
	}
	return nil
}

func (c *stashCache) Clear(ctx context.Context) error {
	if c.Stasher == nil {
		return nil
	}
	return c.Stasher.Clear()
}

func (c *stashCache) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	if c.Stasher == nil {
		return nil, ErrEmployeeNotCached
	}
	employee := &data.Employee{}
	if err := c.Stasher.Read(employeeKey(id), employee); err != nil {
		c.Trace(ctx, "cache miss for employee (%d): %s", id, err)
		return nil, ErrEmployeeNotCached
	}
	c.Trace(ctx, "cache hit for employee: %d", id)
	return employee, nil
}

func (c *stashCache) EmployeesRead(ctx context.Context) ([]*data.Employee, error) {
	if c.Stasher == nil {
		return nil, ErrEmployeesNotCached
	}
	list := &data.EmployeeList{}
	if err := c.Stasher.Read(stashKeyEmployeesList, list); err != nil {
		c.Trace(ctx, "cache miss for employees: %s", err)
		return nil, ErrEmployeesNotCached
	}
	employees := make([]*data.Employee, 0, len(list.IDs))
	for _, id := range list.IDs {
		employee := &data.Employee{}
		if err := c.Stasher.Read(employeeKey(id), employee); err != nil {
			//KIM: we don't want to fail half way, a partial list
			// invalidates the whole list
			c.Trace(ctx, "cache miss for employees, employee (%d) missing", id)
			if err := c.Stasher.Delete(stashKeyEmployeesList); err != nil {
				c.Error(ctx, "error while deleting employees list: %s", err)
			}
			return nil, ErrEmployeesNotCached
		}
		employees = append(employees, employee)
	}
	c.Trace(ctx, "cache hit for employees")
	return employees, nil
}

func (c *stashCache) EmployeesWrite(ctx context.Context, employees ...*data.Employee) error {
	if c.Stasher == nil {
		return nil
	}
	for _, employee := range employees {
		if _, err := c.Stasher.Write(employeeKey(employee.ID), employee); err != nil {
			return err
		}
		c.Trace(ctx, "cached employee: %d", employee.ID)
	}
	return nil
}

func (c *stashCache) EmployeeListWrite(ctx context.Context, employees []*data.Employee) error {
	if c.Stasher == nil {
		return nil
	}
	if err := c.EmployeesWrite(ctx, employees...); err != nil {
		return err
	}
	list := &data.EmployeeList{IDs: make([]int64, 0, len(employees))}
	for _, employee := range employees {
		list.IDs = append(list.IDs, employee.ID)
	}
	if _, err := c.Stasher.Write(stashKeyEmployeesList, list); err != nil {
		return err
	}
	c.Trace(ctx, "cached employees: %d", len(list.IDs))
	return nil
}

func (c *stashCache) EmployeesDelete(ctx context.Context, ids ...int64) error {
	if c.Stasher == nil {
		return nil
	}
	for _, id := range ids {
		if err := c.Stasher.Delete(employeeKey(id)); err != nil {
			//KIM: a miss on delete isn't an error for us
			c.Trace(ctx, "unable to evict employee (%d): %s", id, err)
			continue
		}
		c.Trace(ctx, "evicted cached employee: %d", id)
	}
	if err := c.Stasher.Delete(stashKeyEmployeesList); err != nil {
		c.Trace(ctx, "unable to evict employees list: %s", err)
	}
	return nil
}
