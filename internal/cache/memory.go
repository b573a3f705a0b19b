package cache

import (
	"context"
	"sync"

	"github.com/antonio-alexander/go-blog-crud/internal"
	"github.com/antonio-alexander/go-blog-crud/internal/data"
	"github.com/antonio-alexander/go-blog-crud/internal/utilities"
)

type memoryCache struct {
	sync.RWMutex
	employees map[int64]*data.Employee //map[id]employee
	list      []int64                  //nil when not cached
	utilities.Logger
}

func NewMemory(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	Cache
} {
	c := &memoryCache{
		employees: make(map[int64]*data.Employee),
		Logger:    utilities.NewNopLogger(),
	}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case utilities.Logger:
			c.Logger = p
		}
	}
	return c
}

func (c *memoryCache) Configure(envs map[string]string) error {
	return nil
}

func (c *memoryCache) Open(ctx context.Context) error {
	return nil
}

func (c *memoryCache) Close(ctx context.Context) error {
	return c.Clear(ctx)
}

func (c *memoryCache) Clear(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	c.employees = make(map[int64]*data.Employee)
	c.list = nil
	c.Trace(ctx, "cleared memory cache")
	return nil
}

func (c *memoryCache) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	c.RLock()
	defer c.RUnlock()

	employee, ok := c.employees[id]
	if !ok {
		return nil, ErrEmployeeNotCached
	}
	return copyEmployee(employee), nil
}

func (c *memoryCache) EmployeesRead(ctx context.Context) ([]*data.Employee, error) {
	c.RLock()
	defer c.RUnlock()

	if c.list == nil {
		return nil, ErrEmployeesNotCached
	}
	employees := make([]*data.Employee, 0, len(c.list))
	for _, id := range c.list {
		employee, ok := c.employees[id]
		if !ok {
			return nil, ErrEmployeesNotCached
		}
		employees = append(employees, copyEmployee(employee))
	}
	return employees, nil
}

func (c *memoryCache) EmployeesWrite(ctx context.Context, employees ...*data.Employee) error {
	c.Lock()
	defer c.Unlock()

	for _, e := range employees {
		c.employees[e.ID] = copyEmployee(e)
	}
	return nil
}

func (c *memoryCache) EmployeeListWrite(ctx context.Context, employees []*data.Employee) error {
	c.Lock()
	defer c.Unlock()

	list := make([]int64, 0, len(employees))
	for _, e := range employees {
		c.employees[e.ID] = copyEmployee(e)
		list = append(list, e.ID)
	}
	c.list = list
	return nil
}

func (c *memoryCache) EmployeesDelete(ctx context.Context, ids ...int64) error {
	c.Lock()
	defer c.Unlock()

	for _, id := range ids {
		delete(c.employees, id)
	}
	c.list = nil
	return nil
}
