package sql

import (
	"context"
	"sort"
	"sync"

	"github.com/antonio-alexander/go-blog-crud/internal"
	"github.com/antonio-alexander/go-blog-crud/internal/data"
	"github.com/antonio-alexander/go-blog-crud/internal/utilities"
)

type memory struct {
	sync.RWMutex
	employees map[int64]*data.Employee //map[id]employee
	lastID    int64
	utilities.Logger
}

// NewMemory is safe for concurrent use, ids start at 1 and are never reused
func NewMemory(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Sql
} {
	m := &memory{
		employees: make(map[int64]*data.Employee),
		Logger:    utilities.NewNopLogger(),
	}
	for _, parameter := range parameters {
		switch v := parameter.(type) {
		case utilities.Logger:
			m.Logger = v
		}
	}
	return m
}

func (m *memory) Configure(envs map[string]string) error {
	return nil
}

func (m *memory) Open(ctx context.Context) error {
	m.Debug(ctx, "using in-memory store")
	return nil
}

func (m *memory) Close(ctx context.Context) error {
	return nil
}

func (m *memory) EmployeesRead(ctx context.Context) ([]*data.Employee, error) {
	m.RLock()
	defer m.RUnlock()

	employees := make([]*data.Employee, 0, len(m.employees))
	for _, employee := range m.employees {
		employees = append(employees, copyEmployee(employee))
	}
	sort.Slice(employees, func(i, j int) bool {
		return employees[i].ID < employees[j].ID
	})
	return employees, nil
}

func (m *memory) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	m.RLock()
	defer m.RUnlock()

	employee, ok := m.employees[id]
	if !ok {
		return nil, data.ErrEmployeeNotFound
	}
	return copyEmployee(employee), nil
}

func (m *memory) EmployeeCreate(ctx context.Context, employee data.Employee) (*data.Employee, error) {
	m.Lock()
	defer m.Unlock()

	m.lastID++
	employee.ID = m.lastID
	m.employees[employee.ID] = copyEmployee(&employee)
	return copyEmployee(&employee), nil
}

func (m *memory) EmployeeUpdate(ctx context.Context, id int64, employee data.Employee) (*data.Employee, error) {
	m.Lock()
	defer m.Unlock()

	if _, ok := m.employees[id]; !ok {
		return nil, data.ErrEmployeeNotFound
	}
	employee.ID = id
	m.employees[id] = copyEmployee(&employee)
	return copyEmployee(&employee), nil
}

func (m *memory) EmployeeDelete(ctx context.Context, id int64) error {
	m.Lock()
	defer m.Unlock()

	if _, ok := m.employees[id]; !ok {
		return data.ErrEmployeeNotFound
	}
	delete(m.employees, id)
	return nil
}
