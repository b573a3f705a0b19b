package logic

import (
	"context"
	"strconv"
	"sync"

	"github.com/antonio-alexander/go-blog-crud/internal"
	"github.com/antonio-alexander/go-blog-crud/internal/cache"
	"github.com/antonio-alexander/go-blog-crud/internal/data"
	"github.com/antonio-alexander/go-blog-crud/internal/sql"
	"github.com/antonio-alexander/go-blog-crud/internal/utilities"

	"github.com/pkg/errors"
)

// Logic is the employee service the router delegates to; create and update
// return a message meant for the caller, delete reports whether an employee
// was actually removed
type Logic interface {
	EmployeesRead(ctx context.Context) ([]*data.Employee, error)
	EmployeeRead(ctx context.Context, id int64) (*data.Employee, error)
	EmployeeCreate(ctx context.Context, employee data.Employee) (string, error)
	EmployeeUpdate(ctx context.Context, id int64, employee data.Employee) (string, error)
	EmployeeDelete(ctx context.Context, id int64) (bool, error)
}

type logic struct {
	sync.RWMutex
	sql.Sql
	cache  cache.Cache
	config struct {
		cacheEnabled   bool
		mutateDisabled bool
	}
	counter utilities.Counter
	utilities.Logger

	//KIM: generation is bumped on every eviction and guards
	// cache writes of data read from the store
	cacheMutex sync.Mutex
	generation uint64
}

func NewLogic(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Logic
} {
	l := &logic{
		Logger:  utilities.NewNopLogger(),
		counter: utilities.NewCounter(),
	}
	for _, parameter := range parameters {
		switch v := parameter.(type) {
		case sql.Sql:
			l.Sql = v
		case cache.Cache:
			l.cache = v
		case utilities.Counter:
			l.counter = v
		case utilities.Logger:
			l.Logger = v
		}
	}
	return l
}

func (l *logic) Configure(envs map[string]string) error {
	l.Lock()
	defer l.Unlock()

	if cacheEnabled, ok := envs["LOGIC_CACHE_ENABLED"]; ok {
		l.config.cacheEnabled, _ = strconv.ParseBool(cacheEnabled)
	}
	if mutateDisabled, ok := envs["LOGIC_MUTATE_DISABLED"]; ok {
		l.config.mutateDisabled, _ = strconv.ParseBool(mutateDisabled)
	}
	return nil
}

func (l *logic) Open(ctx context.Context) error {
	l.Lock()
	defer l.Unlock()

	if l.Sql == nil {
		return errors.New("logic: no store provided")
	}
	if l.config.cacheEnabled && l.cache == nil {
		l.Info(ctx, "cache enabled, but no cache provided; disabling cache")
		l.config.cacheEnabled = false
	}
	if l.config.cacheEnabled {
		l.Info(ctx, "cache enabled")
	}
	if l.config.mutateDisabled {
		l.Info(ctx, "mutation disabled")
	}
	return nil
}

func (l *logic) Close(ctx context.Context) error {
	return nil
}

func (l *logic) cacheEnabled() bool {
	l.RLock()
	defer l.RUnlock()
	return l.config.cacheEnabled
}

func (l *logic) mutateDisabled() bool {
	l.RLock()
	defer l.RUnlock()
	return l.config.mutateDisabled
}

func (l *logic) cacheGeneration() uint64 {
	l.cacheMutex.Lock()
	defer l.cacheMutex.Unlock()
	return l.generation
}

func (l *logic) evict(ctx context.Context, ids ...int64) {
	if !l.cacheEnabled() {
		return
	}
	l.cacheMutex.Lock()
	defer l.cacheMutex.Unlock()

	l.generation++
	if err := l.cache.EmployeesDelete(ctx, ids...); err != nil {
		l.Error(ctx, "error while deleting employees %v from cache: %s", ids, err)
	}
}

// cacheWrite executes write unless an eviction happened since generation
// was read; what was read from the store may already be stale
func (l *logic) cacheWrite(ctx context.Context, generation uint64, write func() error) error {
	l.cacheMutex.Lock()
	defer l.cacheMutex.Unlock()

	if l.generation != generation {
		l.Trace(ctx, "cache evicted during read (generation %d != %d), not caching",
			l.generation, generation)
		return nil
	}
	return write()
}

func (l *logic) EmployeesRead(ctx context.Context) ([]*data.Employee, error) {
	if l.cacheEnabled() {
		employees, err := l.cache.EmployeesRead(ctx)
		if err == nil {
			l.counter.IncrementHit(data.CounterKeyEmployees)
			return employees, nil
		}
		l.counter.IncrementMiss(data.CounterKeyEmployees)
		l.Trace(ctx, "unable to read employees from cache: %s", err)
	}
	generation := l.cacheGeneration()
	employees, err := l.Sql.EmployeesRead(ctx)
	if err != nil {
		return nil, err
	}
	if employees == nil {
		employees = []*data.Employee{}
	}
	if l.cacheEnabled() {
		if err := l.cacheWrite(ctx, generation, func() error {
			return l.cache.EmployeeListWrite(ctx, employees)
		}); err != nil {
			l.Error(ctx, "error while writing employees to cache: %s", err)
		}
	}
	return employees, nil
}

func (l *logic) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	if l.cacheEnabled() {
		employee, err := l.cache.EmployeeRead(ctx, id)
		if err == nil {
			l.counter.IncrementHit(data.CounterKeyEmployee(id))
			return employee, nil
		}
		l.counter.IncrementMiss(data.CounterKeyEmployee(id))
		l.Trace(ctx, "unable to read employee (%d) from cache: %s", id, err)
	}
	generation := l.cacheGeneration()
	employee, err := l.Sql.EmployeeRead(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "reading employee %d", id)
	}
	if l.cacheEnabled() {
		if err := l.cacheWrite(ctx, generation, func() error {
			return l.cache.EmployeesWrite(ctx, employee)
		}); err != nil {
			l.Error(ctx, "error while writing employee (%d) to cache: %s", id, err)
		}
	}
	return employee, nil
}

func (l *logic) EmployeeCreate(ctx context.Context, employee data.Employee) (string, error) {
	if l.mutateDisabled() {
		return "", data.ErrMutationDisabled
	}
	employeeCreated, err := l.Sql.EmployeeCreate(ctx, employee)
	if err != nil {
		return "", errors.Wrap(err, "creating employee")
	}
	l.evict(ctx)
	l.Debug(ctx, "created employee: %d", employeeCreated.ID)
	return data.MessageCreated, nil
}

func (l *logic) EmployeeUpdate(ctx context.Context, id int64, employee data.Employee) (string, error) {
	if l.mutateDisabled() {
		return "", data.ErrMutationDisabled
	}
	if _, err := l.Sql.EmployeeUpdate(ctx, id, employee); err != nil {
		if errors.Is(err, data.ErrEmployeeNotFound) {
			return data.MessageNotFound, nil
		}
		return "", errors.Wrapf(err, "updating employee %d", id)
	}
	l.evict(ctx, id)
	l.Debug(ctx, "updated employee: %d", id)
	return data.MessageUpdated, nil
}

func (l *logic) EmployeeDelete(ctx context.Context, id int64) (bool, error) {
	if l.mutateDisabled() {
		return false, data.ErrMutationDisabled
	}
	if err := l.Sql.EmployeeDelete(ctx, id); err != nil {
		if errors.Is(err, data.ErrEmployeeNotFound) {
			//KIM: evict anyway, the cache may hold a stale copy
			l.evict(ctx, id)
			return false, nil
		}
		return false, errors.Wrapf(err, "deleting employee %d", id)
	}
	l.evict(ctx, id)
	l.Debug(ctx, "deleted employee: %d", id)
	return true, nil
}
