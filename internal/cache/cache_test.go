package cache_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/antonio-alexander/go-blog-crud/internal"
	"github.com/antonio-alexander/go-blog-crud/internal/cache"
	"github.com/antonio-alexander/go-blog-crud/internal/data"

	"github.com/antonio-alexander/go-stash/memory"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

var envs = map[string]string{
	"REDIS_ADDRESS": "localhost",
	"REDIS_PORT":    "6379",
	"REDIS_TIMEOUT": "10",

	"STASH_EVICTION_POLICY": "least_recently_used",
	"STASH_TIME_TO_LIVE":    "60",
	"STASH_MAX_SIZE":        "1048576",
	"STASH_DEBUG_ENABLED":   "false",
}

func init() {
	for key, value := range internal.Envs(os.Environ()) {
		envs[key] = value
	}
}

type cacheTest struct {
	cache interface {
		internal.Configurer
		internal.Opener
		internal.Clearer
	}
	cache.Cache
}

func newCacheTest(cacheType string) *cacheTest {
	var c interface {
		internal.Configurer
		internal.Opener
		internal.Clearer
		cache.Cache
	}

	switch cacheType {
	case "memory":
		c = cache.NewMemory()
	case "stash-memory":
		c = cache.NewStash(memory.New())
	}
	return &cacheTest{
		cache: c,
		Cache: c,
	}
}

func (c *cacheTest) TestCache(t *testing.T) {
	//create employees
	employees := []*data.Employee{
		{ID: 1, Name: internal.GenerateId(), Email: internal.GenerateId()},
		{ID: 2, Name: internal.GenerateId(), Email: internal.GenerateId()},
		{ID: 3, Name: internal.GenerateId(), Email: internal.GenerateId()},
		{ID: 4, Name: internal.GenerateId(), Email: internal.GenerateId()},
		{ID: 5, Name: internal.GenerateId(), Email: internal.GenerateId()},
	}

	//create context
	ctx := context.TODO()

	//clear cache
	err := c.cache.Clear(ctx)
	assert.Nil(t, err)

	// write employees
	err = c.EmployeesWrite(ctx, employees...)
	assert.Nil(t, err)

	// read employee[0]
	employeeRead, err := c.EmployeeRead(ctx, employees[0].ID)
	assert.Nil(t, err)
	assert.Equal(t, employees[0], employeeRead)

	// read employee[1]
	employeeRead, err = c.EmployeeRead(ctx, employees[1].ID)
	assert.Nil(t, err)
	assert.Equal(t, employees[1], employeeRead)

	// list hasn't been written
	_, err = c.EmployeesRead(ctx)
	assert.ErrorIs(t, err, cache.ErrEmployeesNotCached)

	// write list
	err = c.EmployeeListWrite(ctx, employees)
	assert.Nil(t, err)

	// read employees
	employeesRead, err := c.EmployeesRead(ctx)
	assert.Nil(t, err)
	assert.Equal(t, employees, employeesRead)

	// delete employee [1]
	err = c.EmployeesDelete(ctx, employees[1].ID)
	assert.Nil(t, err)

	//  attempt to read employee [1]
	employeeRead, err = c.EmployeeRead(ctx, employees[1].ID)
	assert.ErrorIs(t, err, cache.ErrEmployeeNotCached)
	assert.Nil(t, employeeRead)

	// list was invalidated
	_, err = c.EmployeesRead(ctx)
	assert.ErrorIs(t, err, cache.ErrEmployeesNotCached)

	// an empty list can be cached
	err = c.EmployeeListWrite(ctx, []*data.Employee{})
	assert.Nil(t, err)
	employeesRead, err = c.EmployeesRead(ctx)
	assert.Nil(t, err)
	assert.NotNil(t, employeesRead)
	assert.Empty(t, employeesRead)

	// invalidate without ids
	err = c.EmployeesDelete(ctx)
	assert.Nil(t, err)
	_, err = c.EmployeesRead(ctx)
	assert.ErrorIs(t, err, cache.ErrEmployeesNotCached)
}

func testCache(t *testing.T, cacheType string) {
	c := newCacheTest(cacheType)

	ctx := context.TODO()
	err := c.cache.Configure(envs)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to configure cache")
	}
	err = c.cache.Open(ctx)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to open cache")
	}
	defer func() {
		if err := c.cache.Close(ctx); err != nil {
			t.Logf("error while closing cache: %s", err)
		}
	}()
	t.Run("Cache", c.TestCache)
}

func TestCacheMemory(t *testing.T) {
	testCache(t, "memory")
}

func TestCacheStashMemory(t *testing.T) {
	testCache(t, "stash-memory")
}

func TestCacheMemoryCopies(t *testing.T) {
	ctx := context.TODO()
	c := cache.NewMemory()

	employee := &data.Employee{ID: 1, Name: "Ada"}
	err := c.EmployeesWrite(ctx, employee)
	assert.Nil(t, err)
	employee.Name = "mutated"
	employeeRead, err := c.EmployeeRead(ctx, 1)
	assert.Nil(t, err)
	assert.Equal(t, "Ada", employeeRead.Name)
}

func TestCacheRedis(t *testing.T) {
	ctx := context.TODO()
	ada := &data.Employee{ID: 1, Name: "Ada", Email: "ada@example.com", Phone: "555-0001"}
	grace := &data.Employee{ID: 2, Name: "Grace", Email: "grace@example.com", Phone: "555-0002"}
	adaBytes, _ := ada.MarshalBinary()
	graceBytes, _ := grace.MarshalBinary()

	newRedis := func(t *testing.T) (cache.Cache, redismock.ClientMock) {
		client, mock := redismock.NewClientMock()
		c := cache.NewRedis(client)
		err := c.Configure(envs)
		assert.Nil(t, err)
		err = c.Open(ctx)
		assert.Nil(t, err)
		return c, mock
	}

	t.Run("Employee Read", func(t *testing.T) {
		c, mock := newRedis(t)
		mock.ExpectHGet("employees", "1").SetVal(string(adaBytes))
		mock.ExpectHGet("employees", "2").RedisNil()
		mock.ExpectHGet("employees", "3").SetErr(errors.New("connection refused"))

		employee, err := c.EmployeeRead(ctx, 1)
		assert.Nil(t, err)
		assert.Equal(t, ada, employee)
		employee, err = c.EmployeeRead(ctx, 2)
		assert.ErrorIs(t, err, cache.ErrEmployeeNotCached)
		assert.Nil(t, employee)
		employee, err = c.EmployeeRead(ctx, 3)
		assert.NotNil(t, err)
		assert.NotErrorIs(t, err, cache.ErrEmployeeNotCached)
		assert.Nil(t, employee)
		assert.Nil(t, mock.ExpectationsWereMet())
	})
	t.Run("Employees Read", func(t *testing.T) {
		c, mock := newRedis(t)
		mock.ExpectGet("employees_list").RedisNil()
		mock.ExpectGet("employees_list").SetVal("")
		mock.ExpectGet("employees_list").SetVal("1,2")
		mock.ExpectHMGet("employees", "1", "2").SetVal([]interface{}{
			string(adaBytes), string(graceBytes)})
		mock.ExpectGet("employees_list").SetVal("1,2")
		mock.ExpectHMGet("employees", "1", "2").SetVal([]interface{}{
			string(adaBytes), nil})

		employees, err := c.EmployeesRead(ctx)
		assert.ErrorIs(t, err, cache.ErrEmployeesNotCached)
		assert.Nil(t, employees)
		employees, err = c.EmployeesRead(ctx)
		assert.Nil(t, err)
		assert.NotNil(t, employees)
		assert.Empty(t, employees)
		employees, err = c.EmployeesRead(ctx)
		assert.Nil(t, err)
		assert.Equal(t, []*data.Employee{ada, grace}, employees)
		employees, err = c.EmployeesRead(ctx)
		assert.ErrorIs(t, err, cache.ErrEmployeesNotCached)
		assert.Nil(t, employees)
		assert.Nil(t, mock.ExpectationsWereMet())
	})
	t.Run("Write", func(t *testing.T) {
		c, mock := newRedis(t)
		mock.ExpectHSet("employees", "1", string(adaBytes)).SetVal(1)
		mock.ExpectHSet("employees", "1", string(adaBytes),
			"2", string(graceBytes)).SetVal(2)
		mock.ExpectSet("employees_list", "1,2", 0).SetVal("OK")
		mock.ExpectSet("employees_list", "", 0).SetVal("OK")

		err := c.EmployeesWrite(ctx, ada)
		assert.Nil(t, err)
		err = c.EmployeesWrite(ctx)
		assert.Nil(t, err)
		err = c.EmployeeListWrite(ctx, []*data.Employee{ada, grace})
		assert.Nil(t, err)
		err = c.EmployeeListWrite(ctx, []*data.Employee{})
		assert.Nil(t, err)
		assert.Nil(t, mock.ExpectationsWereMet())
	})
	t.Run("Delete", func(t *testing.T) {
		c, mock := newRedis(t)
		mock.ExpectHDel("employees", "1", "2").SetVal(2)
		mock.ExpectDel("employees_list").SetVal(1)
		mock.ExpectDel("employees_list").SetVal(0)
		mock.ExpectDel("employees", "employees_list").SetVal(2)

		err := c.EmployeesDelete(ctx, 1, 2)
		assert.Nil(t, err)
		err = c.EmployeesDelete(ctx)
		assert.Nil(t, err)
		err = c.(internal.Clearer).Clear(ctx)
		assert.Nil(t, err)
		assert.Nil(t, mock.ExpectationsWereMet())
	})
}

func TestCacheStashWithoutBackend(t *testing.T) {
	ctx := context.TODO()
	c := cache.NewStash()

	err := c.Configure(envs)
	assert.Nil(t, err)
	err = c.Open(ctx)
	assert.Nil(t, err)
	err = c.EmployeesWrite(ctx, &data.Employee{ID: 1})
	assert.Nil(t, err)
	_, err = c.EmployeeRead(ctx, 1)
	assert.ErrorIs(t, err, cache.ErrEmployeeNotCached)
	_, err = c.EmployeesRead(ctx)
	assert.ErrorIs(t, err, cache.ErrEmployeesNotCached)
	err = c.Close(ctx)
	assert.Nil(t, err)
}
