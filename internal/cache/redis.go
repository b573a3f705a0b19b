package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/antonio-alexander/go-blog-crud/internal"
	"github.com/antonio-alexander/go-blog-crud/internal/data"
	"github.com/antonio-alexander/go-blog-crud/internal/utilities"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"
)

const (
	hashKeyEmployees string = "employees"
	keyEmployeesList string = "employees_list"
)

type redisCache struct {
	redisClient *redis.Client
	config      struct {
		address        string
		port           string
		password       string
		database       int
		timeout        time.Duration
		connectTimeout time.Duration
	}
	utilities.Logger
}

// NewRedis accepts a utilities.Logger and optionally a *redis.Client, in
// which case Open won't connect
func NewRedis(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	Cache
} {
	c := &redisCache{Logger: utilities.NewNopLogger()}
	c.config.port = "6379"
	c.config.timeout = 10 * time.Second
	c.config.connectTimeout = 30 * time.Second
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case utilities.Logger:
			c.Logger = p
		case *redis.Client:
			c.redisClient = p
		}
	}
	return c
}

func (c *redisCache) Configure(envs map[string]string) error {
	if redisAddress, ok := envs["REDIS_ADDRESS"]; ok {
		c.config.address = redisAddress
	}
	if redisPort := envs["REDIS_PORT"]; redisPort != "" {
		c.config.port = redisPort
	}
	if redisPassword, ok := envs["REDIS_PASSWORD"]; ok {
		c.config.password = redisPassword
	}
	if redisDatabase := envs["REDIS_DATABASE"]; redisDatabase != "" {
		i, err := strconv.Atoi(redisDatabase)
		if err != nil {
			return fmt.Errorf("REDIS_DATABASE: %w", err)
		}
		c.config.database = i
	}
	if redisTimeout := envs["REDIS_TIMEOUT"]; redisTimeout != "" {
		if i, _ := strconv.Atoi(redisTimeout); i > 0 {
			c.config.timeout = time.Duration(i) * time.Second
		}
	}
	if connectTimeout := envs["REDIS_CONNECT_TIMEOUT"]; connectTimeout != "" {
		if i, _ := strconv.Atoi(connectTimeout); i > 0 {
			c.config.connectTimeout = time.Duration(i) * time.Second
		}
	}
	return nil
}

func (c *redisCache) Open(ctx context.Context) error {
	if c.redisClient != nil {
		return nil
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(c.config.address, c.config.port),
		Password: c.config.password,
		DB:       c.config.database,
	})
	if _, err := backoff.Retry(ctx, func() (string, error) {
		return redisClient.Ping(ctx).Result()
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(c.config.connectTimeout),
	); err != nil {
		_ = redisClient.Close()
		return err
	}
	c.redisClient = redisClient
	c.Debug(ctx, "connected to redis: %s", redisClient.Options().Addr)
	return nil
}

func (c *redisCache) Close(ctx context.Context) error {
	if c.redisClient == nil {
		return nil
	}
	if err := c.redisClient.Close(); err != nil {
		c.Error(ctx, "error while shutting down redis client: %s", err)
	}
	c.redisClient = nil
	return nil
}

func (c *redisCache) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	if _, err := c.redisClient.Del(ctx, hashKeyEmployees, keyEmployeesList).Result(); err != nil {
		return err
	}
	return nil
}

func (c *redisCache) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	value, err := c.redisClient.HGet(ctx, hashKeyEmployees, fmt.Sprint(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrEmployeeNotCached
		}
		return nil, err
	}
	employee := &data.Employee{}
	if err := employee.UnmarshalBinary([]byte(value)); err != nil {
		return nil, err
	}
	return employee, nil
}

func (c *redisCache) EmployeesRead(ctx context.Context) ([]*data.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	value, err := c.redisClient.Get(ctx, keyEmployeesList).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrEmployeesNotCached
		}
		return nil, err
	}
	//KIM: an empty string is a cached empty list
	if value == "" {
		return []*data.Employee{}, nil
	}
	ids := strings.Split(value, ",")
	values, err := c.redisClient.HMGet(ctx, hashKeyEmployees, ids...).Result()
	if err != nil {
		return nil, err
	}
	employees := make([]*data.Employee, 0, len(values))
	for _, value := range values {
		s, ok := value.(string)
		if !ok {
			return nil, ErrEmployeesNotCached
		}
		employee := &data.Employee{}
		if err := employee.UnmarshalBinary([]byte(s)); err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	return employees, nil
}

func (c *redisCache) hset(ctx context.Context, employees ...*data.Employee) error {
	if len(employees) == 0 {
		return nil
	}
	values := make([]any, 0, 2*len(employees))
	for _, employee := range employees {
		bytes, err := employee.MarshalBinary()
		if err != nil {
			return err
		}
		values = append(values, fmt.Sprint(employee.ID), string(bytes))
	}
	if _, err := c.redisClient.HSet(ctx, hashKeyEmployees, values...).Result(); err != nil {
		return err
	}
	return nil
}

func (c *redisCache) EmployeesWrite(ctx context.Context, employees ...*data.Employee) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	return c.hset(ctx, employees...)
}

func (c *redisCache) EmployeeListWrite(ctx context.Context, employees []*data.Employee) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	if err := c.hset(ctx, employees...); err != nil {
		return err
	}
	ids := make([]string, 0, len(employees))
	for _, employee := range employees {
		ids = append(ids, fmt.Sprint(employee.ID))
	}
	if _, err := c.redisClient.Set(ctx, keyEmployeesList,
		strings.Join(ids, ","), 0).Result(); err != nil {
		return err
	}
	return nil
}

func (c *redisCache) EmployeesDelete(ctx context.Context, ids ...int64) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	if len(ids) > 0 {
		fields := make([]string, 0, len(ids))
		for _, id := range ids {
			fields = append(fields, fmt.Sprint(id))
		}
		if _, err := c.redisClient.HDel(ctx, hashKeyEmployees,
			fields...).Result(); err != nil {
			return err
		}
	}
	if _, err := c.redisClient.Del(ctx, keyEmployeesList).Result(); err != nil {
		return err
	}
	return nil
}
