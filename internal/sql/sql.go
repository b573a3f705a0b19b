// Package sql holds the employee stores: MySQL, PostgreSQL and an in-memory
// implementation that's useful for tests and demos.
package sql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"net"
	"strconv"
	"time"

	"github.com/antonio-alexander/go-blog-crud/internal/data"
	"github.com/antonio-alexander/go-blog-crud/internal/utilities"

	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"
)

const (
	tableEmployees        = "employees"
	defaultQueryTimeout   = 10 * time.Second
	defaultConnectTimeout = 30 * time.Second
)

// Sql is the persistence capability behind the employee service, ids are
// assigned on create and missing ids are reported as data.ErrEmployeeNotFound
type Sql interface {
	EmployeesRead(ctx context.Context) ([]*data.Employee, error)
	EmployeeRead(ctx context.Context, id int64) (*data.Employee, error)
	EmployeeCreate(ctx context.Context, employee data.Employee) (*data.Employee, error)
	EmployeeUpdate(ctx context.Context, id int64, employee data.Employee) (*data.Employee, error)
	EmployeeDelete(ctx context.Context, id int64) error
}

type config struct {
	Hostname       string        `json:"hostname"`
	Port           string        `json:"port"`
	Username       string        `json:"username"`
	Password       string        `json:"password"`
	Database       string        `json:"database"`
	SslMode        string        `json:"ssl_mode"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
	QueryTimeout   time.Duration `json:"query_timeout"`
	ParseTime      bool          `json:"parse_time"`
	CreateTable    bool          `json:"create_table"`
}

func newConfig() config {
	return config{
		QueryTimeout:   defaultQueryTimeout,
		ConnectTimeout: defaultConnectTimeout,
		ParseTime:      true,
		SslMode:        "disable",
	}
}

func (c *config) configure(envs map[string]string) error {
	if databaseHost := envs["DATABASE_HOST"]; databaseHost != "" {
		c.Hostname = databaseHost
	}
	if databasePort := envs["DATABASE_PORT"]; databasePort != "" {
		c.Port = databasePort
	}
	if database := envs["DATABASE_NAME"]; database != "" {
		c.Database = database
	}
	if username := envs["DATABASE_USER"]; username != "" {
		c.Username = username
	}
	if password := envs["DATABASE_PASSWORD"]; password != "" {
		c.Password = password
	}
	if sslMode := envs["DATABASE_SSL_MODE"]; sslMode != "" {
		c.SslMode = sslMode
	}
	if s := envs["DATABASE_QUERY_TIMEOUT"]; s != "" {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return errors.Wrap(err, "DATABASE_QUERY_TIMEOUT")
		}
		if i > 0 {
			c.QueryTimeout = time.Duration(i) * time.Second
		}
	}
	if s := envs["DATABASE_CONNECT_TIMEOUT"]; s != "" {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return errors.Wrap(err, "DATABASE_CONNECT_TIMEOUT")
		}
		if i > 0 {
			c.ConnectTimeout = time.Duration(i) * time.Second
		}
	}
	if s := envs["DATABASE_PARSE_TIME"]; s != "" {
		c.ParseTime, _ = strconv.ParseBool(s)
	}
	if s := envs["DATABASE_CREATE_TABLE"]; s != "" {
		c.CreateTable, _ = strconv.ParseBool(s)
	}
	return nil
}

// connect retries connectFx with an exponential backoff until it succeeds,
// ctx is done or the connect timeout elapses
func connect(ctx context.Context, logger utilities.Logger, connectTimeout time.Duration, connectFx func(context.Context) error) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, connectFx(ctx)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(connectTimeout),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Debug(ctx, "unable to connect to database, retrying in %v: %s", next, err)
		}),
	)
	if err != nil {
		return errors.Wrap(data.ErrStoreUnavailable, err.Error())
	}
	return nil
}

// storeError classifies driver errors into the data error taxonomy
func storeError(err error) error {
	var netErr net.Error

	switch {
	default:
		return err
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return data.ErrEmployeeNotFound
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return errors.Wrap(data.ErrStoreUnavailable, err.Error())
	}
}

func copyEmployee(e *data.Employee) *data.Employee {
	employee := &data.Employee{}
	*employee = *e
	return employee
}
