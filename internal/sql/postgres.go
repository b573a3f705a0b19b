package sql

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/antonio-alexander/go-blog-crud/internal"
	"github.com/antonio-alexander/go-blog-crud/internal/data"
	"github.com/antonio-alexander/go-blog-crud/internal/utilities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

const postgresCreateTable string = `CREATE TABLE IF NOT EXISTS ` + tableEmployees + ` (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT ''
);`

type postgres struct {
	sync.RWMutex
	config config
	pool   *pgxpool.Pool
	utilities.Logger
}

func NewPostgres(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Sql
} {
	p := &postgres{
		config: newConfig(),
		Logger: utilities.NewNopLogger(),
	}
	for _, parameter := range parameters {
		switch v := parameter.(type) {
		case utilities.Logger:
			p.Logger = v
		}
	}
	return p
}

func (p *postgres) dataSourceName() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.config.Username, p.config.Password),
		Host:     net.JoinHostPort(p.config.Hostname, p.config.Port),
		Path:     "/" + p.config.Database,
		RawQuery: url.Values{"sslmode": []string{p.config.SslMode}}.Encode(),
	}
	return u.String()
}

func pgError(err error) error {
	var pgErr *pgconn.PgError

	switch {
	default:
		return storeError(err)
	case errors.Is(err, pgx.ErrNoRows):
		return data.ErrEmployeeNotFound
	case errors.As(err, &pgErr):
		return err
	case pgconn.SafeToRetry(err), pgconn.Timeout(err):
		return errors.Wrap(data.ErrStoreUnavailable, err.Error())
	}
}

func (p *postgres) Configure(envs map[string]string) error {
	p.Lock()
	defer p.Unlock()

	if err := p.config.configure(envs); err != nil {
		return err
	}
	if p.config.Port == "" {
		p.config.Port = "5432"
	}
	return nil
}

func (p *postgres) Open(ctx context.Context) error {
	p.Lock()
	defer p.Unlock()

	if p.pool != nil {
		return nil
	}
	cfg, err := pgxpool.ParseConfig(p.dataSourceName())
	if err != nil {
		return errors.Wrap(err, "parse postgres dsn")
	}
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "connect postgres")
	}
	if err := connect(ctx, p.Logger, p.config.ConnectTimeout, pool.Ping); err != nil {
		pool.Close()
		return err
	}
	if p.config.CreateTable {
		if _, err := pool.Exec(ctx, postgresCreateTable); err != nil {
			pool.Close()
			return errors.Wrap(err, "creating employees table")
		}
	}
	p.pool = pool
	p.Debug(ctx, "connected to postgres: %s:%s/%s", p.config.Hostname,
		p.config.Port, p.config.Database)
	return nil
}

func (p *postgres) Close(ctx context.Context) error {
	p.Lock()
	defer p.Unlock()

	if p.pool == nil {
		return nil
	}
	p.pool.Close()
	p.pool = nil
	return nil
}

func rowToEmployee(row pgx.CollectableRow) (*data.Employee, error) {
	return employeeScan(row.Scan)
}

func (p *postgres) EmployeesRead(ctx context.Context) ([]*data.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.QueryTimeout)
	defer cancel()
	query := fmt.Sprintf(`SELECT id, name, email, phone FROM %s ORDER BY id;`,
		tableEmployees)
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, pgError(err)
	}
	employees, err := pgx.CollectRows(rows, rowToEmployee)
	if err != nil {
		return nil, pgError(err)
	}
	if employees == nil {
		employees = make([]*data.Employee, 0)
	}
	return employees, nil
}

func (p *postgres) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.QueryTimeout)
	defer cancel()
	query := fmt.Sprintf(`SELECT id, name, email, phone FROM %s WHERE id = $1;`,
		tableEmployees)
	employee, err := employeeScan(p.pool.QueryRow(ctx, query, id).Scan)
	if err != nil {
		return nil, pgError(err)
	}
	return employee, nil
}

func (p *postgres) EmployeeCreate(ctx context.Context, employee data.Employee) (*data.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.QueryTimeout)
	defer cancel()
	query := fmt.Sprintf(`INSERT INTO %s (name, email, phone) VALUES ($1, $2, $3)
		RETURNING id, name, email, phone;`, tableEmployees)
	created, err := employeeScan(p.pool.QueryRow(ctx, query,
		employee.Name, employee.Email, employee.Phone).Scan)
	if err != nil {
		return nil, pgError(err)
	}
	return created, nil
}

func (p *postgres) EmployeeUpdate(ctx context.Context, id int64, employee data.Employee) (*data.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.QueryTimeout)
	defer cancel()
	query := fmt.Sprintf(`UPDATE %s SET name = $1, email = $2, phone = $3 WHERE id = $4
		RETURNING id, name, email, phone;`, tableEmployees)
	updated, err := employeeScan(p.pool.QueryRow(ctx, query,
		employee.Name, employee.Email, employee.Phone, id).Scan)
	if err != nil {
		return nil, pgError(err)
	}
	return updated, nil
}

func (p *postgres) EmployeeDelete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, p.config.QueryTimeout)
	defer cancel()
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1;`, tableEmployees)
	tag, err := p.pool.Exec(ctx, query, id)
	if err != nil {
		return pgError(err)
	}
	if tag.RowsAffected() == 0 {
		return data.ErrEmployeeNotFound
	}
	return nil
}
