package sql

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/antonio-alexander/go-blog-crud/internal"
	"github.com/antonio-alexander/go-blog-crud/internal/data"
	"github.com/antonio-alexander/go-blog-crud/internal/utilities"

	"github.com/pkg/errors"

	_ "github.com/go-sql-driver/mysql" //import for driver support
)

const mysqlCreateTable string = `CREATE TABLE IF NOT EXISTS ` + tableEmployees + ` (
	id BIGINT NOT NULL AUTO_INCREMENT,
	name VARCHAR(255) NOT NULL DEFAULT '',
	email VARCHAR(255) NOT NULL DEFAULT '',
	phone VARCHAR(64) NOT NULL DEFAULT '',
	PRIMARY KEY (id)
);`

type mySql struct {
	sync.RWMutex
	config config
	*sql.DB
	utilities.Logger
	opened bool
}

// NewMySql accepts a utilities.Logger and optionally an already opened
// *sql.DB, in which case Open won't connect
func NewMySql(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Sql
} {
	m := &mySql{
		config: newConfig(),
		Logger: utilities.NewNopLogger(),
	}
	for _, parameter := range parameters {
		switch v := parameter.(type) {
		case utilities.Logger:
			m.Logger = v
		case *sql.DB:
			m.DB = v
		}
	}
	return m
}

func employeeScan(scanFx func(...any) error) (*data.Employee, error) {
	employee := new(data.Employee)
	if err := scanFx(
		&employee.ID,
		&employee.Name,
		&employee.Email,
		&employee.Phone,
	); err != nil {
		return nil, err
	}
	return employee, nil
}

func (s *mySql) Configure(envs map[string]string) error {
	s.Lock()
	defer s.Unlock()

	if err := s.config.configure(envs); err != nil {
		return err
	}
	if s.config.Port == "" {
		s.config.Port = "3306"
	}
	return nil
}

func (s *mySql) Open(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if s.opened {
		return nil
	}
	if s.DB == nil {
		//KIM: clientFoundRows makes UPDATE report matched rather than changed
		// rows, otherwise an update with identical values looks like a miss
		dataSourceName := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=%t&clientFoundRows=true",
			s.config.Username, s.config.Password, s.config.Hostname,
			s.config.Port, s.config.Database, s.config.ParseTime)
		db, err := sql.Open("mysql", dataSourceName)
		if err != nil {
			return err
		}
		if err := connect(ctx, s.Logger, s.config.ConnectTimeout, db.PingContext); err != nil {
			_ = db.Close()
			return err
		}
		s.DB = db
	}
	if s.config.CreateTable {
		if _, err := s.ExecContext(ctx, mysqlCreateTable); err != nil {
			return errors.Wrap(err, "creating employees table")
		}
	}
	s.opened = true
	s.Debug(ctx, "connected to mysql: %s:%s/%s", s.config.Hostname,
		s.config.Port, s.config.Database)
	return nil
}

func (s *mySql) Close(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if !s.opened {
		return nil
	}
	if err := s.DB.Close(); err != nil {
		s.Error(ctx, "error while closing sql: %s", err)
	}
	s.opened = false
	return nil
}

func (s *mySql) EmployeesRead(ctx context.Context) ([]*data.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()
	query := fmt.Sprintf(`SELECT id, name, email, phone FROM %s ORDER BY id;`,
		tableEmployees)
	rows, err := s.QueryContext(ctx, query)
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()
	employees := make([]*data.Employee, 0)
	for rows.Next() {
		employee, err := employeeScan(rows.Scan)
		if err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err)
	}
	return employees, nil
}

func (s *mySql) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()
	query := fmt.Sprintf(`SELECT id, name, email, phone FROM %s WHERE id = ?;`,
		tableEmployees)
	row := s.QueryRowContext(ctx, query, id)
	employee, err := employeeScan(row.Scan)
	if err != nil {
		return nil, storeError(err)
	}
	return employee, nil
}

func (s *mySql) EmployeeCreate(ctx context.Context, employee data.Employee) (*data.Employee, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()
	query := fmt.Sprintf(`INSERT INTO %s (name, email, phone) VALUES (?, ?, ?);`,
		tableEmployees)
	result, err := s.ExecContext(queryCtx, query,
		employee.Name, employee.Email, employee.Phone)
	if err != nil {
		return nil, storeError(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.EmployeeRead(ctx, id)
}

func (s *mySql) EmployeeUpdate(ctx context.Context, id int64, employee data.Employee) (*data.Employee, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()
	query := fmt.Sprintf(`UPDATE %s SET name = ?, email = ?, phone = ? WHERE id = ?;`,
		tableEmployees)
	result, err := s.ExecContext(queryCtx, query,
		employee.Name, employee.Email, employee.Phone, id)
	if err != nil {
		return nil, storeError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, data.ErrEmployeeNotFound
	}
	return s.EmployeeRead(ctx, id)
}

func (s *mySql) EmployeeDelete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?;`,
		tableEmployees)
	result, err := s.ExecContext(ctx, query, id)
	if err != nil {
		return storeError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return data.ErrEmployeeNotFound
	}
	return nil
}
