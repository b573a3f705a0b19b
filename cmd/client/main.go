package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/antonio-alexander/go-blog-crud/internal"
	"github.com/antonio-alexander/go-blog-crud/internal/client"
	"github.com/antonio-alexander/go-blog-crud/internal/data"
	"github.com/antonio-alexander/go-blog-crud/internal/utilities"

	"github.com/pkg/errors"
)

var (
	Version   string
	GitCommit string
	GitBranch string
)

func init() {
	if Version = data.Version; Version == "" {
		Version = "<no_version_provided>"
	}
	if GitCommit = data.GitCommit; GitCommit == "" {
		GitCommit = "<no_git_commit>"
	}
	if GitBranch = data.GitBranch; GitBranch == "" {
		GitBranch = "<no_git_branch>"
	}
}

func main() {
	args := os.Args[1:]
	envs := internal.Envs(os.Environ())
	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)
	if err := Main(args, envs, osSignal); err != nil {
		os.Stderr.WriteString(err.Error())
		os.Exit(1)
	}
}

func printJson(item any) error {
	bytes, err := json.MarshalIndent(item, "", " ")
	if err != nil {
		return err
	}
	fmt.Println(string(bytes))
	return nil
}

func employeeFromEnvs(envs map[string]string) data.Employee {
	return data.Employee{
		Name:  envs["EMPLOYEE_NAME"],
		Email: envs["EMPLOYEE_EMAIL"],
		Phone: envs["EMPLOYEE_PHONE"],
	}
}

func employeeIdFromEnvs(envs map[string]string) (int64, error) {
	id, err := strconv.ParseInt(envs["EMPLOYEE_ID"], 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "EMPLOYEE_ID")
	}
	return id, nil
}

func Main(args []string, envs map[string]string, osSignal chan os.Signal) error {
	fmt.Printf("client: go-blog-crud v%s (%s) built from: %s\n",
		Version, GitCommit, GitBranch)

	//create logger
	logger := utilities.NewLogger(os.Stderr)
	if err := logger.Configure(envs); err != nil {
		return err
	}

	//create client
	client := client.NewClient(logger)
	if err := client.Configure(envs); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-ctx.Done():
		case <-osSignal:
			cancel()
		}
	}()
	ctx = internal.CtxWithCorrelationId(ctx, internal.GenerateId())
	if err := client.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			fmt.Printf("error while closing client: %s\n", err)
		}
	}()

	// execute command
	command := envs["COMMAND"]
	if command == "" && len(args) > 0 {
		command = args[0]
	}
	switch command {
	default:
		return errors.Errorf("unsupported command: %s", command)
	case "employees_read":
		employees, err := client.EmployeesRead(ctx)
		if err != nil {
			return err
		}
		return printJson(employees)
	case "employee_read":
		id, err := employeeIdFromEnvs(envs)
		if err != nil {
			return err
		}
		employee, err := client.EmployeeRead(ctx, id)
		if err != nil {
			return err
		}
		return printJson(employee)
	case "employee_create":
		message, err := client.EmployeeCreate(ctx, employeeFromEnvs(envs))
		if err != nil {
			return err
		}
		fmt.Println(message)
	case "employee_update":
		id, err := employeeIdFromEnvs(envs)
		if err != nil {
			return err
		}
		message, err := client.EmployeeUpdate(ctx, id, employeeFromEnvs(envs))
		if err != nil {
			return err
		}
		fmt.Println(message)
	case "employee_delete":
		id, err := employeeIdFromEnvs(envs)
		if err != nil {
			return err
		}
		deleted, err := client.EmployeeDelete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Println(data.MessageNotFound)
			return nil
		}
		fmt.Println(data.MessageDeleted)
	case "cache_clear":
		return client.CacheClear(ctx)
	case "cache_counters_read":
		cacheCounters, err := client.CacheCountersRead(ctx)
		if err != nil {
			return err
		}
		return printJson(cacheCounters)
	case "timers_read":
		timers, err := client.TimersRead(ctx)
		if err != nil {
			return err
		}
		return printJson(timers)
	}
	return nil
}
