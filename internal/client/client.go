package client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/antonio-alexander/go-blog-crud/internal"
	"github.com/antonio-alexander/go-blog-crud/internal/cache"
	"github.com/antonio-alexander/go-blog-crud/internal/data"
	"github.com/antonio-alexander/go-blog-crud/internal/utilities"

	"github.com/pkg/errors"
)

type Client interface {
	EmployeesRead(ctx context.Context) ([]*data.Employee, error)
	EmployeeRead(ctx context.Context, id int64) (*data.Employee, error)
	EmployeeCreate(ctx context.Context, employee data.Employee) (string, error)
	EmployeeUpdate(ctx context.Context, id int64, employee data.Employee) (string, error)
	EmployeeDelete(ctx context.Context, id int64) (bool, error)
	CacheClear(ctx context.Context) error
	CacheCountersRead(ctx context.Context) (*data.CacheCounters, error)
	CacheCountersClear(ctx context.Context) error
	TimersRead(ctx context.Context) (*data.Timers, error)
	TimersClear(ctx context.Context) error
}

type client struct {
	sync.RWMutex
	config struct {
		protocol      string
		address       string
		port          string
		timeout       time.Duration
		sslCaFile     string
		sslCrtFile    string
		sslKeyFile    string
		cacheDisabled bool
	}
	address string
	cache   cache.Cache
	utilities.Logger
	*http.Client

	cacheMutex sync.Mutex
	generation uint64
}

// NewClient accepts a utilities.Logger and optionally a cache.Cache which
// is used for reads unless CLIENT_CACHE_DISABLED is set
func NewClient(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Client
} {
	c := &client{
		Client: &http.Client{},
		Logger: utilities.NewNopLogger(),
	}
	c.config.protocol = "http"
	c.config.address = "localhost"
	c.config.port = "8080"
	c.config.timeout = 10 * time.Second
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case cache.Cache:
			c.cache = p
		case utilities.Logger:
			c.Logger = p
		}
	}
	return c
}

func (c *client) doRequest(ctx context.Context, uri, method string, item any) ([]byte, error) {
	statusCode, bytes, err := internal.DoRequest(ctx, c.Client, uri, method, item)
	if err != nil {
		return nil, err
	}
	switch statusCode {
	default:
		errorResponse := &data.ErrorResponse{}
		if err := json.Unmarshal(bytes, errorResponse); err != nil || errorResponse.Error == "" {
			errorResponse.Error = string(bytes)
		}
		if err := data.StatusCodeToError(statusCode); err != nil {
			return nil, errors.Wrap(err, errorResponse.Error)
		}
		return nil, errors.Errorf("status code: %d; %s", statusCode,
			errorResponse.Error)
	case http.StatusOK, http.StatusNoContent:
		return bytes, nil
	}
}

func (c *client) cacheEnabled() bool {
	c.RLock()
	defer c.RUnlock()
	return c.cache != nil && !c.config.cacheDisabled
}

func (c *client) cacheGeneration() uint64 {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()
	return c.generation
}

func (c *client) evict(ctx context.Context, ids ...int64) {
	if !c.cacheEnabled() {
		return
	}
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	c.generation++
	if err := c.cache.EmployeesDelete(ctx, ids...); err != nil {
		c.Error(ctx, "error while deleting employees %v from cache: %s", ids, err)
	}
}

// cacheWrite skips write if the cache was evicted since generation was read
func (c *client) cacheWrite(generation uint64, write func() error) error {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	if c.generation != generation {
		return nil
	}
	return write()
}

func (c *client) Configure(envs map[string]string) error {
	c.Lock()
	defer c.Unlock()

	if address := envs["CLIENT_ADDRESS"]; address != "" {
		c.config.address = address
	}
	if port := envs["CLIENT_PORT"]; port != "" {
		c.config.port = port
	}
	if protocol := envs["CLIENT_PROTOCOL"]; protocol != "" {
		c.config.protocol = protocol
	}
	if timeout := envs["CLIENT_TIMEOUT"]; timeout != "" {
		i, err := strconv.Atoi(timeout)
		if err != nil {
			return errors.Wrap(err, "CLIENT_TIMEOUT")
		}
		c.config.timeout = time.Duration(i) * time.Second
	}
	if sslCaFile, ok := envs["SSL_CA_FILE"]; ok {
		c.config.sslCaFile = sslCaFile
	}
	if sslKeyFile, ok := envs["SSL_KEY_FILE"]; ok {
		c.config.sslKeyFile = sslKeyFile
	}
	if sslCrtFile, ok := envs["SSL_CRT_FILE"]; ok {
		c.config.sslCrtFile = sslCrtFile
	}
	if cacheDisabled, ok := envs["CLIENT_CACHE_DISABLED"]; ok {
		c.config.cacheDisabled, _ = strconv.ParseBool(cacheDisabled)
	}
	return nil
}

func (c *client) Open(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	switch c.config.protocol {
	default:
		return errors.Errorf("unsupported protocol: %s", c.config.protocol)
	case "http", "https":
		c.address = fmt.Sprintf("%s://%s", c.config.protocol,
			net.JoinHostPort(c.config.address, c.config.port))
	}
	if c.cache != nil && c.config.cacheDisabled {
		c.Info(ctx, "client: cache disabled")
	}
	c.Client.Timeout = c.config.timeout
	tlsConfig, err := internal.GetTlsConfig(c.config.sslCrtFile,
		c.config.sslKeyFile, c.config.sslCaFile)
	if err != nil {
		return err
	}
	if tlsConfig == nil && c.config.sslCaFile != "" {
		//KIM: no client certificate, but we still want to trust the ca
		caCertPool, err := internal.GetCaCert(c.config.sslCaFile)
		if err != nil {
			return err
		}
		tlsConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			RootCAs:    caCertPool,
		}
	}
	if tlsConfig != nil {
		c.Client.Transport = &http.Transport{TLSClientConfig: tlsConfig}
	}
	return nil
}

func (c *client) Close(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	c.Client.CloseIdleConnections()
	return nil
}

func (c *client) EmployeesRead(ctx context.Context) ([]*data.Employee, error) {
	if c.cacheEnabled() {
		employees, err := c.cache.EmployeesRead(ctx)
		if err == nil {
			return employees, nil
		}
		c.Trace(ctx, "unable to read employees from cache: %s", err)
	}
	generation := c.cacheGeneration()
	bytes, err := c.doRequest(ctx, c.address+data.RouteEmployees, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	employees := []*data.Employee{}
	if err := json.Unmarshal(bytes, &employees); err != nil {
		return nil, err
	}
	if c.cacheEnabled() {
		if err := c.cacheWrite(generation, func() error {
			return c.cache.EmployeeListWrite(ctx, employees)
		}); err != nil {
			c.Error(ctx, "error while writing employees to cache: %s", err)
		}
	}
	return employees, nil
}

func (c *client) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	if c.cacheEnabled() {
		employee, err := c.cache.EmployeeRead(ctx, id)
		if err == nil {
			return employee, nil
		}
		c.Trace(ctx, "unable to read employee (%d) from cache: %s", id, err)
	}
	generation := c.cacheGeneration()
	uri := fmt.Sprintf(c.address+data.RouteEmployeesIDf, id)
	bytes, err := c.doRequest(ctx, uri, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	employee := &data.Employee{}
	if err := json.Unmarshal(bytes, employee); err != nil {
		return nil, err
	}
	if c.cacheEnabled() {
		if err := c.cacheWrite(generation, func() error {
			return c.cache.EmployeesWrite(ctx, employee)
		}); err != nil {
			c.Error(ctx, "error while writing employee (%d) to cache: %s", id, err)
		}
	}
	return employee, nil
}

func (c *client) EmployeeCreate(ctx context.Context, employee data.Employee) (string, error) {
	bytes, err := c.doRequest(ctx, c.address+data.RouteEmployees,
		http.MethodPost, &employee)
	if err != nil {
		return "", err
	}
	c.evict(ctx)
	return string(bytes), nil
}

func (c *client) EmployeeUpdate(ctx context.Context, id int64, employee data.Employee) (string, error) {
	uri := fmt.Sprintf(c.address+data.RouteEmployeesIDf, id)
	bytes, err := c.doRequest(ctx, uri, http.MethodPut, &employee)
	if err != nil {
		return "", err
	}
	c.evict(ctx, id)
	return string(bytes), nil
}

func (c *client) EmployeeDelete(ctx context.Context, id int64) (bool, error) {
	uri := fmt.Sprintf(c.address+data.RouteEmployeesIDf, id)
	bytes, err := c.doRequest(ctx, uri, http.MethodDelete, nil)
	if err != nil {
		return false, err
	}
	c.evict(ctx, id)
	return string(bytes) == data.MessageDeleted, nil
}

func (c *client) CacheClear(ctx context.Context) error {
	if _, err := c.doRequest(ctx, c.address+data.RouteCache, http.MethodDelete, nil); err != nil {
		return err
	}
	return nil
}

func (c *client) CacheCountersRead(ctx context.Context) (*data.CacheCounters, error) {
	bytes, err := c.doRequest(ctx, c.address+data.RouteCacheCounters, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	response := &data.CacheCounters{}
	if err := json.Unmarshal(bytes, response); err != nil {
		return nil, err
	}
	return response, nil
}

func (c *client) CacheCountersClear(ctx context.Context) error {
	if _, err := c.doRequest(ctx, c.address+data.RouteCacheCounters, http.MethodDelete, nil); err != nil {
		return err
	}
	return nil
}

func (c *client) TimersRead(ctx context.Context) (*data.Timers, error) {
	bytes, err := c.doRequest(ctx, c.address+data.RouteTimers, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	response := &data.Timers{}
	if err := json.Unmarshal(bytes, response); err != nil {
		return nil, err
	}
	return response, nil
}

func (c *client) TimersClear(ctx context.Context) error {
	if _, err := c.doRequest(ctx, c.address+data.RouteTimers, http.MethodDelete, nil); err != nil {
		return err
	}
	return nil
}
