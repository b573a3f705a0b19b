package service

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/antonio-alexander/go-blog-crud/internal"
	"github.com/antonio-alexander/go-blog-crud/internal/cache"
	"github.com/antonio-alexander/go-blog-crud/internal/data"
	"github.com/antonio-alexander/go-blog-crud/internal/logic"
	"github.com/antonio-alexander/go-blog-crud/internal/utilities"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"
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

type service struct {
	sync.RWMutex
	sync.WaitGroup
	config struct {
		address          string
		port             string
		shutdownTimeout  time.Duration
		allowedOrigins   []string
		allowedMethods   []string
		allowedHeaders   []string
		allowCredentials bool
		corsDisabled     bool
		corsDebug        bool
		timersEnabled    bool
		sslCrtFile       string
		sslKeyFile       string
		sslCaFile        string
	}
	ctx    context.Context
	cancel context.CancelFunc
	*mux.Router
	server *http.Server
	cache  internal.Clearer
	utilities.Logger
	utilities.Counter
	utilities.Timers
	logic.Logic
}

// NewService builds the employee router around the provided logic.Logic;
// the returned handler can be served directly (e.g. with httptest) or
// through Open
func NewService(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	http.Handler
} {
	s := &service{
		Router:  mux.NewRouter(),
		Logger:  utilities.NewNopLogger(),
		Counter: utilities.NewCounter(),
		Timers:  utilities.NewTimers(),
	}
	s.config.port = "8080"
	s.config.shutdownTimeout = 10 * time.Second
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case interface {
			cache.Cache
			internal.Clearer
		}:
			s.cache = p
		case logic.Logic:
			s.Logic = p
		case utilities.Counter:
			s.Counter = p
		case utilities.Timers:
			s.Timers = p
		case utilities.Logger:
			s.Logger = p
		}
	}
	s.buildRoutes()
	return s
}

func (s *service) launchServer(tlsEnabled bool) error {
	started := make(chan struct{})
	chErr := make(chan error, 1)
	s.Add(1)
	go func() {
		defer s.WaitGroup.Done()
		defer close(chErr)

		close(started)
		var err error
		switch {
		default:
			err = s.server.ListenAndServe()
		case tlsEnabled:
			//KIM: certificates are already in the tls config
			err = s.server.ListenAndServeTLS("", "")
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			chErr <- err
		}
	}()
	<-started
	select {
	case err := <-chErr:
		//KIM: here we're accounting for a situation where the server closes unexexpectedly
		// but quickly (within a second of starting); this allows us to respond to errors such as
		// the port being already used
		return err
	case <-time.After(time.Second):
		s.Info(s.ctx, "started server: %s (tls: %t)", s.server.Addr, tlsEnabled)
		return nil
	}
}

func (s *service) handler() http.Handler {
	if s.config.corsDisabled {
		return s.Router
	}
	return cors.New(cors.Options{
		AllowedOrigins:   s.config.allowedOrigins,
		AllowCredentials: s.config.allowCredentials,
		AllowedMethods:   s.config.allowedMethods,
		AllowedHeaders:   s.config.allowedHeaders,
		Debug:            s.config.corsDebug,
	}).Handler(s.Router)
}

// start records the duration of an endpoint when timers are enabled, the
// returned function should be deferred
func (s *service) start(ctx context.Context, group data.TimerGroup) func() {
	if !s.config.timersEnabled {
		return func() {}
	}
	id := s.Timers.Start(group)
	return func() {
		s.Trace(ctx, "%s took %v", group, s.Timers.Stop(group, id))
	}
}

func (s *service) correlationId(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		correlationId := getCorrelationId(request)
		writer.Header().Set(data.HeaderCorrelationId, correlationId)
		ctx := internal.CtxWithCorrelationId(request.Context(), correlationId)
		s.Trace(ctx, "%s %s", request.Method, request.URL.Path)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

func (s *service) endpointDefault(writer http.ResponseWriter, request *http.Request) {
	writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(writer,
		"go-blog-crud\n"+
			"Version: \"%s\"\n"+
			"Git Commit: \"%s\"\n"+
			"Git Branch: \"%s\"\n",
		Version, GitCommit, GitBranch)
}

func (s *service) endpointEmployeesRead(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	defer s.start(ctx, data.TimerGroupEmployeesRead)()
	employees, err := s.EmployeesRead(ctx)
	if err != nil {
		s.Error(ctx, "error while reading employees: %s", err)
		handleResponse(writer, err)
		return
	}
	handleResponse(writer, nil, employees)
	s.Trace(ctx, "executed employees_read: %d", len(employees))
}

func (s *service) endpointEmployeeRead(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	defer s.start(ctx, data.TimerGroupEmployeeRead)()
	id, err := idFromPath(mux.Vars(request))
	if err != nil {
		handleResponse(writer, err)
		return
	}
	employee, err := s.EmployeeRead(ctx, id)
	if err != nil {
		s.Debug(ctx, "error while reading employee (%d): %s", id, err)
		handleResponse(writer, err)
		return
	}
	handleResponse(writer, nil, employee)
	s.Trace(ctx, "executed employee_read: %d", id)
}

func (s *service) endpointEmployeeCreate(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	defer s.start(ctx, data.TimerGroupEmployeeCreate)()
	employee, err := employeeFromBody(request)
	if err != nil {
		handleResponse(writer, err)
		return
	}
	message, err := s.EmployeeCreate(ctx, employee)
	if err != nil {
		s.Error(ctx, "error while creating employee: %s", err)
		handleResponse(writer, err)
		return
	}
	handleMessage(writer, message)
	s.Trace(ctx, "executed employee_create")
}

func (s *service) endpointEmployeeUpdate(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	defer s.start(ctx, data.TimerGroupEmployeeUpdate)()
	id, err := idFromPath(mux.Vars(request))
	if err != nil {
		handleResponse(writer, err)
		return
	}
	employee, err := employeeFromBody(request)
	if err != nil {
		handleResponse(writer, err)
		return
	}
	message, err := s.EmployeeUpdate(ctx, id, employee)
	if err != nil {
		s.Error(ctx, "error while updating employee (%d): %s", id, err)
		handleResponse(writer, err)
		return
	}
	handleMessage(writer, message)
	s.Trace(ctx, "executed employee_update: %d", id)
}

func (s *service) endpointEmployeeDelete(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	defer s.start(ctx, data.TimerGroupEmployeeDelete)()
	id, err := idFromPath(mux.Vars(request))
	if err != nil {
		handleResponse(writer, err)
		return
	}
	deleted, err := s.EmployeeDelete(ctx, id)
	if err != nil {
		s.Error(ctx, "error while deleting employee (%d): %s", id, err)
		handleResponse(writer, err)
		return
	}
	if !deleted {
		handleMessage(writer, data.MessageNotFound)
		return
	}
	handleMessage(writer, data.MessageDeleted)
	s.Trace(ctx, "executed employee_delete: %d", id)
}

func (s *service) endpointCacheClear(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	if s.cache != nil {
		if err := s.cache.Clear(ctx); err != nil {
			s.Error(ctx, "error while clearing cache: %s", err)
			handleResponse(writer, err)
			return
		}
		s.Trace(ctx, "executed cache_clear")
	}
	handleResponse(writer, nil)
}

func (s *service) endpointCacheCountersRead(writer http.ResponseWriter, _ *http.Request) {
	handleResponse(writer, nil, s.Counter.ReadAll())
}

func (s *service) endpointCacheCountersClear(writer http.ResponseWriter, request *http.Request) {
	s.Counter.Reset()
	handleResponse(writer, nil)
	s.Trace(request.Context(), "executed cache_counters_clear")
}

func (s *service) endpointTimersRead(writer http.ResponseWriter, _ *http.Request) {
	handleResponse(writer, nil, s.Timers.ReadAll())
}

func (s *service) endpointTimersClear(writer http.ResponseWriter, request *http.Request) {
	s.Timers.Clear()
	handleResponse(writer, nil)
	s.Trace(request.Context(), "executed timers_clear")
}

func (s *service) buildRoutes() {
	//KIM: mux answers 405 for a known path with an unregistered method
	s.Router.Use(s.correlationId)
	s.Router.HandleFunc("/", s.endpointDefault).Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteEmployees, s.endpointEmployeesRead).Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteEmployees, s.endpointEmployeeCreate).Methods(http.MethodPost)
	s.Router.HandleFunc(data.RouteEmployeesID, s.endpointEmployeeRead).Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteEmployeesID, s.endpointEmployeeUpdate).Methods(http.MethodPut)
	s.Router.HandleFunc(data.RouteEmployeesID, s.endpointEmployeeDelete).Methods(http.MethodDelete)
	s.Router.HandleFunc(data.RouteCache, s.endpointCacheClear).Methods(http.MethodDelete)
	s.Router.HandleFunc(data.RouteCacheCounters, s.endpointCacheCountersRead).Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteCacheCounters, s.endpointCacheCountersClear).Methods(http.MethodDelete)
	s.Router.HandleFunc(data.RouteTimers, s.endpointTimersRead).Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteTimers, s.endpointTimersClear).Methods(http.MethodDelete)
}

func (s *service) Configure(envs map[string]string) error {
	s.Lock()
	defer s.Unlock()

	if address, ok := envs["SERVICE_ADDRESS"]; ok {
		s.config.address = address
	}
	if port := envs["SERVICE_PORT"]; port != "" {
		s.config.port = port
	}
	if shutdownTimeoutString, ok := envs["SERVICE_SHUTDOWN_TIMEOUT"]; ok {
		if shutdownTimeoutInt, err := strconv.Atoi(shutdownTimeoutString); err == nil {
			if timeout := time.Duration(shutdownTimeoutInt) * time.Second; timeout > 0 {
				s.config.shutdownTimeout = timeout
			}
		}
	}
	if allowCredentialsString, ok := envs["SERVICE_CORS_ALLOW_CREDENTIALS"]; ok {
		if allowCredentials, err := strconv.ParseBool(allowCredentialsString); err == nil {
			s.config.allowCredentials = allowCredentials
		}
	}
	if allowedOrigins := envs["SERVICE_CORS_ALLOWED_ORIGINS"]; allowedOrigins != "" {
		s.config.allowedOrigins = strings.Split(allowedOrigins, ",")
	}
	if allowedMethods := envs["SERVICE_CORS_ALLOWED_METHODS"]; allowedMethods != "" {
		s.config.allowedMethods = strings.Split(allowedMethods, ",")
	}
	if allowedHeaders := envs["SERVICE_CORS_ALLOWED_HEADERS"]; allowedHeaders != "" {
		s.config.allowedHeaders = strings.Split(allowedHeaders, ",")
	}
	if corsDisabledString, ok := envs["SERVICE_CORS_DISABLED"]; ok {
		if corsDisabled, err := strconv.ParseBool(corsDisabledString); err == nil {
			s.config.corsDisabled = corsDisabled
		}
	}
	if corsDebug, ok := envs["SERVICE_CORS_DEBUG"]; ok {
		if corsDebug, err := strconv.ParseBool(corsDebug); err == nil {
			s.config.corsDebug = corsDebug
		}
	}
	if timersEnabled := envs["SERVICE_TIMERS_ENABLED"]; timersEnabled != "" {
		s.config.timersEnabled, _ = strconv.ParseBool(timersEnabled)
	}
	if sslCrtFile, ok := envs["SSL_CRT_FILE"]; ok {
		s.config.sslCrtFile = sslCrtFile
	}
	if sslKeyFile, ok := envs["SSL_KEY_FILE"]; ok {
		s.config.sslKeyFile = sslKeyFile
	}
	if sslCaFile, ok := envs["SSL_CA_FILE"]; ok {
		s.config.sslCaFile = sslCaFile
	}
	return nil
}

func (s *service) Open(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if s.Logic == nil {
		return errors.New("service: no logic provided")
	}
	tlsConfig, err := internal.GetServerTlsConfig(s.config.sslCrtFile,
		s.config.sslKeyFile, s.config.sslCaFile)
	if err != nil {
		return errors.Wrap(err, "loading tls configuration")
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.server = &http.Server{
		Addr:      net.JoinHostPort(s.config.address, s.config.port),
		Handler:   s.handler(),
		TLSConfig: tlsConfig,
	}
	if err := s.launchServer(tlsConfig != nil); err != nil {
		s.cancel()
		return err
	}
	return nil
}

func (s *service) Close(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.Error(ctx, "error while shutting down the server: %s", err)
	}
	s.cancel()
	s.Wait()
	s.server = nil
	return nil
}
