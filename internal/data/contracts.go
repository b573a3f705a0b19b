package data

const (
	RouteEmployees      string = "/employees"
	RouteEmployeesID    string = RouteEmployees + "/{" + PathID + "}"
	RouteEmployeesIDf   string = RouteEmployees + "/%d"
	RouteCache          string = "/cache"
	RouteCacheCounters  string = RouteCache + "/counters"
	RouteTimers         string = "/timers"
	HeaderCorrelationId string = "Correlation-Id"
)

const PathID string = "id"

// messages returned as text/plain bodies
const (
	MessageCreated  string = "Create Successfully!"
	MessageUpdated  string = "Update Successfully!"
	MessageDeleted  string = "Delete Successfully!"
	MessageNotFound string = "Not Found!"
)

type ErrorResponse struct {
	Error string `json:"error"`
}
