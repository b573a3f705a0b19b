package data

import "strconv"

// CounterKey identifies a cache hit/miss counter
type CounterKey string

// TimerGroup identifies the endpoint a timer was started for
type TimerGroup string

const (
	CounterKeyEmployees CounterKey = "employees"
	counterKeyEmployee  string     = "employee_"
)

const (
	TimerGroupEmployeesRead  TimerGroup = "employees_read"
	TimerGroupEmployeeRead   TimerGroup = "employee_read"
	TimerGroupEmployeeCreate TimerGroup = "employee_create"
	TimerGroupEmployeeUpdate TimerGroup = "employee_update"
	TimerGroupEmployeeDelete TimerGroup = "employee_delete"
)

// CounterKeyEmployee is the counter for reads of a single employee
func CounterKeyEmployee(id int64) CounterKey {
	return CounterKey(counterKeyEmployee + strconv.FormatInt(id, 10))
}

type CacheCounters struct {
	CounterHits   map[string]int `json:"counter_hits,omitempty"`
	CounterMisses map[string]int `json:"counter_misses,omitempty"`
}

type Timers struct {
	Totals   map[string]int64 `json:"totals,omitempty"`
	Averages map[string]int64 `json:"averages,omitempty"`
}
