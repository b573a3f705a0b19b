package swagger

import "github.com/antonio-alexander/go-blog-crud/internal/data"

// swagger:route DELETE /cache Diagnostics DeleteCache
// Deletes all items in the cache.
//
// responses:
//   204: DiagnosticsResponseNoContent

// swagger:route GET /cache/counters Diagnostics ReadCacheCounters
// Reads the cache hit and miss counters.
//
//     Produces:
//     - application/json
//
// responses:
//   200: CacheCountersGetResponseOk

// swagger:route DELETE /cache/counters Diagnostics DeleteCacheCounters
// Resets the cache hit and miss counters.
//
// responses:
//   204: DiagnosticsResponseNoContent

// swagger:route GET /timers Diagnostics ReadTimers
// Reads the endpoint timers, only populated when timers are enabled.
//
//     Produces:
//     - application/json
//
// responses:
//   200: TimersGetResponseOk

// swagger:route DELETE /timers Diagnostics DeleteTimers
// Resets the endpoint timers.
//
// responses:
//   204: DiagnosticsResponseNoContent

// swagger:response DiagnosticsResponseNoContent
type DiagnosticsResponseNoContent struct{}

// swagger:response CacheCountersGetResponseOk
type CacheCountersGetResponseOk struct {
	// in:body
	CacheCounters data.CacheCounters
}

// swagger:response TimersGetResponseOk
type TimersGetResponseOk struct {
	// in:body
	Timers data.Timers
}

// swagger:parameters DeleteCache ReadCacheCounters DeleteCacheCounters ReadTimers DeleteTimers
type DiagnosticsParams struct {
	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
