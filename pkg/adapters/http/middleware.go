package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type ctxKey int

const requestIDKey ctxKey = iota

// RequestID returns the short request ID assigned by the middleware, or ""
// outside a request scope.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// timedWriter defers the X-Process-Time header until the response starts, so
// the measured window covers the handler itself.
type timedWriter struct {
	http.ResponseWriter
	start   time.Time
	status  int
	written bool
}

func (tw *timedWriter) WriteHeader(status int) {
	if !tw.written {
		tw.Header().Set("X-Process-Time", fmt.Sprintf("%.4f", time.Since(tw.start).Seconds()))
		tw.status = status
		tw.written = true
	}
	tw.ResponseWriter.WriteHeader(status)
}

func (tw *timedWriter) Write(b []byte) (int, error) {
	if !tw.written {
		tw.WriteHeader(http.StatusOK)
	}
	return tw.ResponseWriter.Write(b)
}

// requestIDMiddleware assigns a short unique ID to every request and echoes
// it back in the X-Request-ID header.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()[:8]
		w.Header().Set("X-Request-ID", id)

		tw := &timedWriter{ResponseWriter: w, start: time.Now(), status: http.StatusOK}
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(tw, r.WithContext(ctx))
	})
}

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workbench_http_requests_total",
		Help: "HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "workbench_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// metricsMiddleware records request counts and latencies. It must run inside
// requestIDMiddleware so the timed writer is already in place.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		tw, ok := w.(*timedWriter)
		if !ok {
			tw = &timedWriter{ResponseWriter: w, start: start, status: http.StatusOK}
		}
		next.ServeHTTP(tw, r)

		requestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(tw.status)).Inc()
		requestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}
