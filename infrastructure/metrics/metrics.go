package metrics

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Time spent handling a single bot update
	ResponseTimeHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "response_time_seconds",
			Help:    "Response time in seconds",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10), // 0.1s .. 1.0s
		},
		[]string{"endpoint"},
	)
)

func Init() {
	prometheus.MustRegister(ResponseTimeHistogram)
}

func NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func StartMetricsServer(addr string, logger *slog.Logger) {
	go func() {
		logger.Info("metrics server running", "addr", addr)
		if err := http.ListenAndServe(addr, NewRouter()); err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
}
