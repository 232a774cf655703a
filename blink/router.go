package blink

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"capsulex-blink/metrics"
)

// RouterConfig wires the router's collaborators.
type RouterConfig struct {
	Handler      *Handler
	Metrics      *metrics.Metrics
	RateLimiter  *RateLimiter
	BlockchainID string
	Logger       *zap.Logger
}

// NewRouter builds the full HTTP stack. Middleware order: request id,
// action headers (which answer preflights), access log, metrics, rate
// limit, routes.
func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handler
	r := mux.NewRouter()

	r.HandleFunc("/actions.json", h.Manifest).Methods(http.MethodGet)
	r.HandleFunc("/api/actions.json", h.Manifest).Methods(http.MethodGet)

	r.HandleFunc("/api/guess/{capsule_id}", h.GuessGet).Methods(http.MethodGet)
	r.HandleFunc("/api/guess/{capsule_id}", h.GuessPost).Methods(http.MethodPost)
	r.HandleFunc("/api/game-details/{capsule_id}", h.GameDetails).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/api/game-leaderboard/{capsule_id}", h.GameLeaderboard).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/api/leaderboard/global", h.GlobalLeaderboard).Methods(http.MethodGet)
	r.HandleFunc("/api/leaderboard/user", h.UserStats).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/api/leaderboard/game/{capsule_id}", h.GameLeaderboardSummary).Methods(http.MethodGet)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	r.NotFoundHandler = http.HandlerFunc(h.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.MethodNotAllowed)

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var handler http.Handler = r
	if cfg.RateLimiter != nil {
		handler = cfg.RateLimiter.Handler(handler)
	}
	if cfg.Metrics != nil {
		handler = cfg.Metrics.InstrumentHandler(handler)
	}
	handler = accessLog(logger)(handler)
	handler = actionHeaders(cfg.BlockchainID)(handler)
	return requestID(handler)
}
