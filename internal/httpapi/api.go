// Package httpapi is the HTTP surface of the platform. Handlers stay
// thin: they decode, call the domain layer and translate sentinel
// errors onto status codes.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"ideora.org/internal/auth"
	"ideora.org/internal/authz"
	"ideora.org/internal/obs"
	"ideora.org/internal/platform"
	"ideora.org/internal/stream"
)

// ReadyProbe reports whether the process can serve traffic.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Config carries the knobs the HTTP layer needs from the loaded
// configuration.
type Config struct {
	Version       string
	TokenTTL      time.Duration
	MaxBodyBytes  int64
	RateBurst     int
	RatePerSecond int
}

// API wires handlers to the domain services.
type API struct {
	mux *http.ServeMux

	authn    *auth.Authenticator
	resolver *auth.Resolver
	users    auth.UserStore
	store    platform.Store
	authz    *authz.Authorizer
	broker   *stream.Broker

	readyProbe ReadyProbe
	cfg        Config
}

// New registers every route. All dependencies are required except the
// ready probe's DB handle.
func New(cfg Config, rp ReadyProbe, authn *auth.Authenticator, resolver *auth.Resolver,
	users auth.UserStore, store platform.Store, authorizer *authz.Authorizer, broker *stream.Broker) *API {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	a := &API{
		mux:        http.NewServeMux(),
		authn:      authn,
		resolver:   resolver,
		users:      users,
		store:      store,
		authz:      authorizer,
		broker:     broker,
		readyProbe: rp,
		cfg:        cfg,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// accounts
	a.mux.HandleFunc("/v1/users", a.handleUsersCollection)
	a.mux.HandleFunc("/v1/users/login", a.handleLogin)
	a.mux.HandleFunc("/v1/users/me", a.handleMe)
	a.mux.HandleFunc("/v1/users/", a.handleUserResource)

	// catalogue
	a.mux.HandleFunc("/v1/themes", a.handleThemes)
	a.mux.HandleFunc("/v1/news", a.handleNewsCollection)
	a.mux.HandleFunc("/v1/news/", a.handleNewsResource)

	// ideations
	a.mux.HandleFunc("/v1/ideations", a.handleIdeationsCollection)
	a.mux.HandleFunc("/v1/ideation/", a.handleIdeationResource)

	// comments and attachments
	a.mux.HandleFunc("/v1/comments", a.handleCommentsCollection)
	a.mux.HandleFunc("/v1/comment/", a.handleCommentResource)
	a.mux.HandleFunc("/v1/attachments", a.handleAttachmentsCollection)
	a.mux.HandleFunc("/v1/attachment/", a.handleAttachmentResource)

	// investors and investments
	a.mux.HandleFunc("/v1/investors", a.handleInvestorsCollection)
	a.mux.HandleFunc("/v1/investor/", a.handleInvestorResource)
	a.mux.HandleFunc("/v1/investments", a.handleInvestmentsCollection)
	a.mux.HandleFunc("/v1/investments/", a.handleInvestmentResource)

	// financial plans
	a.mux.HandleFunc("/v1/finance/", a.handleFinanceResource)

	// boards
	a.mux.HandleFunc("/v1/boards", a.handleBoardsCollection)
	a.mux.HandleFunc("/v1/board/", a.handleBoardResource)

	// chat
	a.mux.HandleFunc("/v1/chat/rooms", a.handleChatRooms)
	a.mux.HandleFunc("/v1/chat/history", a.handleChatHistory)
	a.mux.HandleFunc("/v1/chat/ws", a.handleChatWS)
	a.mux.HandleFunc("/v1/chat/", a.handleChatRoomResource)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler composes the middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, a.cfg.MaxBodyBytes)
	h = RateLimit(h, a.cfg.RateBurst, a.cfg.RatePerSecond)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = RequestID(h)
	h = Logging(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "ideora-api",
		"version": a.cfg.Version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "ideora-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.cfg.Version,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
