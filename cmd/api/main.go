package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ideora.org/internal/auth"
	"ideora.org/internal/authz"
	"ideora.org/internal/config"
	"ideora.org/internal/httpapi"
	"ideora.org/internal/obs"
	"ideora.org/internal/platform"
	"ideora.org/internal/store/pg"
	"ideora.org/internal/stream"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var (
		db      *sql.DB
		users   auth.UserStore
		catalog platform.Store
	)
	if cfg.Database.DSN != "" {
		pgStore, err := pg.Open(cfg.Database.DSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db = pgStore.DB()
		users = pgStore.Users()
		catalog = pgStore
	} else {
		log.Println("no database DSN configured, using in-memory stores")
		users = auth.NewMemoryStore()
		catalog = platform.NewMemoryStore()
	}

	codec, err := auth.NewCodec(cfg.Auth.Secret, cfg.Auth.TokenTTL())
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}
	authn, err := auth.NewAuthenticator(users, codec)
	if err != nil {
		log.Fatalf("authenticator: %v", err)
	}
	resolver, err := auth.NewResolver(codec, users, cfg.Auth.Stateless)
	if err != nil {
		log.Fatalf("resolver: %v", err)
	}
	enforcer, err := authz.NewEnforcer(cfg.Authz.PolicyPath)
	if err != nil {
		log.Fatalf("enforcer: %v", err)
	}

	api := httpapi.New(httpapi.Config{
		Version:       version,
		TokenTTL:      cfg.Auth.TokenTTL(),
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
		RateBurst:     cfg.Rate.Burst,
		RatePerSecond: cfg.Rate.PerSecond,
	}, httpapi.ReadyProbe{DB: db},
		authn, resolver, users, catalog, authz.NewAuthorizer(enforcer), stream.NewBroker())

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	log.Printf("Starting ideora-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
