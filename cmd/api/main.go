package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"yardimpanel.org/internal/auth"
	"yardimpanel.org/internal/authz"
	"yardimpanel.org/internal/httpapi"
	"yardimpanel.org/internal/obs"
	"yardimpanel.org/internal/ratelimit"
	"yardimpanel.org/internal/store/pg"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	env := envOr("APP_ENV", "development")

	// Store. The authorization pipeline needs it; without a DSN the service
	// still starts for local work, but protected routes will fail closed.
	var store *pg.Store
	if dsn := os.Getenv("PG_DSN"); dsn != "" {
		var err error
		store, err = pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
	} else {
		log.Printf("PG_DSN is not set; running without a backing store")
	}

	gate, members := buildGate(store)
	probe := readyProbe(store)

	// Fixed-window limiter, production-like environments only. Process-local:
	// each replica counts its own window.
	var limiter *ratelimit.Limiter
	if env == "production" || env == "staging" {
		limiter = ratelimit.New(
			ratelimit.WithMaxRequests(envInt("RATE_LIMIT_MAX", ratelimit.DefaultMaxRequests)),
			ratelimit.WithWindow(time.Duration(envInt("RATE_LIMIT_WINDOW_MS", 900000))*time.Millisecond),
		)
		limiter.Start()
		defer limiter.Stop()
	}

	api := httpapi.New(httpapi.Config{
		Version:    version,
		ReadyProbe: probe,
		Gate:       gate,
		Members:    members,
		Limiter:    limiter,
		KeyFor:     ratelimit.NewKeyGenerator(os.Getenv("RATE_LIMIT_TRUSTED_IP_HEADER")),
	})

	srv := &http.Server{
		Addr:              envOr("ADDR", ":8080"),
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	grpcSrv := startHealthGRPC(rootCtx, envOr("GRPC_ADDR", ":9090"), probe)

	log.Printf("Starting panel-api %s (%s) on %s", version, env, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(ctx)
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	if store != nil {
		_ = store.Close()
	}
	log.Println("Stopped")
}

// buildGate wires the token authenticator and tenant resolver over the store.
// Nil collaborators are tolerated so the service can boot store-less.
func buildGate(store *pg.Store) (*authz.Gate, authz.MemberDirectory) {
	if store == nil {
		return nil, nil
	}
	authn, err := auth.NewAuthenticator(store)
	if err != nil {
		log.Fatalf("authenticator: %v", err)
	}
	resolver, err := authz.NewContextResolver(store)
	if err != nil {
		log.Fatalf("resolver: %v", err)
	}
	gate, err := authz.NewGate(authn, resolver)
	if err != nil {
		log.Fatalf("gate: %v", err)
	}
	return gate, store
}

func readyProbe(store *pg.Store) httpapi.ReadyProbe {
	if store == nil {
		return httpapi.ReadyProbe{}
	}
	return httpapi.ReadyProbe{DB: store.DB()}
}

// startHealthGRPC serves the standard gRPC health service and keeps its status
// in sync with the readiness probe.
func startHealthGRPC(ctx context.Context, addr string, probe httpapi.ReadyProbe) *grpc.Server {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("grpc listen: %v", err)
	}

	srv := grpc.NewServer()
	health := httpapi.NewHealthServer(probe)
	health.Register(srv)

	go health.Run(ctx, 10*time.Second)
	go func() {
		if err := srv.Serve(lis); err != nil {
			log.Printf("grpc serve: %v", err)
		}
	}()
	return srv
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
