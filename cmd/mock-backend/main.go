package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwrk-planet/logger/pkg/logger"
	"github.com/timebank/chat-client/internal/auth"
	"github.com/timebank/chat-client/internal/domain"
	"github.com/timebank/chat-client/internal/mockbackend"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8000", "listen address")
	secret := flag.String("secret", "local-dev-secret", "jwt signing secret")
	flag.Parse()

	logger.Init(logger.Config{
		Env:     logger.EnvDev,
		Service: "mock-backend",
		Version: "v0.1.0",
		Backend: logger.BackendStd,
		Debug:   true,
	})

	store := mockbackend.NewStore()
	seed(store)

	srv := mockbackend.NewServer(store, *secret)
	httpSrv := &http.Server{
		Addr:         *addr,
		Handler:      srv.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// токены для ручной проверки клиента
	for _, u := range []struct {
		id   int64
		name string
	}{{5, "ana"}, {9, "boris"}} {
		tok, err := auth.GenerateToken(*secret, u.id, u.name, 24*time.Hour)
		if err != nil {
			log.Fatalf("token: %v", err)
		}
		slog.Info("dev token", "user", u.name, "token", tok)
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", *addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", slog.Any("err", err))
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}

func seed(store *mockbackend.Store) {
	store.AddUser(domain.User{ID: 5, Username: "ana", FirstName: "Ana"})
	store.AddUser(domain.User{ID: 9, Username: "boris", FirstName: "Boris"})
	store.AddUser(domain.User{ID: 12, Username: "vera", FirstName: "Vera"})
	store.AddGroup(domain.Group{ID: 7, Name: "woodworking", Description: "Woodworking skill circle"})
}
