package main

import (
    "context"
    "errors"
    "fmt"
    "net"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "go.uber.org/zap"

    "github.com/jaminalder/tictactoe-history/internal/app"
    "github.com/jaminalder/tictactoe-history/internal/config"
    "github.com/jaminalder/tictactoe-history/internal/logging"
    "github.com/jaminalder/tictactoe-history/internal/web"
)

func main() {
    defer func() {
        if err := recover(); err != nil {
            fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
            os.Exit(1)
        }
    }()

    conf := initConfig()
    log, err := logging.New(conf.LogLevel)
    if err != nil {
        panic(err)
    }
    defer func() { _ = log.Sync() }()

    if err := run(log, conf); err != nil {
        panic(fmt.Errorf("server run failed: %w", err))
    }
}

// initConfig loads CONFIG_PATH, defaulting to ./config.yml.
func initConfig() *config.Config {
    path := os.Getenv("CONFIG_PATH")
    if path == "" {
        path = "config.yml"
    }
    return config.MustLoad(path)
}

func run(log *zap.Logger, conf *config.Config) error {
    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()

    svc := app.NewService()
    svc.SetLogger(log)
    handler := web.NewServer(svc, web.WithLogger(log), web.WithHeartbeat(conf.Events.Heartbeat))

    srv := &http.Server{
        Addr:              conf.HTTP.Addr,
        Handler:           handler,
        ReadHeaderTimeout: conf.HTTP.ReadHeaderTimeout,
        BaseContext:       func(_ net.Listener) context.Context { return ctx },
    }

    go sweep(ctx, svc, conf.Session.SweepInterval, conf.Session.MaxIdle)

    errCh := make(chan error, 1)
    go func() {
        log.Info("starting HTTP server", zap.String("addr", conf.HTTP.Addr))
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            errCh <- err
        }
        close(errCh)
    }()

    select {
    case err := <-errCh:
        if err != nil {
            return fmt.Errorf("HTTP server error: %w", err)
        }
        return nil
    case <-ctx.Done():
        log.Info("shutting down")
    }

    // end event streams and sockets; Shutdown does not wait for hijacked conns
    svc.DisconnectAll()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.HTTP.ShutdownTimeout)
    defer cancel()
    if err := srv.Shutdown(shutdownCtx); err != nil {
        return fmt.Errorf("shutdown: %w", err)
    }
    return nil
}

// sweep drops idle games until ctx is done.
func sweep(ctx context.Context, svc *app.Service, every, maxIdle time.Duration) {
    ticker := time.NewTicker(every)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            svc.Expire(maxIdle)
        }
    }
}
