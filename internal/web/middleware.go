package web

import (
    "net/http"
    "time"

    "github.com/go-chi/chi/v5/middleware"
    "go.uber.org/zap"
)

// requestLogger logs one line per request once the handler returns.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
            start := time.Now()
            defer func() {
                log.Info("request",
                    zap.String("method", r.Method),
                    zap.String("path", r.URL.Path),
                    zap.Int("status", ww.Status()),
                    zap.Int("bytes", ww.BytesWritten()),
                    zap.Duration("duration", time.Since(start)),
                    zap.String("request_id", middleware.GetReqID(r.Context())),
                )
            }()
            next.ServeHTTP(ww, r)
        })
    }
}
