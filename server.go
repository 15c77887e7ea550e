package sheetredirect

import (
	"context"
	"errors"
	"github.com/go-chi/chi/v5"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"
)

// NewRouter sends every request, whatever its method or path, through the
// redirect middleware and then NotFound.
func NewRouter(rd *Redirecter) http.Handler {
	r := chi.NewRouter()
	r.Use(rd.Middleware)
	r.NotFound(NotFound)
	r.MethodNotAllowed(NotFound)
	r.Handle("/*", http.HandlerFunc(NotFound))
	return r
}

// Serve handles requests on lis until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, lis net.Listener, h http.Handler) error {
	srv := &http.Server{
		Handler:      h,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("http: graceful shutdown error: %v", err)
		}
	}()

	port := lis.Addr().String()
	if tcp, ok := lis.Addr().(*net.TCPAddr); ok {
		port = strconv.Itoa(tcp.Port)
	}
	log.Printf("Server is running on http://localhost:%s", port)
	err := srv.Serve(lis)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
