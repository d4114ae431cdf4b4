package server

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/topochart/pkg/buildinfo"
	"github.com/matzehuels/topochart/pkg/errors"
	"github.com/matzehuels/topochart/pkg/observability"
)

// unmatchedRoute labels requests that hit no route.
const unmatchedRoute = "unmatched"

// serverHeader stamps every response with the build version.
func serverHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", buildinfo.ServerHeader())
		next.ServeHTTP(w, r)
	})
}

// observe reports each request to the HTTP hooks and logs it at debug.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := s.routePattern(r)
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, route)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		dur := time.Since(start)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, route, status, dur)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", dur,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// routePattern resolves the route pattern before dispatch so the request
// hook sees the same label as the response hook.
func (s *Server) routePattern(r *http.Request) string {
	rctx := chi.NewRouteContext()
	if s.router.Match(rctx, r.Method, r.URL.Path) {
		return rctx.RoutePattern()
	}
	return unmatchedRoute
}

// recoverer turns a handler panic into a 500 with the JSON error body,
// which chi's middleware.Recoverer does not write.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.logger.Error("handler panic",
				"panic", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()))
			writeError(w, errors.New(errors.ErrCodeInternal, "internal server error"))
		}()
		next.ServeHTTP(w, r)
	})
}
