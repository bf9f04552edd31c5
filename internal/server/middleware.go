package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/sagenex/teamtree/pkg/tree"
)

type tokenKey struct{}

// requireBearer rejects requests without an Authorization: Bearer header and
// stores the token for the handlers.
func requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			writeErrorMessage(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
			return
		}
		ctx := context.WithValue(r.Context(), tokenKey{}, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(ctx context.Context) string {
	tok, _ := ctx.Value(tokenKey{}).(string)
	return tok
}

type memberKey struct{}

// identifyMember resolves the caller's bearer token to their tree through the
// backend. The tree's root id is the member the request acts for; routes
// serving local data use it to scope what the caller can see.
func (s *Server) identifyMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp, err := s.runner.Fetch(r.Context(), s.client(r), s.cfg.Defaults)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if resp.Tree == nil || resp.Tree.ID == "" {
			writeErrorMessage(w, http.StatusForbidden, "FORBIDDEN", "token does not identify a member")
			return
		}
		ctx := context.WithValue(r.Context(), memberKey{}, resp)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// member returns the caller's tree as resolved by identifyMember.
func member(ctx context.Context) tree.Response {
	resp, _ := ctx.Value(memberKey{}).(tree.Response)
	return resp
}

// memberID returns the caller's member id. It is never empty behind
// identifyMember.
func memberID(ctx context.Context) string {
	if t := member(ctx).Tree; t != nil {
		return t.ID
	}
	return ""
}

// requestLogger logs one line per request with the chi request id.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			kv := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"took", time.Since(start).Round(time.Microsecond),
				"request_id", middleware.GetReqID(r.Context()),
				"remote", r.RemoteAddr,
			}
			if status >= http.StatusInternalServerError {
				s.logger.Error("request", kv...)
			} else {
				s.logger.Info("request", kv...)
			}
		}()
		next.ServeHTTP(ww, r)
	})
}
