package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"yatube/internal/auth"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// requestLogging logs every matched request and counts its outcome per
// route template. Requests slower than api.slow are logged as warnings.
func (api *API) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		duration := time.Since(start)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		switch {
		case rec.status >= 200 && rec.status < 300:
			api.metrics.SuccessfulRequests.WithLabelValues(path).Inc()
		case rec.status >= 400 && rec.status < 500:
			api.metrics.BadRequests.WithLabelValues(path).Inc()
		}

		entry := api.logger.WithFields(logrus.Fields{
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    rec.status,
			"duration":  duration,
			"remote_ip": r.RemoteAddr,
		})
		if duration > api.slow {
			entry.Warn("Slow request detected")
		} else {
			entry.Info("Request completed")
		}
	})
}

// authenticate stores the request identity in the context. Requests with
// invalid credentials are rejected even for public reads.
func (api *API) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := api.auth.Authenticate(r)
		if err != nil {
			api.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	})
}
