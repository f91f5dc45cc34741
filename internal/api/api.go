// Package api exposes posts, groups, comments and follow edges over HTTP.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"yatube/internal/auth"
	"yatube/internal/media"
	"yatube/internal/metrics"
	"yatube/internal/store"
)

type API struct {
	store   *store.Store
	auth    *auth.Authenticator
	media   *media.Storage
	metrics *metrics.Metrics
	logger  logrus.FieldLogger
	slow    time.Duration
}

func New(st *store.Store, authn *auth.Authenticator, files *media.Storage, m *metrics.Metrics, logger logrus.FieldLogger, slowRequest time.Duration) *API {
	return &API{
		store:   st,
		auth:    authn,
		media:   files,
		metrics: m,
		logger:  logger,
		slow:    slowRequest,
	}
}

// Routes builds the router. Resource routes live under prefix (for
// example "/api/v1"); metricsHandler is mounted at /metrics.
func (api *API) Routes(prefix string, metricsHandler http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(api.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(api.methodNotAllowed)
	r.Use(api.requestLogging, api.authenticate)

	r.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	r.PathPrefix(strings.TrimSuffix(api.media.URL, "/") + "/").
		Handler(api.media.Handler()).
		Methods(http.MethodGet, http.MethodHead)

	v1 := r.PathPrefix(prefix).Subrouter()

	v1.HandleFunc("/posts/", api.ListPosts).Methods(http.MethodGet)
	v1.HandleFunc("/posts/", api.CreatePost).Methods(http.MethodPost)
	v1.HandleFunc("/posts/{post_id:[0-9]+}/", api.RetrievePost).Methods(http.MethodGet)
	v1.HandleFunc("/posts/{post_id:[0-9]+}/", api.UpdatePost).Methods(http.MethodPut, http.MethodPatch)
	v1.HandleFunc("/posts/{post_id:[0-9]+}/", api.DestroyPost).Methods(http.MethodDelete)

	v1.HandleFunc("/groups/", api.ListGroups).Methods(http.MethodGet)
	v1.HandleFunc("/groups/{group_id:[0-9]+}/", api.RetrieveGroup).Methods(http.MethodGet)

	v1.HandleFunc("/posts/{post_id:[0-9]+}/comments/", api.ListComments).Methods(http.MethodGet)
	v1.HandleFunc("/posts/{post_id:[0-9]+}/comments/", api.CreateComment).Methods(http.MethodPost)
	v1.HandleFunc("/posts/{post_id:[0-9]+}/comments/{comment_id:[0-9]+}/", api.RetrieveComment).Methods(http.MethodGet)
	v1.HandleFunc("/posts/{post_id:[0-9]+}/comments/{comment_id:[0-9]+}/", api.UpdateComment).Methods(http.MethodPut, http.MethodPatch)
	v1.HandleFunc("/posts/{post_id:[0-9]+}/comments/{comment_id:[0-9]+}/", api.DestroyComment).Methods(http.MethodDelete)

	v1.HandleFunc("/follow/", api.ListFollows).Methods(http.MethodGet)
	v1.HandleFunc("/follow/", api.CreateFollow).Methods(http.MethodPost)

	v1.HandleFunc("/users/", api.Register).Methods(http.MethodPost)
	v1.HandleFunc("/users/me/", api.Me).Methods(http.MethodGet)
	v1.HandleFunc("/auth/token/login/", api.TokenLogin).Methods(http.MethodPost)
	v1.HandleFunc("/auth/token/logout/", api.TokenLogout).Methods(http.MethodPost)
	v1.HandleFunc("/auth/session/login/", api.SessionLogin).Methods(http.MethodPost)
	v1.HandleFunc("/auth/session/logout/", api.SessionLogout).Methods(http.MethodPost)
	v1.HandleFunc("/jwt/create/", api.JWTCreate).Methods(http.MethodPost)
	v1.HandleFunc("/jwt/refresh/", api.JWTRefresh).Methods(http.MethodPost)
	v1.HandleFunc("/jwt/verify/", api.JWTVerify).Methods(http.MethodPost)

	return r
}
