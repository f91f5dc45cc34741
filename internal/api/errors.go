package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"yatube/internal/auth"
	"yatube/internal/serializers"
	"yatube/internal/store"
)

type detail struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// writeError renders err with the status its kind maps to.
func (api *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalid serializers.ValidationError
		parse   *serializers.ParseError
		failed  *auth.AuthenticationFailedError
		denied  *auth.PermissionDeniedError
	)
	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, invalid)
	case errors.As(err, &parse):
		writeJSON(w, http.StatusBadRequest, detail{parse.Error()})
	case errors.Is(err, auth.ErrAuthenticationRequired):
		w.Header().Set("WWW-Authenticate", `Token realm="api"`)
		writeJSON(w, http.StatusUnauthorized, detail{err.Error()})
	case errors.As(err, &failed):
		w.Header().Set("WWW-Authenticate", `Token realm="api"`)
		writeJSON(w, http.StatusUnauthorized, detail{failed.Detail})
	case errors.As(err, &denied):
		writeJSON(w, http.StatusForbidden, detail{denied.Reason})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, detail{"Not found."})
	default:
		api.logger.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error("Request failed")
		writeJSON(w, http.StatusInternalServerError, detail{"A server error occurred."})
	}
}

func (api *API) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, detail{"Not found."})
}

func (api *API) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, detail{`Method "` + r.Method + `" not allowed.`})
}

// pathID reads a numeric route variable. Values that do not fit are
// reported as not found.
func pathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	if err != nil {
		return 0, store.ErrNotFound
	}
	return uint(id), nil
}
