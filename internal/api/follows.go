package api

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"yatube/internal/auth"
	"yatube/internal/serializers"
	"yatube/internal/store"
)

// ListFollows returns the requester's outgoing follow edges, optionally
// filtered by ?search= over both usernames.
func (api *API) ListFollows(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	if err := auth.Authorize(id, auth.ActionReadOwn, nil); err != nil {
		api.writeError(w, r, err)
		return
	}

	follows, err := api.store.ListFollows(r.Context(), id.UserID, r.URL.Query().Get("search"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	results := make([]serializers.Follow, 0, len(follows))
	for i := range follows {
		results = append(results, serializers.NewFollow(&follows[i]))
	}
	writeJSON(w, http.StatusOK, results)
}

func (api *API) CreateFollow(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	if err := auth.Authorize(id, auth.ActionCreate, nil); err != nil {
		api.writeError(w, r, err)
		return
	}

	follow, err := serializers.DecodeFollow(r.Context(), r.Body, id.UserID, api.store)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	err = api.store.CreateFollow(r.Context(), follow)
	if errors.Is(err, store.ErrDuplicate) {
		// Lost a race with an identical request after validation.
		err = serializers.DuplicateFollow()
	}
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	api.metrics.FollowRequests.WithLabelValues("follow").Inc()
	api.logger.WithFields(logrus.Fields{
		"user":   id.Username,
		"target": follow.Following.Username,
	}).Info("User followed successfully")
	writeJSON(w, http.StatusCreated, serializers.NewFollow(follow))
}
