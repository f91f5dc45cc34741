package api

import (
	"net/http"

	"yatube/internal/serializers"
)

// Groups are read-only; no route mutates them.

func (api *API) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := api.store.ListGroups(r.Context())
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	results := make([]serializers.Group, 0, len(groups))
	for i := range groups {
		results = append(results, serializers.NewGroup(&groups[i]))
	}
	writeJSON(w, http.StatusOK, results)
}

func (api *API) RetrieveGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "group_id")
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	group, err := api.store.GetGroup(r.Context(), id)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serializers.NewGroup(group))
}
