package api

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	"yatube/internal/auth"
	"yatube/internal/models"
	"yatube/internal/serializers"
)

func (api *API) ListPosts(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r.URL.Query())
	posts, count, err := api.store.ListPosts(r.Context(), page)
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	results := make([]serializers.Post, 0, len(posts))
	for i := range posts {
		results = append(results, serializers.NewPost(&posts[i], api.imageURL(r)))
	}
	if page == nil {
		writeJSON(w, http.StatusOK, results)
		return
	}
	writeJSON(w, http.StatusOK, newPageResponse(r, page, count, results))
}

func (api *API) CreatePost(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	if err := auth.Authorize(id, auth.ActionCreate, nil); err != nil {
		api.writeError(w, r, err)
		return
	}

	in, err := serializers.DecodePost(r.Context(), r.Body, false, api.store)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	post := &models.Post{AuthorID: id.UserID}
	if err := in.Apply(post, api.media); err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := api.store.CreatePost(r.Context(), post); err != nil {
		api.writeError(w, r, err)
		return
	}

	api.metrics.PostsCreated.WithLabelValues("posts").Inc()
	api.logger.WithFields(logrus.Fields{"post_id": post.ID, "author": id.Username}).Info("Post created")
	writeJSON(w, http.StatusCreated, serializers.NewPost(post, api.imageURL(r)))
}

func (api *API) RetrievePost(w http.ResponseWriter, r *http.Request) {
	post, err := api.post(r)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serializers.NewPost(post, api.imageURL(r)))
}

// UpdatePost serves PUT (all required fields) and PATCH (partial).
func (api *API) UpdatePost(w http.ResponseWriter, r *http.Request) {
	post, err := api.post(r)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := api.authorize(r, auth.ActionUpdate, "post", post); err != nil {
		api.writeError(w, r, err)
		return
	}

	in, err := serializers.DecodePost(r.Context(), r.Body, r.Method == http.MethodPatch, api.store)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := in.Apply(post, api.media); err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := api.store.SavePost(r.Context(), post); err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serializers.NewPost(post, api.imageURL(r)))
}

func (api *API) DestroyPost(w http.ResponseWriter, r *http.Request) {
	post, err := api.post(r)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := api.authorize(r, auth.ActionDelete, "post", post); err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := api.store.DeletePost(r.Context(), post); err != nil {
		api.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// post resolves the {post_id} route variable.
func (api *API) post(r *http.Request) (*models.Post, error) {
	id, err := pathID(r, "post_id")
	if err != nil {
		return nil, err
	}
	return api.store.GetPost(r.Context(), id)
}

// authorize checks the request identity against target and counts
// ownership denials per resource.
func (api *API) authorize(r *http.Request, action auth.Action, resource string, target auth.Owned) error {
	id := auth.FromContext(r.Context())
	err := auth.Authorize(id, action, target)
	var denied *auth.PermissionDeniedError
	if errors.As(err, &denied) {
		api.metrics.PermissionDenied.WithLabelValues(resource).Inc()
		api.logger.WithFields(logrus.Fields{
			"resource": resource,
			"action":   action.String(),
			"user":     id.Username,
		}).Warn("Permission denied")
	}
	return err
}

// imageURL returns a function rendering stored image names as absolute URLs.
func (api *API) imageURL(r *http.Request) func(string) string {
	return func(name string) string {
		u := url.URL{Scheme: requestScheme(r), Host: r.Host, Path: api.media.PublicPath(name)}
		return u.String()
	}
}
