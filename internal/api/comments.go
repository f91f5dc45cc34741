package api

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"yatube/internal/auth"
	"yatube/internal/models"
	"yatube/internal/serializers"
)

// Every comment route first resolves its parent post; a missing post ends
// the request with 404 before authorization or validation.

func (api *API) ListComments(w http.ResponseWriter, r *http.Request) {
	post, err := api.post(r)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	comments, err := api.store.ListComments(r.Context(), post.ID)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	results := make([]serializers.Comment, 0, len(comments))
	for i := range comments {
		results = append(results, serializers.NewComment(&comments[i]))
	}
	writeJSON(w, http.StatusOK, results)
}

func (api *API) CreateComment(w http.ResponseWriter, r *http.Request) {
	post, err := api.post(r)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	id := auth.FromContext(r.Context())
	if err := auth.Authorize(id, auth.ActionCreate, nil); err != nil {
		api.writeError(w, r, err)
		return
	}

	in, err := serializers.DecodeComment(r.Body, false)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	comment := &models.Comment{AuthorID: id.UserID, PostID: post.ID}
	in.Apply(comment)
	if err := api.store.CreateComment(r.Context(), comment); err != nil {
		api.writeError(w, r, err)
		return
	}

	api.metrics.CommentsCreated.WithLabelValues("comments").Inc()
	api.logger.WithFields(logrus.Fields{
		"post_id":    post.ID,
		"comment_id": comment.ID,
		"author":     id.Username,
	}).Info("Comment created")
	writeJSON(w, http.StatusCreated, serializers.NewComment(comment))
}

func (api *API) RetrieveComment(w http.ResponseWriter, r *http.Request) {
	comment, err := api.comment(r)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serializers.NewComment(comment))
}

func (api *API) UpdateComment(w http.ResponseWriter, r *http.Request) {
	comment, err := api.comment(r)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := api.authorize(r, auth.ActionUpdate, "comment", comment); err != nil {
		api.writeError(w, r, err)
		return
	}

	in, err := serializers.DecodeComment(r.Body, r.Method == http.MethodPatch)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	in.Apply(comment)
	if err := api.store.SaveComment(r.Context(), comment); err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serializers.NewComment(comment))
}

func (api *API) DestroyComment(w http.ResponseWriter, r *http.Request) {
	comment, err := api.comment(r)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := api.authorize(r, auth.ActionDelete, "comment", comment); err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := api.store.DeleteComment(r.Context(), comment); err != nil {
		api.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// comment resolves {post_id} and then {comment_id} within that post.
func (api *API) comment(r *http.Request) (*models.Comment, error) {
	post, err := api.post(r)
	if err != nil {
		return nil, err
	}
	id, err := pathID(r, "comment_id")
	if err != nil {
		return nil, err
	}
	return api.store.GetComment(r.Context(), post.ID, id)
}
