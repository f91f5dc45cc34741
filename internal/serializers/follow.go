package serializers

import (
	"context"
	"errors"
	"fmt"
	"io"

	"yatube/internal/models"
	"yatube/internal/store"
)

const (
	MsgFollowNotUnique = "The fields user, following must make a unique set."
	MsgFollowSelf      = "You cannot follow yourself, choose a different user."
)

// FollowLookup resolves follow targets and existing edges.
type FollowLookup interface {
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	FollowExists(ctx context.Context, userID, followingID uint) (bool, error)
}

type Follow struct {
	ID        uint   `json:"id"`
	User      string `json:"user"`
	Following string `json:"following"`
}

func NewFollow(f *models.Follow) Follow {
	return Follow{ID: f.ID, User: f.User.Username, Following: f.Following.Username}
}

// DecodeFollow validates a follow body for requester. Checks run in order:
// the target exists, the edge is new, the target is not the requester.
// The returned edge always has UserID set to requester.
func DecodeFollow(ctx context.Context, body io.Reader, requester uint, lookup FollowLookup) (*models.Follow, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	errs := ValidationError{}

	username := obj.text("following", true, errs)
	if username == nil {
		return nil, errs
	}

	target, err := lookup.UserByUsername(ctx, *username)
	if errors.Is(err, store.ErrNotFound) {
		errs.Add("following", fmt.Sprintf("Object with username=%s does not exist.", *username))
		return nil, errs
	}
	if err != nil {
		return nil, err
	}

	exists, err := lookup.FollowExists(ctx, requester, target.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		errs.Add("following", MsgFollowNotUnique)
		return nil, errs
	}

	if target.ID == requester {
		errs.Add("following", MsgFollowSelf)
		return nil, errs
	}

	return &models.Follow{UserID: requester, FollowingID: target.ID}, nil
}

// DuplicateFollow is the error reported when the store rejects an edge
// that was inserted concurrently after validation.
func DuplicateFollow() error {
	return ValidationError{"following": {MsgFollowNotUnique}}
}
