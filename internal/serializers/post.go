package serializers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"yatube/internal/media"
	"yatube/internal/models"
)

// GroupLookup checks group references in post input.
type GroupLookup interface {
	GroupExists(ctx context.Context, id uint) (bool, error)
}

// ImageSaver persists decoded uploads.
type ImageSaver interface {
	Save(dir string, img *media.Image) (string, error)
}

// Post is the wire form of a post.
type Post struct {
	Text    string    `json:"text"`
	PubDate time.Time `json:"pub_date"`
	Image   *string   `json:"image"`
	Author  string    `json:"author"`
	Group   *uint     `json:"group"`
	ID      uint      `json:"id"`
}

// NewPost renders p; imageURL turns a stored image name into a URL.
func NewPost(p *models.Post, imageURL func(string) string) Post {
	out := Post{
		Text:    p.Text,
		PubDate: p.PubDate.UTC(),
		Author:  p.Author.Username,
		Group:   p.GroupID,
		ID:      p.ID,
	}
	if p.Image != nil && *p.Image != "" {
		u := imageURL(*p.Image)
		out.Image = &u
	}
	return out
}

// PostInput holds the client-writable fields of a post. Absent fields are
// left untouched by Apply.
type PostInput struct {
	Text *string

	ImageSet bool
	Image    *media.Image // nil with ImageSet clears the image

	GroupSet bool
	GroupID  *uint
}

// DecodePost validates a post body. partial is true for PATCH.
func DecodePost(ctx context.Context, body io.Reader, partial bool, groups GroupLookup) (*PostInput, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	errs := ValidationError{}
	in := &PostInput{}

	in.Text = obj.text("text", !partial, errs)

	if raw, present := obj["image"]; present {
		in.ImageSet = true
		if !obj.isNull("image") {
			var payload string
			if err := json.Unmarshal(raw, &payload); err != nil {
				errs.Add("image", media.ErrInvalidImage.Error())
			} else if payload != "" {
				img, err := media.Decode(payload)
				if err != nil {
					errs.Add("image", err.Error())
				}
				in.Image = img
			}
		}
	}

	if raw, present := obj["group"]; present {
		in.GroupSet = true
		if !obj.isNull("group") {
			var id uint
			if err := json.Unmarshal(raw, &id); err != nil || id == 0 {
				errs.Add("group", fmt.Sprintf("Incorrect type. Expected pk value, received %s.", raw))
			} else {
				exists, err := groups.GroupExists(ctx, id)
				if err != nil {
					return nil, err
				}
				if !exists {
					errs.Add("group", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
				}
				in.GroupID = &id
			}
		}
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return in, nil
}

// Apply copies the present fields onto p, saving a new image through images.
func (in *PostInput) Apply(p *models.Post, images ImageSaver) error {
	if in.Text != nil {
		p.Text = *in.Text
	}
	if in.ImageSet {
		p.Image = nil
		if in.Image != nil {
			name, err := images.Save("posts", in.Image)
			if err != nil {
				return err
			}
			p.Image = &name
		}
	}
	if in.GroupSet {
		p.GroupID = in.GroupID
	}
	return nil
}
