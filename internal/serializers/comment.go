package serializers

import (
	"io"
	"time"

	"yatube/internal/models"
)

type Comment struct {
	ID      uint      `json:"id"`
	Author  string    `json:"author"`
	Post    uint      `json:"post"`
	Created time.Time `json:"created"`
	Text    string    `json:"text"`
}

func NewComment(c *models.Comment) Comment {
	return Comment{
		ID:      c.ID,
		Author:  c.Author.Username,
		Post:    c.PostID,
		Created: c.Created.UTC(),
		Text:    c.Text,
	}
}

// CommentInput is the only client-writable part of a comment; post and
// author come from the URL and the identity.
type CommentInput struct {
	Text *string
}

func DecodeComment(body io.Reader, partial bool) (*CommentInput, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	errs := ValidationError{}
	in := &CommentInput{Text: obj.text("text", !partial, errs)}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return in, nil
}

func (in *CommentInput) Apply(c *models.Comment) {
	if in.Text != nil {
		c.Text = *in.Text
	}
}
