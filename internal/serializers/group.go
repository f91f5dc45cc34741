package serializers

import "yatube/internal/models"

type Group struct {
	ID          uint   `json:"id"`
	Description string `json:"description"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
}

func NewGroup(g *models.Group) Group {
	return Group{ID: g.ID, Description: g.Description, Title: g.Title, Slug: g.Slug}
}
