package rpc

import "github.com/dmitrijs2005/pointfeed/internal/server/models"

func NewUser(u *models.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func NewPost(p *models.Post) *Post {
	if p == nil {
		return nil
	}
	return &Post{
		ID:        p.ID,
		PostedBy:  p.AuthorID,
		Body:      p.Body,
		MediaURL:  p.MediaURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Deleted:   p.Deleted,
	}
}

// NewPosts converts a list; the result is never nil.
func NewPosts(ps []*models.Post) []*Post {
	out := make([]*Post, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewPost(p))
	}
	return out
}
