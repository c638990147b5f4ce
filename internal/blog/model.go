package blog

import "time"

type Post struct {
	ID          string     `bson:"_id,omitempty" json:"id"`
	Title       string     `bson:"title" json:"title"`
	Slug        string     `bson:"slug" json:"slug"`
	Excerpt     string     `bson:"excerpt,omitempty" json:"excerpt,omitempty"`
	Content     string     `bson:"content" json:"content"`
	CoverImage  string     `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	Published   bool       `bson:"published" json:"published"`
	PublishedAt *time.Time `bson:"publishedAt,omitempty" json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
}

type UpsertRequest struct {
	Title      string `json:"title" validate:"required,max=200"`
	Slug       string `json:"slug" validate:"omitempty,max=200"`
	Excerpt    string `json:"excerpt" validate:"omitempty,max=500"`
	Content    string `json:"content" validate:"required"`
	CoverImage string `json:"coverImage" validate:"omitempty,url"`
	Published  *bool  `json:"published"`
}
