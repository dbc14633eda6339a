package models

import "time"

// BlogPost is a public blog entry authored by the site operator.
// ImageURL points to an external image; ImageFile names a locally
// uploaded file under the uploads directory, empty when none.
type BlogPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;uniqueIndex;not null" json:"title"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	ImageURL  string    `gorm:"size:512" json:"image_url"`
	ImageFile string    `gorm:"size:255" json:"image_file"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BlogComment is a reply to a blog post.
type BlogComment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	AuthorID   uint      `gorm:"index;not null" json:"author_id"`
	BlogPostID uint      `gorm:"index;not null" json:"blog_post_id"`
	CreatedAt  time.Time `json:"created_at"`
}
