package models

import "time"

// WordPostID is the singleton row read on the homepage.
const WordPostID uint = 1

// DevotionalPost is a dated devotional shown on the homepage.
type DevotionalPost struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:255;uniqueIndex;not null" json:"title"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	ImageURL   string    `gorm:"size:512" json:"image_url"`
	ImageFile  string    `gorm:"size:255" json:"image_file"`
	LaunchDate time.Time `gorm:"index" json:"launch_date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewsPost is a short announcement.
type NewsPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WordPost holds the "word of the day". Only the row with ID WordPostID
// is ever displayed; edits upsert that row.
type WordPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	UpdatedAt time.Time `json:"updated_at"`
}
