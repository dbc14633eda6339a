package models

import "time"

// Message is an internal board post; any registered member may create one.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;uniqueIndex;not null" json:"title"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	ImageURL  string    `gorm:"size:512" json:"image_url"`
	ImageFile string    `gorm:"size:255" json:"image_file"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageComment is a reply to a board message.
type MessageComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	MessageID uint      `gorm:"index;not null" json:"message_id"`
	CreatedAt time.Time `json:"created_at"`
}
