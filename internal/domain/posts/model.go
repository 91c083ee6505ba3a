package posts

import "time"

type Status string

const (
	StatusPublished Status = "published"
	StatusScheduled Status = "scheduled"
	StatusCanceled  Status = "canceled"
)

type Post struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"column:user_id;not null;index" json:"userId"`
	AyrsharePostID string         `gorm:"column:ayrshare_post_id;index" json:"ayrsharePostId"`
	Content        string         `gorm:"type:text;not null" json:"content"`
	Platforms      []string       `gorm:"serializer:json;type:text" json:"platforms"`
	MediaURLs      []string       `gorm:"column:media_urls;serializer:json;type:text" json:"mediaUrls"`
	Status         Status         `gorm:"type:varchar(20);not null" json:"status"`
	ScheduledAt    *time.Time     `json:"scheduledAt,omitempty"`
	PublishedAt    *time.Time     `json:"publishedAt,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}
