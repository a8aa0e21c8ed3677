// sitechat/sources/psql/models/web_session.go
package models

import (
	"time"
)

type WebSession struct {
	ID             string    `json:"id" gorm:"type:varchar(64);primaryKey"`
	WebsiteURL     string    `json:"website_url" gorm:"type:text;not null"`
	WebsiteTitle   string    `json:"website_title" gorm:"type:text"`
	WebsiteContent string    `json:"website_content" gorm:"type:text;not null"`
	FetchFailed    bool      `json:"fetch_failed" gorm:"not null;default:false"`
	APIKey         string    `json:"-" gorm:"type:text;not null"`
	APIProvider    string    `json:"api_provider" gorm:"type:varchar(32);not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (WebSession) TableName() string {
	return "web_sessions"
}
