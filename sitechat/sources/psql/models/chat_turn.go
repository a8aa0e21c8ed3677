package models

import (
	"time"
)

// ChatTurn rows are append-only; ID order is conversation order.
type ChatTurn struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	SessionID string    `json:"session_id" gorm:"type:varchar(64);not null;index"`
	Role      string    `json:"role" gorm:"type:varchar(16);not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (ChatTurn) TableName() string {
	return "chat_turns"
}
