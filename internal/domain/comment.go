package domain

import "time"

type Comment struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	TrinityID uint      `json:"trinity_id"`
	UserID    uint      `json:"user_id"`
	Author    *User     `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
