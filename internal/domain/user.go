package domain

import "time"

type User struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Actor is the request-scoped identity every mutating operation receives.
// The zero value is the anonymous visitor.
type Actor struct {
	UserID   uint
	Username string
	IsAdmin  bool
}

func NewActor(user User) Actor {
	return Actor{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}
}

func (a Actor) Authenticated() bool {
	return a.UserID != 0
}

// CanModify reports whether the actor may edit or delete the entry.
func (a Actor) CanModify(t Trinity) bool {
	return a.Authenticated() && (a.IsAdmin || a.UserID == t.CreatorID)
}
