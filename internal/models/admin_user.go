package models

import "time"

// AdminUser is the public snapshot of a successful admin authentication.
// It never carries the password hash.
type AdminUser struct {
	ID        string     `bson:"adminID" json:"id"`
	Email     string     `bson:"email" json:"email"`
	FullName  string     `bson:"fullName" json:"full_name"`
	LastLogin *time.Time `bson:"lastLogin,omitempty" json:"last_login,omitempty"`
}

// AdminAccount matches the document in the admin_users collection.
type AdminAccount struct {
	ID        string     `bson:"adminID"`
	Email     string     `bson:"email"`
	FullName  string     `bson:"fullName"`
	Password  string     `bson:"password"`
	LastLogin *time.Time `bson:"lastLogin,omitempty"`
	CreatedAt time.Time  `bson:"createdAt"`
}

// User returns the public view of the account.
func (a AdminAccount) User() AdminUser {
	return AdminUser{
		ID:        a.ID,
		Email:     a.Email,
		FullName:  a.FullName,
		LastLogin: a.LastLogin,
	}
}

// AuthToken is the signed session credential handed to the admin client.
// ExpiresAt is an absolute epoch-millisecond timestamp; the expiry instant
// itself counts as expired.
type AuthToken struct {
	Token     string    `json:"token"`
	User      AdminUser `json:"user"`
	ExpiresAt int64     `json:"expiresAt"`
}

// Expired reports whether the token is expired at time now.
func (t AuthToken) Expired(now time.Time) bool {
	return now.UnixMilli() >= t.ExpiresAt
}
