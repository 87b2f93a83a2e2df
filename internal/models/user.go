package models

import "time"

// User matches the document in the users collection. These are applicant
// accounts created at registration; administrators live in admin_users.
type User struct {
	ID        string    `bson:"userID"`
	Email     string    `bson:"email"`
	FullName  string    `bson:"fullName"`
	Password  string    `bson:"password"`
	Role      string    `bson:"role"`
	CreatedAt time.Time `bson:"createdAt"`
}
