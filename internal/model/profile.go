package model

import "time"

// Profile is the document-store side of a registration. UserID refers to
// users.id by value only.
type Profile struct {
	UserID         int64     `bson:"user_id"`
	ProfilePicture string    `bson:"profile_picture"`
	CreatedAt      time.Time `bson:"created_at"`
}
