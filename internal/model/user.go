package model

import "time"

type User struct {
	ID        int64     `db:"id"`
	FirstName string    `db:"first_name"`
	Password  string    `db:"password"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
}
