package domain

import "time"

// User owns a collection of notes. Names are unique.
type User struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

func NewUser(id, name string, createdAt time.Time) *User {
	return &User{ID: id, Name: name, CreatedAt: createdAt}
}

func ValidateUser(u *User) error {
	if u == nil {
		return errNil("user")
	}
	return requireFields("user", present("ID", u.ID), present("Name", u.Name))
}
