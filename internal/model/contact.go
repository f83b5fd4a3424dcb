package model

import "time"

// Contact is a submission of the public contact form.  Email is optional.
type Contact struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Languages []string
	Message   string
	CreatedAt time.Time
}
