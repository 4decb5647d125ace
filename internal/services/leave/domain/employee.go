package domain

import "time"

// Employee is an identity record in the directory.
type Employee struct {
	ID             string
	Username       string
	CredentialHash string
	Name           string
	Email          string
	Department     string
	Active         bool
	Admin          bool
	CreatedAt      time.Time
}
