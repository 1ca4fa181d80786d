// Package models contains the domain types shared by repositories, services
// and the terminal front end.
package models

import "time"

// Account is a row of the users table.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	Name         string
	Email        string
	Matricule    string
	Level        string
	CreatedAt    time.Time
}

// ClearProfile drops the fields that are meaningless for the account's role.
func (a *Account) ClearProfile() {
	if !a.Role.CarriesProfile() {
		a.Matricule = ""
		a.Level = ""
	}
}
