package entity

import "time"

// Candidate é um registro buscado da fonte externa, ainda não reconciliado
// contra o banco. O email é a chave natural usada na reconciliação.
type Candidate struct {
	ExternalID  string
	Email       string
	FirstName   string
	LastName    string
	Phone       string
	Address     Address
	DateOfBirth *time.Time
	Gender      string
	Nationality string
	PictureURL  string
}
