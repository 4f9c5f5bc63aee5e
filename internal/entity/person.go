package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Value Object: Address (persistido como JSONB)
type Address struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
}

type Person struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	FullName    string     `json:"full_name"`
	Phone       string     `json:"phone,omitempty"`
	Address     Address    `json:"address"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Nationality string     `json:"nationality,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	PictureURL  string     `json:"picture_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Factory
func NewPerson(firstName, lastName, phone string, address Address) *Person {
	now := time.Now()
	return &Person{
		ID:        uuid.New().String(),
		FirstName: firstName,
		LastName:  lastName,
		FullName:  strings.TrimSpace(firstName + " " + lastName),
		Phone:     phone,
		Address:   address,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
