package randomuser

import "encoding/json"

type apiResponse struct {
	Results []randomUser `json:"results"`
}

type randomUser struct {
	Gender string `json:"gender"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Nat    string `json:"nat"`
	Name   struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"name"`
	Location struct {
		Street struct {
			Number int    `json:"number"`
			Name   string `json:"name"`
		} `json:"street"`
		City    string `json:"city"`
		State   string `json:"state"`
		Country string `json:"country"`
		// A API manda string ou número dependendo do país
		Postcode json.RawMessage `json:"postcode"`
	} `json:"location"`
	Picture struct {
		Medium string `json:"medium"`
	} `json:"picture"`
	Dob struct {
		Date string `json:"date"`
	} `json:"dob"`
	Login struct {
		UUID string `json:"uuid"`
	} `json:"login"`
}
