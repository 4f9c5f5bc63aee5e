package randomuser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/xavierca1/contactship-crm/internal/entity"
)

// Client busca candidatos na API randomuser.me. Non-2xx e timeout viram erro;
// nunca devolvemos lote parcial em silêncio.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) FetchBatch(ctx context.Context, count int) ([]entity.Candidate, error) {
	url := fmt.Sprintf("%s/?results=%d&nat=us", c.baseURL, count)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro request randomuser: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("randomuser API error (status %d)", resp.StatusCode)
	}

	var response apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("erro decode randomuser: %w", err)
	}

	candidates := make([]entity.Candidate, 0, len(response.Results))
	for _, u := range response.Results {
		candidates = append(candidates, toCandidate(u))
	}
	return candidates, nil
}

func toCandidate(u randomUser) entity.Candidate {
	c := entity.Candidate{
		ExternalID:  u.Login.UUID,
		Email:       u.Email,
		FirstName:   u.Name.First,
		LastName:    u.Name.Last,
		Phone:       u.Phone,
		Gender:      u.Gender,
		Nationality: u.Nat,
		PictureURL:  u.Picture.Medium,
		Address: entity.Address{
			Street:   fmt.Sprintf("%d %s", u.Location.Street.Number, u.Location.Street.Name),
			City:     u.Location.City,
			State:    u.Location.State,
			Postcode: rawPostcode(u.Location.Postcode),
			Country:  u.Location.Country,
		},
	}

	if u.Dob.Date != "" {
		if dob, err := time.Parse(time.RFC3339, u.Dob.Date); err == nil {
			c.DateOfBirth = &dob
		}
	}

	return c
}

func rawPostcode(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	return strings.Trim(string(raw), `"`)
}
