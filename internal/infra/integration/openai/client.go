package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xavierca1/contactship-crm/internal/usecase"
)

const systemPrompt = `You are a CRM assistant. Given a lead profile, respond with a JSON object
containing exactly two string fields: "summary" (a concise summary of the lead
highlighting key professional and personal characteristics) and "next_action"
(a specific, actionable next step for engagement and follow-up).`

// Client fala com qualquer API compatível com chat-completions e devolve o
// par {summary, next_action} do lead.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

func NewClient(apiKey, baseURL, model string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) GenerateLeadSummary(ctx context.Context, input usecase.SummaryInput) (*usecase.LeadSummary, error) {
	payload := chatRequest{
		Model:       c.model,
		Temperature: 0.3,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildLeadContext(input)},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("erro ao marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro request openai: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, string(body))
	}

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("erro decode openai: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("openai respondeu sem choices")
	}

	var summary usecase.LeadSummary
	if err := json.Unmarshal([]byte(response.Choices[0].Message.Content), &summary); err != nil {
		return nil, fmt.Errorf("resposta do modelo não é o JSON esperado: %w", err)
	}

	return &summary, nil
}

func buildLeadContext(input usecase.SummaryInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Lead: %s %s <%s>\n", input.FirstName, input.LastName, input.Email)
	if input.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", input.Phone)
	}
	if input.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", input.Location)
	}
	if input.Profession != "" {
		fmt.Fprintf(&b, "Profession: %s\n", input.Profession)
	}

	// A origem muda o tom do follow-up sugerido
	if input.Source == "manual" {
		b.WriteString("This lead was entered manually by our sales team; the prospect has already shown interest.\n")
	} else {
		b.WriteString("This lead was imported automatically from an external data source; this is a cold prospect.\n")
	}

	return b.String()
}
