package usecase

// SyncTaskPayload é a mensagem que trafega na fila. O JobID dobra como
// chave de idempotência da task (MessageId no broker).
type SyncTaskPayload struct {
	JobID     string `json:"job_id"`
	Source    string `json:"source"`
	BatchSize int    `json:"batch_size"`
}

type CreateLeadInput struct {
	Email      string         `json:"email"`
	FirstName  string         `json:"first_name"`
	LastName   string         `json:"last_name"`
	Phone      string         `json:"phone"`
	Street     string         `json:"street"`
	City       string         `json:"city"`
	State      string         `json:"state"`
	Postcode   string         `json:"postcode"`
	Country    string         `json:"country"`
	ExternalID string         `json:"external_id"`
	Metadata   map[string]any `json:"metadata"`
}

type UpdateLeadInput struct {
	Status     *string        `json:"status"`
	Email      *string        `json:"email"`
	ExternalID *string        `json:"external_id"`
	Metadata   map[string]any `json:"metadata"`
}

type FindLeadsOptions struct {
	Skip   int
	Take   int
	Status string
	Search string
}

type LeadStats struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	Contacted int `json:"contacted"`
	Converted int `json:"converted"`
}

type SummaryInput struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Location   string
	Profession string
	Source     string
}

type LeadSummary struct {
	Summary    string `json:"summary"`
	NextAction string `json:"next_action"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginOutput struct {
	AccessToken string `json:"access_token"`
}
