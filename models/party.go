package models

// Party is a company tuple from the registry collaborator. The same party
// may be sampled repeatedly so grouped invoices can share one client.
type Party struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	VatID       string `json:"vat_id"`
	BankAccount string `json:"bank_account"`
	Sector      string `json:"sector"`
}
