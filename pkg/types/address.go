package types

// Address is the shipping destination snapshotted onto an order. Stored as
// jsonb; the order keeps its own copy so later profile edits never rewrite
// history.
type Address struct {
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
	Phone      *string `json:"phone,omitempty"`
}
