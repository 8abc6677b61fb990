package request

// ApplyTransactionRequest carries a buy or sell intent. Quantity and price
// are decimal strings so values never pass through binary floating point.
type ApplyTransactionRequest struct {
	Symbol   string `json:"symbol"`
	Side     string `json:"side"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
	Date     string `json:"date"`
	Comment  string `json:"comment,omitempty"`
}
