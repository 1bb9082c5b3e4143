package payment

// WebhookPayload is the shape the gateway POSTs on charge status changes.
// "CONCLUIDO" is the terminal paid status.
type WebhookPayload struct {
	ExternalReference string `json:"external_reference"`
	Status            string `json:"status"`
	Amount            string `json:"amount"`
	GatewayID         string `json:"gateway_id"`
	ReceiptURL        string `json:"receipt_url,omitempty"`
}

type CreateChargeResponse struct {
	Reference string `json:"payment_reference"`
	Code      string `json:"code"`
	QRCode    string `json:"qr_code"`
	GatewayID string `json:"gateway_id"`
}

type ProofRequest struct {
	Content  string `json:"content"`
	ProofURL string `json:"proof_url"`
}

type DecisionRequest struct {
	Approved bool   `json:"approved"`
	Note     string `json:"note"`
}
