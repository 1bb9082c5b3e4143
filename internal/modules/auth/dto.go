package auth

type RegisterStoreRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone"`

	StoreName    string   `json:"store_name" validate:"required"`
	DocumentType string   `json:"document_type" validate:"required,oneof=cpf cnpj"`
	Document     string   `json:"document" validate:"required"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	PostalCode   string   `json:"postal_code"`
	Specialties  []string `json:"specialties"`
}

type RegisterAssemblerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone"`

	Document      string   `json:"document" validate:"required"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	PostalCode    string   `json:"postal_code"`
	Specialties   []string `json:"specialties"`
	ServiceRadius float64  `json:"service_radius_km"`
	DocumentURLs  []string `json:"document_urls"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type BankAccountRequest struct {
	BankName      string `json:"bank_name" validate:"required"`
	Agency        string `json:"agency"`
	AccountNumber string `json:"account_number"`
	DocumentType  string `json:"document_type" validate:"omitempty,oneof=cpf cnpj"`
	Document      string `json:"document" validate:"required"`
	PixKey        string `json:"pix_key" validate:"required"`
}
