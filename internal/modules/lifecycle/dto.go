package lifecycle

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"montafacil/internal/domain"
)

type CreateServiceRequest struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	PostalCode   string    `json:"postal_code"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Price        string    `json:"price"`
	MaterialType string    `json:"material_type"`
	ProjectFiles []string  `json:"project_files"`
}

type ApplyRequest struct {
	Note string `json:"note"`
}

// ServiceListing is an open service annotated for a browsing assembler:
// their own application (if any) and a best-effort distance estimate.
// DistanceApproximate flags a city-centroid fallback so clients can render
// the estimate as approximate instead of trusting it silently.
type ServiceListing struct {
	Service             domain.Service            `json:"service"`
	ApplicationStatus   *domain.ApplicationStatus `json:"application_status,omitempty"`
	DistanceKm          *float64                  `json:"distance_km,omitempty"`
	DistanceApproximate bool                      `json:"distance_approximate,omitempty"`
}

// ParsePrice normalizes locale-formatted amounts ("1.500,00", "R$ 150,00",
// "1500.00") into a canonical decimal. Formatting back to pt-BR strings is
// presentation-edge work and does not belong here.
func ParsePrice(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrValidation
	}

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil || d.Sign() <= 0 {
		return decimal.Zero, ErrValidation
	}
	return d.Round(2), nil
}
