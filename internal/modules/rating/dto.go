package rating

import "montafacil/internal/domain"

type SubmitRequest struct {
	Score       int    `json:"score"`
	Comment     string `json:"comment"`
	Punctuality *int   `json:"punctuality,omitempty"`
	Quality     *int   `json:"quality,omitempty"`
	Compliance  *int   `json:"compliance,omitempty"`
}

// SubmitResult carries the stored rating together with the refreshed
// service, so the caller can see whether both sides have now rated.
type SubmitResult struct {
	Rating  *domain.Rating  `json:"rating"`
	Service *domain.Service `json:"service"`
}
