package dto

import (
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// AreaRequest payload for create/update.
type AreaRequest struct {
	Name string `json:"name"`
}

// AreaResponse is the wire view of an area.
type AreaResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAreaResponse maps a domain area.
func NewAreaResponse(area *domain.Area) AreaResponse {
	return AreaResponse{
		ID:        area.ID,
		Name:      area.Name,
		CreatedAt: area.CreatedAt,
		UpdatedAt: area.UpdatedAt,
	}
}
