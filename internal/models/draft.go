package models

import (
	"time"

	"github.com/google/uuid"
)

// PetitionDraft is a composed petition kept for later download.
// Nullable columns use pointers to distinguish between empty and NULL.
type PetitionDraft struct {
	CreatedAt         time.Time `json:"created_at"`
	ParcelNumber      *string   `json:"parcel_number,omitempty"`
	Address           *string   `json:"address,omitempty"`
	AreaCode          string    `json:"area_code"`
	Petition          string    `json:"petition"`
	AssessedValue     int64     `json:"assessed_value"`
	RecommendedValue  int64     `json:"recommended_value"`
	ID                uuid.UUID `json:"id"`
	AppealRecommended bool      `json:"appeal_recommended"`
}

// TableName is the table drafts are stored in.
func (PetitionDraft) TableName() string {
	return "appeal_drafts"
}
