package waitlist

import (
	"github.com/meetcasa/casa-waitlist-api/internal/models"
	"github.com/meetcasa/casa-waitlist-api/pkg/constants"
	"github.com/meetcasa/casa-waitlist-api/pkg/contact"
)

type JoinWaitlistRequest struct {
	Contact    string `json:"contact" binding:"required,max=255"`
	Type       string `json:"type" binding:"required,oneof=email phone"`
	SourcePage string `json:"sourcePage" binding:"omitempty,max=255"`
}

// RequestMetadata carries provenance captured by the transport layer.
// Empty fields are stored as NULL.
type RequestMetadata struct {
	UserAgent string
	IP        string
}

type WaitlistEntryResponse struct {
	ID         uint   `json:"id"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	SourcePage string `json:"source_page,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// ========================================
// Mappers
// ========================================

func ToWaitlistEntryModel(normalized contact.Normalized, sourcePage string, meta RequestMetadata) *models.WaitlistEntry {
	return &models.WaitlistEntry{
		Email:      optionalString(normalized.Email),
		Phone:      optionalString(normalized.Phone),
		SourcePage: optionalString(sourcePage),
		UserAgent:  optionalString(meta.UserAgent),
		IP:         optionalString(meta.IP),
	}
}

func ToWaitlistEntryResponse(entry *models.WaitlistEntry) WaitlistEntryResponse {
	if entry == nil {
		return WaitlistEntryResponse{}
	}
	return WaitlistEntryResponse{
		ID:         entry.ID,
		Email:      stringValue(entry.Email),
		Phone:      stringValue(entry.Phone),
		SourcePage: stringValue(entry.SourcePage),
		CreatedAt:  entry.CreatedAt.Format(constants.RFC3339DateTimeFormat),
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
