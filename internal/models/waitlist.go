package models

import "gorm.io/gorm"

// WaitlistEntry is one durably stored record of a contact's interest.
// Exactly one of Email/Phone is set; each is unique among the rows where
// it is present. Entries are never updated or deleted by the service.
type WaitlistEntry struct {
	gorm.Model
	Email      *string `gorm:"uniqueIndex"`
	Phone      *string `gorm:"uniqueIndex"`
	SourcePage *string
	UserAgent  *string
	IP         *string `gorm:"column:ip"`
}
