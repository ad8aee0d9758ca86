package record

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	SourceClient  = "client"
	SourceWebhook = "webhook"
)

// PaymentRecord is the audit row written after fan-out has been attempted.
type PaymentRecord struct {
	ID          snowflake.ID   `json:"id" gorm:"primaryKey"`
	Reference   string         `json:"reference" gorm:"type:text;not null;index"`
	Email       string         `json:"email" gorm:"type:text;not null"`
	FullName    string         `json:"full_name" gorm:"type:text"`
	AmountMinor int64          `json:"amount_minor" gorm:"not null"`
	Currency    string         `json:"currency" gorm:"type:text"`
	GCLID       string         `json:"gclid" gorm:"type:text"`
	Country     string         `json:"country" gorm:"type:text"`
	Source      string         `json:"source" gorm:"type:text;not null"`
	Report      datatypes.JSON `json:"report"`
	ReceivedAt  time.Time      `json:"received_at" gorm:"not null"`
	ProcessedAt time.Time      `json:"processed_at" gorm:"not null"`
}

func (PaymentRecord) TableName() string { return "payment_records" }
