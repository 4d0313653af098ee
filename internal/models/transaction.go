// internal/models/transaction.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction records a settled purchase. Everything except Status is
// immutable once written.
type Transaction struct {
	RecordModel
	BuyerID          uuid.UUID         `json:"buyer_id" gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID         `json:"product_id" gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal   `json:"amount" gorm:"type:decimal(10,2);not null"`
	PlatformFee      decimal.Decimal   `json:"platform_fee" gorm:"type:decimal(10,2);not null"`
	CreatorAmount    decimal.Decimal   `json:"creator_amount" gorm:"type:decimal(10,2);not null"`
	PaymentMethod    string            `json:"payment_method" gorm:"size:50"`
	PaymentReference string            `json:"payment_reference" gorm:"size:255"`
	Status           TransactionStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	CompletedAt      *time.Time        `json:"completed_at"`

	// Relationships
	Buyer         *Profile       `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Product       *Product       `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	SplitPayments []SplitPayment `json:"split_payments,omitempty" gorm:"foreignKey:TransactionID"`
}

// SplitPayment is the realized amount owed to one recipient for one
// transaction.
type SplitPayment struct {
	RecordModel
	TransactionID uuid.UUID       `json:"transaction_id" gorm:"type:uuid;not null;index"`
	RecipientID   uuid.UUID       `json:"recipient_id" gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Percentage    decimal.Decimal `json:"percentage" gorm:"type:decimal(5,2);not null"`

	// Relationships
	Transaction *Transaction `json:"transaction,omitempty" gorm:"foreignKey:TransactionID"`
	Recipient   *Profile     `json:"-" gorm:"foreignKey:RecipientID"`
}

// UserPurchase is the entitlement created by a purchase. The composite
// unique index is what makes a second purchase of the same product fail.
type UserPurchase struct {
	RecordModel
	UserID        uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_purchases_user_product"`
	ProductID     uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_purchases_user_product;index"`
	TransactionID uuid.UUID `json:"transaction_id" gorm:"type:uuid;not null;index"`

	// Relationships
	User        *Profile     `json:"-" gorm:"foreignKey:UserID"`
	Product     *Product     `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Transaction *Transaction `json:"transaction,omitempty" gorm:"foreignKey:TransactionID"`
}
