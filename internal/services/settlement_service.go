// internal/services/settlement_service.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/snapstudio/marketplace-backend/internal/database"
	"github.com/snapstudio/marketplace-backend/internal/models"
	"github.com/snapstudio/marketplace-backend/internal/utils"
)

var (
	PlatformFeeRate = decimal.RequireFromString("0.10")
	hundred         = decimal.NewFromInt(100)
)

// SplitShare is the amount owed to one recipient of a purchase.
type SplitShare struct {
	RecipientID uuid.UUID
	Percentage  decimal.Decimal
	Amount      decimal.Decimal
}

type SettlementBreakdown struct {
	Amount        decimal.Decimal
	PlatformFee   decimal.Decimal
	CreatorAmount decimal.Decimal
	Shares        []SplitShare
}

// CalculateSettlement splits amount between the platform and the recipients.
// The creator amount is the exact complement of the rounded fee, so the two
// always add up to amount. Without splits the creator receives 100%.
// Percentages are used as stored and are not normalized. Shares are rounded
// down to the cent and the leftover cents go to the creator's row, or to the
// first row when the creator holds none, so the shares never sum to more than
// the creator amount.
func CalculateSettlement(amount decimal.Decimal, creatorID uuid.UUID, splits []models.Split) SettlementBreakdown {
	fee := amount.Mul(PlatformFeeRate).Round(2)
	creatorAmount := amount.Sub(fee)

	if len(splits) == 0 {
		splits = []models.Split{{UserID: creatorID, Percentage: hundred}}
	}

	shares := make([]SplitShare, 0, len(splits))
	distributed, allocated := decimal.Zero, decimal.Zero
	residueRow := -1
	for i, split := range splits {
		share := creatorAmount.Mul(split.Percentage).Div(hundred).RoundFloor(2)
		shares = append(shares, SplitShare{
			RecipientID: split.UserID,
			Percentage:  split.Percentage,
			Amount:      share,
		})
		distributed = distributed.Add(share)
		allocated = allocated.Add(split.Percentage)
		if residueRow < 0 && split.UserID == creatorID {
			residueRow = i
		}
	}
	if residueRow < 0 {
		residueRow = 0
	}

	owed := creatorAmount.Mul(decimal.Min(allocated, hundred)).Div(hundred).Round(2)
	if residue := owed.Sub(distributed); residue.IsPositive() {
		shares[residueRow].Amount = shares[residueRow].Amount.Add(residue)
	}

	return SettlementBreakdown{
		Amount:        amount,
		PlatformFee:   fee,
		CreatorAmount: creatorAmount,
		Shares:        shares,
	}
}

type SettlementService struct {
	db *gorm.DB
}

func NewSettlementService(db *gorm.DB) *SettlementService {
	return &SettlementService{db: db}
}

// Purchase settles a purchase of productID by buyer. The transaction,
// entitlement, split payments and audit entry are written atomically.
// Payment is simulated and completes immediately.
func (s *SettlementService) Purchase(ctx context.Context, buyer Identity, productID uuid.UUID) (*models.Transaction, error) {
	if !buyer.Authenticated() {
		return nil, ErrUnauthenticated
	}

	var transaction *models.Transaction
	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Where("id = ?", productID).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return storageError("load product", err)
		}

		if product.CreatorID == buyer.UserID {
			return ErrSelfPurchaseForbidden
		}

		if !product.IsVisible() {
			return ErrNotFound
		}

		var owned int64
		if err := tx.Model(&models.UserPurchase{}).
			Where("user_id = ? AND product_id = ?", buyer.UserID, productID).
			Count(&owned).Error; err != nil {
			return storageError("check entitlement", err)
		}
		if owned > 0 {
			return ErrAlreadyOwned
		}

		var splits []models.Split
		if err := tx.Where("product_id = ?", productID).Order("created_at asc").Find(&splits).Error; err != nil {
			return storageError("load splits", err)
		}

		breakdown := CalculateSettlement(product.Price, product.CreatorID, splits)

		reference, err := utils.GeneratePaymentReference()
		if err != nil {
			return err
		}

		now := time.Now()
		transaction = &models.Transaction{
			BuyerID:          buyer.UserID,
			ProductID:        productID,
			Amount:           breakdown.Amount,
			PlatformFee:      breakdown.PlatformFee,
			CreatorAmount:    breakdown.CreatorAmount,
			PaymentMethod:    models.PaymentMethodSimulated,
			PaymentReference: reference,
			Status:           models.TransactionStatusCompleted,
			CompletedAt:      &now,
		}
		if err := tx.Create(transaction).Error; err != nil {
			return storageError("create transaction", err)
		}

		entitlement := &models.UserPurchase{
			UserID:        buyer.UserID,
			ProductID:     productID,
			TransactionID: transaction.ID,
		}
		if err := tx.Create(entitlement).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrAlreadyOwned
			}
			return storageError("create entitlement", err)
		}

		payments := make([]models.SplitPayment, 0, len(breakdown.Shares))
		for _, share := range breakdown.Shares {
			payments = append(payments, models.SplitPayment{
				TransactionID: transaction.ID,
				RecipientID:   share.RecipientID,
				Amount:        share.Amount,
				Percentage:    share.Percentage,
			})
		}
		if err := tx.Create(&payments).Error; err != nil {
			return storageError("create split payments", err)
		}
		transaction.SplitPayments = payments

		return writeAuditLog(ctx, tx, buyer.UserID, models.AuditActionPurchase, "product", productID, nil, models.JSONB{
			"transaction_id": transaction.ID.String(),
			"amount":         breakdown.Amount.StringFixed(2),
			"platform_fee":   breakdown.PlatformFee.StringFixed(2),
			"creator_amount": breakdown.CreatorAmount.StringFixed(2),
		})
	})
	if err != nil {
		if errors.Is(err, ErrStorageFailure) {
			logrus.WithError(err).WithFields(logrus.Fields{
				"buyer_id":   buyer.UserID,
				"product_id": productID,
			}).Error("Purchase failed")
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"transaction_id": transaction.ID,
		"buyer_id":       buyer.UserID,
		"product_id":     productID,
		"amount":         transaction.Amount.StringFixed(2),
		"recipients":     len(transaction.SplitPayments),
	}).Info("Purchase settled")

	return transaction, nil
}
