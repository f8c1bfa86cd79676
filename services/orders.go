package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"faberlic-mining/models"
	"faberlic-mining/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	MaxOffersPerListing = 3
	RejectWaitSeconds   = 60
)

type Product struct {
	Name      string
	BasePrice decimal.Decimal
	Category  string
}

var ProductCatalog = []Product{
	{"Faberlic Expert Pharma Krem", decimal.RequireFromString("45.99"), "Kosmetika"},
	{"Oriflame The ONE Ruj", decimal.RequireFromString("18.50"), "Makeup"},
	{"Faberlic Oxygen Serum", decimal.RequireFromString("67.00"), "Dəri Baxımı"},
	{"Oriflame Eclat Parfüm", decimal.RequireFromString("89.99"), "Parfüm"},
	{"Faberlic Fitness Body Krem", decimal.RequireFromString("32.50"), "Bədən Baxımı"},
	{"Oriflame Giordani Gold Parfüm", decimal.RequireFromString("125.00"), "Parfüm"},
	{"Faberlic Expert Pharma Şampun", decimal.RequireFromString("28.75"), "Saç Baxımı"},
	{"Oriflame NovAge Serum", decimal.RequireFromString("95.50"), "Dəri Baxımı"},
	{"Faberlic Home Aromatherapy", decimal.RequireFromString("41.25"), "Ev üçün"},
	{"Oriflame The ONE İllumina", decimal.RequireFromString("22.99"), "Makeup"},
}

// ObjectStore archives rendered QR images and returns a public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type OrderService struct {
	DB       *gorm.DB
	ledger   *Ledger
	rng      RandomSource
	OfferTTL time.Duration
	Store    ObjectStore // optional
	RenderQR func(payload string) ([]byte, error)
}

func NewOrderService(ledger *Ledger, rng RandomSource, offerTTL time.Duration, store ObjectStore) *OrderService {
	if rng == nil {
		rng = NewRandomSource()
	}
	if offerTTL <= 0 {
		offerTTL = 10 * time.Minute
	}
	return &OrderService{
		DB:       ledger.DB,
		ledger:   ledger,
		rng:      rng,
		OfferTTL: offerTTL,
		Store:    store,
		RenderQR: utils.RenderQRCode,
	}
}

type OrderOffer struct {
	ID           string          `json:"id"`
	ProductName  string          `json:"product_name"`
	ProductCode  string          `json:"product_code"`
	ProductPrice decimal.Decimal `json:"product_price"`
	Cashback     decimal.Decimal `json:"cashback"`
	Category     string          `json:"category"`
	QRCode       string          `json:"qr_code"`
	QRURL        string          `json:"qr_url,omitempty"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

type OrderListing struct {
	Orders        []OrderOffer     `json:"orders"`
	Message       string           `json:"message,omitempty"`
	DailyEarnings *decimal.Decimal `json:"daily_earnings,omitempty"`
	MaxEarnings   *decimal.Decimal `json:"max_earnings,omitempty"`
}

type AcceptResult struct {
	Cashback      decimal.Decimal `json:"cashback"`
	NewBalance    decimal.Decimal `json:"new_balance"`
	DailyEarnings decimal.Decimal `json:"daily_earnings"`
}

type RejectResult struct {
	WaitSeconds int `json:"wait_time"`
}

// QRPayload is the text encoded into each offer's QR code.
func QRPayload(orderID, productCode string, price, cashback decimal.Decimal) string {
	return fmt.Sprintf("ORDER:%s|PRODUCT:%s|PRICE:%s|CASHBACK:%s", orderID, productCode, price.StringFixed(2), cashback.StringFixed(2))
}

// ListAvailable issues a fresh batch of offers for the caller. Outstanding
// offers from earlier listings are expired first, and the batch never
// promises more cashback than the tier's remaining daily allowance.
func (s *OrderService) ListAvailable(ctx context.Context, userID string) (*OrderListing, error) {
	listing := &OrderListing{Orders: []OrderOffer{}}
	var issued []models.Order

	err := s.ledger.WithAccount(ctx, userID, func(tx *gorm.DB, acct *models.Account) error {
		if acct.VIPLevel == 0 {
			listing.Message = "You have no VIP level yet. Make a deposit to unlock orders."
			return nil
		}
		tier, err := tierByLevel(tx, acct.VIPLevel)
		if errors.Is(err, ErrTierNotFound) {
			listing.Message = "VIP level details not found."
			return nil
		}
		if err != nil {
			return err
		}

		now := s.ledger.Now()
		if _, err := applyDailyReset(tx, acct, now); err != nil {
			return err
		}

		daily := acct.DailyEarnings
		maxDaily := tier.MaxDailyEarnings
		listing.DailyEarnings = &daily
		listing.MaxEarnings = &maxDaily

		remaining := tier.MaxDailyEarnings.Sub(acct.DailyEarnings)
		if !remaining.IsPositive() {
			listing.Message = "Daily earnings limit reached."
			return nil
		}

		var acceptedToday int64
		if err := tx.Model(&models.Order{}).
			Where("user_id = ? AND status = ? AND completed_at >= ?", userID, models.OrderCompleted, StartOfDay(now)).
			Count(&acceptedToday).Error; err != nil {
			return err
		}
		slots := tier.OrdersPerDay - int(acceptedToday)
		if slots > MaxOffersPerListing {
			slots = MaxOffersPerListing
		}
		if slots <= 0 {
			listing.Message = "Daily order quota reached."
			return nil
		}

		if err := tx.Model(&models.Order{}).
			Where("user_id = ? AND status = ?", userID, models.OrderOffered).
			Update("status", models.OrderExpired).Error; err != nil {
			return err
		}

		cashback := tier.CommissionPerOrder
		promised := decimal.Zero
		for i := 0; i < slots; i++ {
			if promised.Add(cashback).GreaterThan(remaining) {
				break
			}
			order := s.newOffer(userID, cashback, now)
			if err := tx.Create(&order).Error; err != nil {
				return fmt.Errorf("store order offer: %w", err)
			}
			issued = append(issued, order)
			promised = promised.Add(cashback)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range issued {
		offer, err := s.present(ctx, &issued[i])
		if err != nil {
			return nil, err
		}
		listing.Orders = append(listing.Orders, offer)
	}
	return listing, nil
}

func (s *OrderService) newOffer(userID string, cashback decimal.Decimal, now time.Time) models.Order {
	product := ProductCatalog[s.rng.Intn(len(ProductCatalog))]
	factor := decimal.NewFromFloat(0.9 + s.rng.Float64()*0.3)
	price := product.BasePrice.Mul(factor).Round(2)
	code := utils.ProductCode(product.Category, 10000+s.rng.Intn(90000))
	id := uuid.NewString()

	return models.Order{
		ID:           id,
		UserID:       userID,
		ProductName:  product.Name,
		ProductCode:  code,
		Category:     product.Category,
		ProductPrice: price,
		Cashback:     cashback,
		QRPayload:    QRPayload(id, code, price, cashback),
		Status:       models.OrderOffered,
		ExpiresAt:    now.Add(s.OfferTTL),
		CreatedAt:    now,
	}
}

// present renders the QR image and, when a store is configured, archives
// it. Archival failures only cost the offer its qr_url.
func (s *OrderService) present(ctx context.Context, order *models.Order) (OrderOffer, error) {
	png, err := s.RenderQR(order.QRPayload)
	if err != nil {
		return OrderOffer{}, err
	}

	if s.Store != nil {
		url, err := s.Store.Put(ctx, "orders/qr/"+order.ID+".png", png, "image/png")
		if err != nil {
			log.WithError(err).WithField("order_id", order.ID).Warn("QR archival failed")
		} else {
			order.QRURL = url
			if err := s.DB.WithContext(ctx).Model(order).Update("qr_url", url).Error; err != nil {
				log.WithError(err).WithField("order_id", order.ID).Warn("failed to store QR url")
			}
		}
	}

	return OrderOffer{
		ID:           order.ID,
		ProductName:  order.ProductName,
		ProductCode:  order.ProductCode,
		ProductPrice: order.ProductPrice,
		Cashback:     order.Cashback,
		Category:     order.Category,
		QRCode:       utils.PNGDataBase64(png),
		QRURL:        order.QRURL,
		ExpiresAt:    order.ExpiresAt,
	}, nil
}

// Accept completes an unexpired offer owned by the caller and credits its
// cashback, provided it still fits the tier's daily cap.
func (s *OrderService) Accept(ctx context.Context, userID, orderID string) (*AcceptResult, error) {
	var result *AcceptResult
	err := s.ledger.WithAccount(ctx, userID, func(tx *gorm.DB, acct *models.Account) error {
		var order models.Order
		if err := forUpdate(tx).First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if order.UserID != userID {
			return ErrOrderNotFound
		}
		if order.Status == models.OrderCompleted {
			return ErrDuplicateOrder
		}

		now := s.ledger.Now()
		if order.Status != models.OrderOffered || !now.Before(order.ExpiresAt) {
			return ErrOfferExpired
		}

		tier, err := tierByLevel(tx, acct.VIPLevel)
		if err != nil {
			return err
		}
		if _, err := applyDailyReset(tx, acct, now); err != nil {
			return err
		}
		if acct.DailyEarnings.Add(order.Cashback).GreaterThan(tier.MaxDailyEarnings) {
			return ErrDailyLimitReached
		}

		order.Status = models.OrderCompleted
		order.CompletedAt = &now
		if err := tx.Model(&order).Updates(map[string]interface{}{
			"status":       order.Status,
			"completed_at": order.CompletedAt,
		}).Error; err != nil {
			return err
		}

		if _, err := s.ledger.Accrue(tx, acct, models.TransactionOrder, order.Cashback, true); err != nil {
			return err
		}
		result = &AcceptResult{Cashback: order.Cashback, NewBalance: acct.Balance, DailyEarnings: acct.DailyEarnings}
		return nil
	})
	return result, err
}

// Reject never mutates state; the client waits RejectWaitSeconds before
// asking for new offers.
func (s *OrderService) Reject(ctx context.Context, userID, orderID string) (*RejectResult, error) {
	return &RejectResult{WaitSeconds: RejectWaitSeconds}, nil
}

// ExpireStaleOffers marks offers past their deadline as expired.
func (s *OrderService) ExpireStaleOffers(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&models.Order{}).
		Where("status = ? AND expires_at <= ?", models.OrderOffered, s.ledger.Now()).
		Update("status", models.OrderExpired)
	return res.RowsAffected, res.Error
}
