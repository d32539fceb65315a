// Package promo validates discount codes, applies them to prices and
// records confirmed uses.
package promo

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"studygate-bot/internal/database/models"
	"studygate-bot/internal/database/repositories"
	"studygate-bot/internal/money"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("promo code not found")
	ErrAlreadyUsed = errors.New("promo code already used by this user")
	ErrInactive    = errors.New("promo code is inactive")
	ErrExhausted   = errors.New("promo code reached its usage cap")
	ErrExpired     = errors.New("promo code expired")
	ErrMalformed   = errors.New("promo code has no discount set")
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type Engine struct {
	repo     *repositories.PromoRepository
	currency string
	now      func() time.Time
	log      *zap.Logger
}

func NewEngine(repo *repositories.PromoRepository, currency string, logger *zap.Logger) *Engine {
	return &Engine{
		repo:     repo,
		currency: currency,
		now:      time.Now,
		log:      logger,
	}
}

func (e *Engine) Validate(ctx context.Context, code string) (*models.PromoCode, error) {
	promo, err := e.repo.GetByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return promo, nil
}

// Eligibility runs the per-user checks in a fixed order so the first
// failure always yields the same user-facing reason: already-used, then
// inactive, then exhausted, then expired.
func (e *Engine) Eligibility(ctx context.Context, promo *models.PromoCode, userID int64) error {
	used, err := e.repo.HasUsage(ctx, promo.ID, userID)
	if err != nil {
		return err
	}
	if used {
		return ErrAlreadyUsed
	}

	if !promo.IsActive {
		return ErrInactive
	}

	if promo.MaxUses != nil && promo.UsedCount >= *promo.MaxUses {
		return ErrExhausted
	}

	if promo.ExpiresTS != nil && *promo.ExpiresTS < e.now().Unix() {
		return ErrExpired
	}

	return nil
}

// Apply computes the discounted price. Percentage discounts floor the cut,
// both kinds floor the result at zero. A code with neither discount kind is
// malformed.
func (e *Engine) Apply(priceCents int64, promo *models.PromoCode) (int64, string, error) {
	if promo.DiscountPercent != nil {
		discount := priceCents * int64(*promo.DiscountPercent) / 100
		newPrice := priceCents - discount
		if newPrice < 0 {
			newPrice = 0
		}
		msg := fmt.Sprintf("Промокод %s применен! Скидка %d%%", promo.Code, *promo.DiscountPercent)
		return newPrice, msg, nil
	}

	if promo.DiscountFixedCents != nil {
		newPrice := priceCents - *promo.DiscountFixedCents
		if newPrice < 0 {
			newPrice = 0
		}
		msg := fmt.Sprintf("Промокод %s применен! Скидка %s", promo.Code, money.Format(*promo.DiscountFixedCents, e.currency))
		return newPrice, msg, nil
	}

	return priceCents, "", ErrMalformed
}

// RecordUse marks the code consumed by the user. Called only once payment
// is confirmed; price previews never record usage.
func (e *Engine) RecordUse(ctx context.Context, promoID uint, userID int64) error {
	if err := e.repo.RecordUsage(ctx, promoID, userID); err != nil {
		return err
	}
	e.log.Info("promo code used",
		zap.Uint("promo_id", promoID),
		zap.Int64("user_id", userID),
	)
	return nil
}

// Generate creates a promo code with a unique random code string.
func (e *Engine) Generate(ctx context.Context, promo *models.PromoCode) (*models.PromoCode, error) {
	if promo.DiscountPercent == nil && promo.DiscountFixedCents == nil {
		return nil, ErrMalformed
	}

	if promo.Code == "" {
		for {
			code, err := randomCode(8)
			if err != nil {
				return nil, err
			}
			exists, err := e.repo.CodeExists(ctx, code)
			if err != nil {
				return nil, err
			}
			if !exists {
				promo.Code = code
				break
			}
		}
	}

	if err := e.repo.Create(ctx, promo); err != nil {
		return nil, err
	}
	return promo, nil
}

func randomCode(length int) (string, error) {
	buf := make([]byte, length)
	alphabetLen := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
