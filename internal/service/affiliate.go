package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"

	"github.com/funnelhub/backend/internal/model"
	"github.com/funnelhub/backend/internal/repository"
)

var (
	ErrAffiliateCodeTaken = errors.New("referral code is already taken")
	ErrAffiliateInactive  = errors.New("affiliate is not active")
)

const (
	referralCodeChars     = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	defaultCommissionRate = 0.3
)

type AffiliateService struct {
	repo *repository.Repository
}

func NewAffiliateService(repo *repository.Repository) *AffiliateService {
	return &AffiliateService{repo: repo}
}

func (s *AffiliateService) GetAffiliate(ctx context.Context, id uuid.UUID) (*model.Affiliate, error) {
	return s.repo.GetAffiliate(ctx, id)
}

func (s *AffiliateService) ListAffiliates(ctx context.Context) ([]model.Affiliate, error) {
	return s.repo.ListAffiliates(ctx)
}

// CreateAffiliate registers a referral partner. An empty code gets a random
// one; an explicit code must be unused.
func (s *AffiliateService) CreateAffiliate(ctx context.Context, name string, email, pixKey *string, code string, rate float64) (*model.Affiliate, error) {
	if code == "" {
		generated, err := s.generateCode(ctx)
		if err != nil {
			return nil, err
		}
		code = generated
	} else {
		code = strings.ToUpper(strings.TrimSpace(code))
		if _, err := s.repo.GetAffiliateByCode(ctx, code); err == nil {
			return nil, ErrAffiliateCodeTaken
		} else if !errors.Is(err, repository.ErrAffiliateNotFound) {
			return nil, err
		}
	}

	if rate <= 0 {
		rate = s.repo.SettingFloat(ctx, "default_commission_rate", defaultCommissionRate)
	}

	affiliate := &model.Affiliate{
		Name:           name,
		Email:          email,
		ReferralCode:   code,
		CommissionRate: rate,
		PixKey:         pixKey,
		Status:         model.AffiliateStatusActive,
	}
	if err := s.repo.CreateAffiliate(ctx, affiliate); err != nil {
		return nil, err
	}
	return affiliate, nil
}

func (s *AffiliateService) DeleteAffiliate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetAffiliate(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteAffiliate(ctx, id)
}

// RecordSaleCommission attributes a sale to the affiliate owning the code
// and writes a PENDING commission for their cut. The PENDING -> PAID
// transition happens outside this service.
func (s *AffiliateService) RecordSaleCommission(ctx context.Context, code string, saleAmount float64, saleReference string) (*model.Commission, error) {
	affiliate, err := s.repo.GetAffiliateByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if affiliate.Status != model.AffiliateStatusActive {
		return nil, ErrAffiliateInactive
	}

	commission := &model.Commission{
		AffiliateID:   affiliate.ID,
		Amount:        saleAmount * affiliate.CommissionRate,
		Status:        model.CommissionStatusPending,
		SaleReference: &saleReference,
	}
	if err := s.repo.CreateCommission(ctx, commission); err != nil {
		return nil, err
	}
	return commission, nil
}

func (s *AffiliateService) generateCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code := make([]byte, 8)
		for i := range code {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referralCodeChars))))
			if err != nil {
				return "", err
			}
			code[i] = referralCodeChars[n.Int64()]
		}

		_, err := s.repo.GetAffiliateByCode(ctx, string(code))
		if errors.Is(err, repository.ErrAffiliateNotFound) {
			return string(code), nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("failed to generate a unique referral code")
}
