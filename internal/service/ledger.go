package service

import (
	"context"
	"errors"
	"log"
	"sort"

	"github.com/google/uuid"

	"github.com/funnelhub/backend/internal/model"
	"github.com/funnelhub/backend/internal/repository"
)

var ErrInvalidAmount = errors.New("amount must be positive")

const (
	commissionDescription = "Comissão de Venda"
	payoutDescription     = "Pagamento Enviado"
)

// LedgerService derives an affiliate's earned total, paid-out total, net
// balance and statement. Nothing here is persisted: every view is recomputed
// from the commission and payout rows.
type LedgerService struct {
	repo *repository.Repository
}

func NewLedgerService(repo *repository.Repository) *LedgerService {
	return &LedgerService{repo: repo}
}

func (s *LedgerService) GetLedger(ctx context.Context, affiliateID uuid.UUID) (*model.LedgerView, error) {
	affiliate, err := s.repo.GetAffiliate(ctx, affiliateID)
	if err != nil {
		return nil, err
	}

	commissions, err := s.repo.GetPaidCommissions(ctx, affiliateID)
	if err != nil {
		return nil, err
	}
	payouts, err := s.repo.GetPayouts(ctx, affiliateID)
	if err != nil {
		return nil, err
	}

	totalCommission := SumCommissions(commissions)
	totalPayouts := SumPayoutAmounts(payouts)

	return &model.LedgerView{
		Affiliate:       affiliate,
		TotalCommission: totalCommission,
		TotalPayouts:    totalPayouts,
		Balance:         totalCommission - totalPayouts,
		Statement:       BuildStatement(commissions, payouts),
	}, nil
}

// CreatePayout records a manual payment. There is deliberately no overdraft
// guard: whether a payout may exceed the current balance is an open product
// decision, so the insert mirrors today's behavior and only logs when the
// balance goes negative.
func (s *LedgerService) CreatePayout(ctx context.Context, affiliateID uuid.UUID, amount float64, notes *string) (*model.Payout, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	if _, err := s.repo.GetAffiliate(ctx, affiliateID); err != nil {
		return nil, err
	}

	payout := &model.Payout{
		AffiliateID: affiliateID,
		Amount:      amount,
		Notes:       notes,
	}
	if err := s.repo.CreatePayout(ctx, payout); err != nil {
		return nil, err
	}

	earned, err := s.repo.SumPaidCommissions(ctx, affiliateID)
	if err == nil {
		paid, err := s.repo.SumPayouts(ctx, affiliateID)
		if err == nil && earned-paid < 0 {
			log.Printf("WARNING: affiliate %s balance is negative after payout %s (%.2f)", affiliateID, payout.ID, earned-paid)
		}
	}

	return payout, nil
}

func (s *LedgerService) GetCommissions(ctx context.Context, affiliateID uuid.UUID) ([]model.Commission, error) {
	if _, err := s.repo.GetAffiliate(ctx, affiliateID); err != nil {
		return nil, err
	}
	return s.repo.GetCommissions(ctx, affiliateID)
}

// SumCommissions totals the amounts of the given rows. Callers pass PAID
// rows only; PENDING commissions never count toward the earned total.
func SumCommissions(commissions []model.Commission) float64 {
	var total float64
	for _, c := range commissions {
		if c.Status == model.CommissionStatusPaid {
			total += c.Amount
		}
	}
	return total
}

func SumPayoutAmounts(payouts []model.Payout) float64 {
	var total float64
	for _, p := range payouts {
		total += p.Amount
	}
	return total
}

// BuildStatement merges paid commissions (credits) and payouts (debits) into
// one chronological statement, newest first.
func BuildStatement(commissions []model.Commission, payouts []model.Payout) []model.LedgerEntry {
	entries := make([]model.LedgerEntry, 0, len(commissions)+len(payouts))

	for _, c := range commissions {
		if c.Status != model.CommissionStatusPaid {
			continue
		}
		entries = append(entries, model.LedgerEntry{
			ID:          c.ID,
			Kind:        model.LedgerEntryCommission,
			Description: commissionDescription,
			Amount:      c.Amount,
			Date:        c.CreatedAt,
		})
	}
	for _, p := range payouts {
		entries = append(entries, model.LedgerEntry{
			ID:          p.ID,
			Kind:        model.LedgerEntryPayout,
			Description: payoutDescription,
			Amount:      -p.Amount,
			Date:        p.CreatedAt,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})

	return entries
}
