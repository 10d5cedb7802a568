package service

import (
	"context"
	"log"
	"time"

	"github.com/funnelhub/backend/internal/config"
)

// ReconcileWorker periodically runs the billing reconcile sweep so a crash
// between the subscription and plan writes cannot leave a profile on the
// wrong tier forever.
type ReconcileWorker struct {
	billingSvc *BillingService
}

func NewReconcileWorker(billingSvc *BillingService) *ReconcileWorker {
	return &ReconcileWorker{billingSvc: billingSvc}
}

// Start begins the background worker
func (w *ReconcileWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(config.ReconcileInterval)
	defer ticker.Stop()

	log.Println("[Reconcile Worker] Started, sweeping every", config.ReconcileInterval)

	for {
		select {
		case <-ctx.Done():
			log.Println("[Reconcile Worker] Stopped")
			return
		case <-ticker.C:
			repaired, err := w.billingSvc.Reconcile(ctx)
			if err != nil {
				log.Printf("[Reconcile Worker] Sweep error: %v", err)
				continue
			}
			if repaired > 0 {
				log.Printf("[Reconcile Worker] Repaired %d profile plans", repaired)
			}
		}
	}
}
