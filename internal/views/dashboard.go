package views

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/pacer/internal/async"
)

// Dashboard is the first screenful of data: pacing, cash flow, spending
// summary and creep. Each part carries its own error so one failing
// endpoint does not blank the others.
type Dashboard struct {
	Pacing   async.State[PacingModel]          `json:"pacing"`
	CashFlow async.State[CashFlowModel]        `json:"cash_flow"`
	Spending async.State[SpendingSummaryModel] `json:"spending"`
	Creep    async.State[CreepModel]           `json:"creep"`
}

// FirstError returns the first part error, in display order.
func (d Dashboard) FirstError() error {
	for _, err := range []error{d.Pacing.Err(), d.CashFlow.Err(), d.Spending.Err(), d.Creep.Err()} {
		if err != nil {
			return err
		}
	}
	return nil
}

// LoadDashboard fetches all dashboard parts concurrently. The returned error
// is only set when ctx ends first; backend failures live in the parts.
func LoadDashboard(ctx context.Context, src Source, o Options, periodType string) (Dashboard, error) {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		q := NewPacing(src, o)
		defer q.Close()
		var err error
		d.Pacing, err = q.Load(gctx)
		return err
	})
	g.Go(func() error {
		q := NewCashFlow(src, o)
		defer q.Close()
		var err error
		d.CashFlow, err = q.Load(gctx)
		return err
	})
	g.Go(func() error {
		q := NewSpendingSummary(src, o, periodType)
		defer q.Close()
		var err error
		d.Spending, err = q.Load(gctx)
		return err
	})
	g.Go(func() error {
		q := NewCreep(src, o)
		defer q.Close()
		var err error
		d.Creep, err = q.Load(gctx)
		return err
	})

	err := g.Wait()
	return d, err
}
