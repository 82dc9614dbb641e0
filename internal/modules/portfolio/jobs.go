package portfolio

import (
	"context"

	"github.com/rs/zerolog"
)

// PriceRefreshJob refreshes last prices on a schedule. The run deadline comes
// from the scheduler's context.
type PriceRefreshJob struct {
	service *Service
	log     zerolog.Logger
}

// NewPriceRefreshJob creates a scheduled price refresh job
func NewPriceRefreshJob(service *Service, log zerolog.Logger) *PriceRefreshJob {
	return &PriceRefreshJob{
		service: service,
		log:     log.With().Str("job", "price_refresh").Logger(),
	}
}

// Name implements scheduler.Job
func (j *PriceRefreshJob) Name() string {
	return "price_refresh"
}

// Run implements scheduler.Job
func (j *PriceRefreshJob) Run(ctx context.Context) error {
	updated, failed, err := j.service.RefreshPrices(ctx)
	if err != nil {
		return err
	}

	j.log.Info().
		Int("updated", updated).
		Int("failed", failed).
		Msg("Scheduled price refresh finished")

	return nil
}
