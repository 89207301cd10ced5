package report

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
	"github.com/ignatzorin/foodrescue-backend/internal/logger"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
)

const expireBatchSize = 200

type ExpireReportsUseCase struct {
	reports repository.FoodReportRepository
	tr      transitioner
}

func NewExpireReportsUseCase(reports repository.FoodReportRepository, opts Options) *ExpireReportsUseCase {
	opts = opts.withDefaults()
	return &ExpireReportsUseCase{reports: reports, tr: transitioner{reports: reports, opts: opts}}
}

// Execute отменяет свободные отчёты с истёкшим сроком годности и возвращает их количество.
// Отчёт, который успели взять параллельно, пропускается.
func (uc *ExpireReportsUseCase) Execute(ctx context.Context) (int, error) {
	now := uc.tr.opts.Clock()
	candidates, err := uc.reports.ListAvailable(ctx, repository.AvailableFilter{
		ExpiredBefore: &now,
		Limit:         expireBatchSize,
	})
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, candidate := range candidates {
		res, err := uc.tr.run(ctx, candidate.ID, "expire", func(r *entity.FoodReport) (*entity.Transition, error) {
			return r.Expire(now)
		})
		switch {
		case err == nil && res.changed:
			expired++
		case err == nil, apperror.IsInvalidTransition(err), apperror.IsClaimConflict(err):
		default:
			logger.Log.WithFields(logrus.Fields{"report_id": candidate.ID}).WithError(err).
				Warn("не удалось списать просроченный отчёт")
			if ctx.Err() != nil {
				return expired, ctx.Err()
			}
		}
	}
	return expired, nil
}
