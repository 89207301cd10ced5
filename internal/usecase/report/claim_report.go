package report

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
)

type ClaimReportUseCase struct {
	agents repository.AgentRepository
	tr     transitioner
}

func NewClaimReportUseCase(reports repository.FoodReportRepository, agents repository.AgentRepository, opts Options) *ClaimReportUseCase {
	return &ClaimReportUseCase{
		agents: agents,
		tr:     transitioner{reports: reports, opts: opts.withDefaults()},
	}
}

// Execute назначает отчёт курьеру. Из нескольких одновременных вызовов успешен
// ровно один, остальные получают CLAIM_CONFLICT.
func (uc *ClaimReportUseCase) Execute(ctx context.Context, reportID, agentID uuid.UUID) (*entity.FoodReport, error) {
	agent, err := uc.agents.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if !agent.Active {
		return nil, apperror.ErrAgentInactive
	}

	res, err := uc.tr.run(ctx, reportID, "claim", func(r *entity.FoodReport) (*entity.Transition, error) {
		return r.Claim(agentID)
	})
	if err != nil {
		return nil, err
	}
	return res.report, nil
}
