package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
	"github.com/ignatzorin/foodrescue-backend/internal/dto"
	"github.com/ignatzorin/foodrescue-backend/internal/http/handlers/common"
	"github.com/ignatzorin/foodrescue-backend/internal/http/response"
	"github.com/ignatzorin/foodrescue-backend/internal/logger"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
	"github.com/ignatzorin/foodrescue-backend/internal/usecase/profile"
	"github.com/ignatzorin/foodrescue-backend/internal/usecase/report"
)

// ReportUseCases - операции жизненного цикла заявки, доступные через HTTP.
type ReportUseCases struct {
	Create        *report.CreateReportUseCase
	Get           *report.GetReportUseCase
	ListAvailable *report.ListAvailableUseCase
	ListMine      *report.ListMyReportsUseCase
	Claim         *report.ClaimReportUseCase
	MarkPicked    *report.MarkPickedUseCase
	MarkDelivered *report.MarkDeliveredUseCase
	Cancel        *report.CancelReportUseCase
	AgentProfile  *profile.GetAgentProfileUseCase
}

type ReportHandler struct {
	uc  ReportUseCases
	now func() time.Time
}

func NewReportHandler(uc ReportUseCases) *ReportHandler {
	return &ReportHandler{uc: uc, now: func() time.Time { return time.Now().UTC() }}
}

// Create обрабатывает POST /api/reports.
func (h *ReportHandler) Create(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	var req dto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, common.BindError(err))
		return
	}

	created, err := h.uc.Create.Execute(c.Request.Context(), req.ToInput(actor.UserID))
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Created(c, dto.ToReportResponse(created, h.now()))
}

// Get обрабатывает GET /api/reports/:id.
func (h *ReportHandler) Get(c *gin.Context) {
	reportID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.Fail(c, err)
		return
	}

	r, err := h.uc.Get.Execute(c.Request.Context(), reportID)
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Success(c, dto.ToReportResponse(r, h.now()))
}

// ListAvailable обрабатывает GET /api/reports/available?lat&lng&zone&category&limit.
func (h *ReportHandler) ListAvailable(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	input, err := h.availableInput(c, actor)
	if err != nil {
		common.Fail(c, err)
		return
	}

	ranked, err := h.uc.ListAvailable.Execute(c.Request.Context(), input)
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Success(c, dto.FromRankedList(ranked))
}

func (h *ReportHandler) availableInput(c *gin.Context, actor entity.Actor) (report.ListAvailableInput, error) {
	input := report.ListAvailableInput{
		Zone:  c.Query("zone"),
		Limit: common.ParseIntQuery(c, "limit", 0),
	}

	if raw := c.Query("category"); raw != "" {
		category, err := valueobject.NewFoodCategory(raw)
		if err != nil {
			return input, err
		}
		input.Category = category
	}

	lat, err := common.ParseFloatQuery(c, "lat")
	if err != nil {
		return input, err
	}
	lng, err := common.ParseFloatQuery(c, "lng")
	if err != nil {
		return input, err
	}
	if lat != nil && lng != nil {
		origin, err := valueobject.NewGeoPoint(*lat, *lng)
		if err != nil {
			return input, err
		}
		input.Origin = &origin
	}

	if input.Zone == "" && actor.Role == valueobject.RoleAgent {
		input.Zone = h.agentZone(c.Request.Context(), actor.UserID)
	}
	return input, nil
}

// agentZone возвращает зону курьера из профиля. Без профиля фильтр по зоне не применяется.
func (h *ReportHandler) agentZone(ctx context.Context, agentID uuid.UUID) string {
	if h.uc.AgentProfile == nil {
		return ""
	}
	agent, err := h.uc.AgentProfile.Execute(ctx, agentID)
	if err != nil {
		if !apperror.IsNotFound(err) {
			logger.Log.WithError(err).WithField("agent_id", agentID).Warn("agent zone lookup failed")
		}
		return ""
	}
	return agent.Zone
}

// ListMine обрабатывает GET /api/reports/my?status=assigned,picked.
func (h *ReportHandler) ListMine(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	statuses, err := valueobject.ParseReportStatuses(common.ParseListQuery(c, "status"))
	if err != nil {
		common.Fail(c, err)
		return
	}

	reports, err := h.uc.ListMine.Execute(c.Request.Context(), actor, statuses)
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Success(c, dto.ToReportResponses(reports, h.now()))
}

// Claim обрабатывает POST /api/reports/:id/claim.
// При проигранной гонке клиент получает 409 и свежий список свободных заявок.
func (h *ReportHandler) Claim(c *gin.Context) {
	actor, reportID, ok := h.transitionTarget(c)
	if !ok {
		return
	}

	claimed, err := h.uc.Claim.Execute(c.Request.Context(), reportID, actor.UserID)
	if err != nil {
		if apperror.IsClaimConflict(err) {
			h.respondClaimConflict(c, actor, reportID, err)
			return
		}
		common.Fail(c, err)
		return
	}

	response.Success(c, dto.ToReportResponse(claimed, h.now()))
}

func (h *ReportHandler) respondClaimConflict(c *gin.Context, actor entity.Actor, reportID uuid.UUID, err error) {
	_ = c.Error(err)
	data := dto.ClaimConflictData{ReportID: reportID, Available: []dto.ReportResponse{}}

	input, inputErr := h.availableInput(c, actor)
	if inputErr == nil {
		ranked, listErr := h.uc.ListAvailable.Execute(c.Request.Context(), input)
		if listErr == nil {
			data.Available = dto.FromRankedList(ranked)
		} else {
			logger.Log.WithFields(logrus.Fields{
				"report_id": reportID,
				"agent_id":  actor.UserID,
				"error":     listErr.Error(),
			}).Warn("refresh after claim conflict failed")
		}
	}

	response.ErrorWithData(c, err, data)
}

// MarkPicked обрабатывает POST /api/reports/:id/picked.
func (h *ReportHandler) MarkPicked(c *gin.Context) {
	actor, reportID, ok := h.transitionTarget(c)
	if !ok {
		return
	}
	h.respondTransition(c, func(ctx context.Context) (*entity.FoodReport, error) {
		return h.uc.MarkPicked.Execute(ctx, reportID, actor.UserID)
	})
}

// MarkDelivered обрабатывает POST /api/reports/:id/delivered.
func (h *ReportHandler) MarkDelivered(c *gin.Context) {
	actor, reportID, ok := h.transitionTarget(c)
	if !ok {
		return
	}
	h.respondTransition(c, func(ctx context.Context) (*entity.FoodReport, error) {
		return h.uc.MarkDelivered.Execute(ctx, reportID, actor.UserID)
	})
}

// Cancel обрабатывает POST /api/reports/:id/cancel.
func (h *ReportHandler) Cancel(c *gin.Context) {
	actor, reportID, ok := h.transitionTarget(c)
	if !ok {
		return
	}
	h.respondTransition(c, func(ctx context.Context) (*entity.FoodReport, error) {
		return h.uc.Cancel.Execute(ctx, reportID, actor)
	})
}

func (h *ReportHandler) transitionTarget(c *gin.Context) (entity.Actor, uuid.UUID, bool) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.Fail(c, err)
		return entity.Actor{}, uuid.Nil, false
	}
	reportID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.Fail(c, err)
		return entity.Actor{}, uuid.Nil, false
	}
	return actor, reportID, true
}

func (h *ReportHandler) respondTransition(c *gin.Context, run func(ctx context.Context) (*entity.FoodReport, error)) {
	updated, err := run(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, dto.ToReportResponse(updated, h.now()))
}
