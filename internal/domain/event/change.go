package event

import (
	"fmt"
	"time"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
)

const TableFoodReports = "food_reports"

type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
)

// Change - событие изменения строки отчёта. Old пустой для INSERT.
type Change struct {
	ID    string
	Table string
	Op    Op
	Old   *entity.FoodReport
	New   *entity.FoodReport
	At    time.Time
}

type Predicate func(Change) bool

// NewReportChange собирает событие и вычисляет его идентификатор по строке и времени изменения.
func NewReportChange(op Op, old, updated *entity.FoodReport) Change {
	return Change{
		ID:    fmt.Sprintf("%s:%s:%s:%d", TableFoodReports, updated.ID, op, updated.UpdatedAt.UnixNano()),
		Table: TableFoodReports,
		Op:    op,
		Old:   old,
		New:   updated,
		At:    updated.UpdatedAt,
	}
}

// StatusChanged сообщает, изменился ли статус в событии UPDATE.
func (c Change) StatusChanged() bool {
	return c.Op == OpUpdate && c.Old != nil && c.New != nil && c.Old.Status != c.New.Status
}

func All(Change) bool { return true }
