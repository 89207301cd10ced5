package repository

import (
	"context"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/event"
)

// ChangeFeed доставляет события изменений таблицы. Канал закрывается при отмене ctx.
// Доставка не более одного раза, события разных строк могут прийти не по порядку.
type ChangeFeed interface {
	Subscribe(ctx context.Context, table string, predicate event.Predicate) (<-chan event.Change, error)
}
