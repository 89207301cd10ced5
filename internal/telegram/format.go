package telegram

import (
	"fmt"
	"strings"
	"time"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
	"github.com/ignatzorin/foodrescue-backend/internal/notify"
	"github.com/ignatzorin/foodrescue-backend/internal/usecase/report"
)

const helpText = "Команды:\n" +
	"/list - свободные заявки в вашей зоне\n" +
	"/mine - ваши активные заявки\n" +
	"/claim <id> - взять заявку\n" +
	"/picked <id> - еда забрана из отеля\n" +
	"/done <id> - еда доставлена"

var urgencyMarks = map[valueobject.Urgency]string{
	valueobject.UrgencyUrgent:   "🔴",
	valueobject.UrgencyMedium:   "🟡",
	valueobject.UrgencyFlexible: "🟢",
}

func formatAvailable(ranked []report.RankedReport, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Свободные заявки (%d):\n", len(ranked))
	for _, r := range ranked {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "%s %s, порций: %d\n", urgencyMarks[r.Urgency], r.Report.FoodName, r.Report.Quantity)
		sb.WriteString(pickupLine(r.Report) + "\n")
		if r.Report.ExpiryAt != nil {
			fmt.Fprintf(&sb, "Годно ещё %s\n", remaining(r.Report.ExpiryAt.Sub(now)))
		}
		if r.DistanceKm != nil {
			fmt.Fprintf(&sb, "До отеля %.1f км\n", *r.DistanceKm)
		}
		fmt.Fprintf(&sb, "/claim %s\n", r.Report.ID)
	}
	return sb.String()
}

func formatMine(reports []*entity.FoodReport) string {
	var sb strings.Builder
	sb.WriteString("Ваши заявки:\n")
	for _, r := range reports {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "%s, порций: %d (%s)\n", r.FoodName, r.Quantity, notify.StatusLabel(r.Status))
		sb.WriteString(pickupLine(r) + "\n")
		switch r.Status {
		case valueobject.ReportStatusAssigned:
			fmt.Fprintf(&sb, "/picked %s\n", r.ID)
		case valueobject.ReportStatusPicked:
			fmt.Fprintf(&sb, "/done %s\n", r.ID)
		}
	}
	return sb.String()
}

// formatAlert превращает уведомление в текст сообщения Telegram.
func formatAlert(a notify.Alert) string {
	var sb strings.Builder
	if mark, ok := urgencyMarks[a.Urgency]; ok && a.Kind == notify.KindNewTask {
		sb.WriteString(mark + " ")
	}
	sb.WriteString(a.Title + "\n" + a.Message)
	if a.Kind == notify.KindNewTask {
		fmt.Fprintf(&sb, "\n/claim %s", a.ReportID)
	}
	return sb.String()
}

func pickupLine(r *entity.FoodReport) string {
	if r.HotelName == "" {
		return "Отель: " + zoneLabel(r.Zone)
	}
	if r.HotelAddress == "" {
		return "Отель: " + r.HotelName
	}
	return fmt.Sprintf("Отель: %s, %s", r.HotelName, r.HotelAddress)
}

func zoneLabel(zone string) string {
	if zone == "" {
		return "любая"
	}
	return zone
}

func remaining(d time.Duration) string {
	if d <= 0 {
		return "0 мин"
	}
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%d мин", m)
	}
	return fmt.Sprintf("%d ч %d мин", h, m)
}
