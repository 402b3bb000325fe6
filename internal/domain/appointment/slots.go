package appointment

import (
	"regexp"

	"github.com/BruksfildServices01/companion-booking/internal/models"
)

// DailySlots são os horários fixos oferecidos todos os dias.
var DailySlots = []string{
	"09:00", "10:00", "11:00", "12:00",
	"14:00", "15:00", "16:00", "17:00",
}

type TimeSlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

var hhmm = regexp.MustCompile(`^(\d{2}):(\d{2})`)

// NormalizeTime reduz "09:00:00" (ou "09:00") para "09:00".
// Retorna "" quando o valor não começa com HH:MM.
func NormalizeTime(raw string) string {
	m := hhmm.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return m[1] + ":" + m[2]
}

func IsDailySlot(t string) bool {
	for _, s := range DailySlots {
		if s == t {
			return true
		}
	}
	return false
}

// BuildSlots marca como indisponível todo horário ocupado por um
// agendamento da lista. A lista já deve excluir os cancelados.
func BuildSlots(booked []models.Appointment) []TimeSlot {
	taken := make(map[string]struct{}, len(booked))
	for _, ap := range booked {
		if t := NormalizeTime(ap.AppointmentTime); t != "" {
			taken[t] = struct{}{}
		}
	}

	slots := make([]TimeSlot, 0, len(DailySlots))
	for _, s := range DailySlots {
		_, busy := taken[s]
		slots = append(slots, TimeSlot{Time: s, Available: !busy})
	}
	return slots
}
