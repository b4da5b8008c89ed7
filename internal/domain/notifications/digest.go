package notifications

import (
	"fmt"
	"strings"

	"depuente/internal/domain/absence"
	"depuente/internal/domain/core"
)

type AbsentEntry struct {
	Name      string       `json:"name"`
	Type      string       `json:"type"`
	StartDate absence.Date `json:"startDate"`
	EndDate   absence.Date `json:"endDate"`
}

// DailyDigest is the content of the morning summary email: who is out today
// and who is around.
type DailyDigest struct {
	Date      absence.Date  `json:"date"`
	Absent    []AbsentEntry `json:"absent"`
	Available []string      `json:"available"`
}

// BuildDailyDigest splits people into absent and available for one day.
// records must already be deduplicated; a person appears in Absent once per
// distinct absence covering today, and never in Available if any absence
// covers today.
func BuildDailyDigest(today absence.Date, records []absence.Record, people []core.Profile) DailyDigest {
	digest := DailyDigest{Date: today}

	absentIDs := make(map[string]struct{})
	for _, record := range records {
		if !today.Within(record.StartDate, record.EndDate) {
			continue
		}
		absentIDs[record.PersonID] = struct{}{}
		digest.Absent = append(digest.Absent, AbsentEntry{
			Name:      record.PersonName,
			Type:      record.Type,
			StartDate: record.StartDate,
			EndDate:   record.EndDate,
		})
	}

	for _, person := range people {
		if _, out := absentIDs[person.ID]; !out {
			digest.Available = append(digest.Available, person.FullName)
		}
	}

	return digest
}

func (d DailyDigest) Subject() string {
	return fmt.Sprintf("📅 Daily Standup - %s", d.Date)
}

// HTML renders the digest body. Plain string building, same as the rest of
// the service's outbound mail; styling stays minimal on purpose.
func (d DailyDigest) HTML(appURL string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString(fmt.Sprintf("<h1>📅 Daily Standup — %s</h1>", d.Date))

	if len(d.Absent) == 0 {
		b.WriteString("<p>✅ ¡Todos disponibles hoy!</p>")
	} else {
		b.WriteString(fmt.Sprintf("<h2>🏖️ De ausencia hoy (%d)</h2><ul>", len(d.Absent)))
		for _, entry := range d.Absent {
			info := absence.InfoForType(entry.Type)
			rangeText := entry.StartDate.String()
			if !entry.EndDate.Equal(entry.StartDate) {
				rangeText += " - " + entry.EndDate.String()
			}
			b.WriteString(fmt.Sprintf("<li><strong>%s</strong> — %s %s (%s)</li>",
				entry.Name, info.Emoji, info.Label, rangeText))
		}
		b.WriteString("</ul>")
	}

	if len(d.Available) > 0 {
		b.WriteString(fmt.Sprintf("<h3>✅ Disponibles hoy (%d)</h3><p>%s</p>",
			len(d.Available), strings.Join(d.Available, ", ")))
	}

	b.WriteString(fmt.Sprintf(`<p><a href="%s">Ver calendario completo</a></p>`, appURL))
	b.WriteString("<p>DE PUENTE - Gestión de Ausencias</p>")
	b.WriteString("</body></html>")
	return b.String()
}
