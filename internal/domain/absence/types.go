package absence

// Absence type codes are a wire-level contract shared with the database and
// the frontend. New codes may appear upstream without a release here; lookups
// fall back to a neutral entry instead of failing.
const (
	TypeVacation     = "vacaciones"
	TypeDayOff       = "dia_libre"
	TypeTrip         = "viaje"
	TypeMedicalLeave = "baja_medica"
)

const RangeCapDays = 365

type TypeInfo struct {
	Label string `json:"label"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
}

var typeInfos = map[string]TypeInfo{
	TypeVacation:     {Label: "Vacaciones", Emoji: "🌴", Color: "#10b981"},
	TypeDayOff:       {Label: "Día libre", Emoji: "🛌", Color: "#3b82f6"},
	TypeTrip:         {Label: "Viaje", Emoji: "✈️", Color: "#8b5cf6"},
	TypeMedicalLeave: {Label: "Baja médica", Emoji: "🤒", Color: "#ef4444"},
}

var fallbackInfo = TypeInfo{Label: "Ausencia", Emoji: "📋", Color: "#6b7280"}

var holidayInfo = TypeInfo{Label: "Festivo", Emoji: "🎉", Color: "#6b7280"}

// InfoForType returns the display info for a type code, falling back to a
// neutral entry for codes this build does not know about.
func InfoForType(code string) TypeInfo {
	if info, ok := typeInfos[code]; ok {
		return info
	}
	return fallbackInfo
}

// KnownTypes lists the codes accepted when creating or updating an absence.
func KnownTypes() []string {
	return []string{TypeVacation, TypeDayOff, TypeTrip, TypeMedicalLeave}
}

// Record is one absence row as returned by the store. The list query joins
// absences against every active team membership of the owner, so the same
// logical absence (same ID) appears once per team; Deduplicate collapses
// those copies before aggregation or display.
type Record struct {
	ID           string `json:"id"`
	PersonID     string `json:"personId"`
	PersonName   string `json:"personName"`
	Email        string `json:"email"`
	TeamID       string `json:"teamId"`
	TeamName     string `json:"teamName"`
	Type         string `json:"type"`
	StartDate    Date   `json:"startDate"`
	EndDate      Date   `json:"endDate"`
	Note         string `json:"note,omitempty"`
	BusinessDays int    `json:"businessDays"`
}

// Holiday is a company-wide holiday; holidays are global and never need
// deduplication.
type Holiday struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	StartDate Date   `json:"startDate"`
	EndDate   Date   `json:"endDate"`
}
