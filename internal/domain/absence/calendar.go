package absence

const (
	CategoryAbsence = "absence"
	CategoryHoliday = "holiday"
)

// Event is one renderable calendar entry. End is exclusive of its date, per
// the calendar widget's convention; Absence or Holiday carries the source
// record for click handling.
type Event struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Start    Date     `json:"start"`
	End      Date     `json:"end"`
	Category string   `json:"category"`
	Color    string   `json:"color"`
	Absence  *Record  `json:"absence,omitempty"`
	Holiday  *Holiday `json:"holiday,omitempty"`
}

// ProjectEvents maps deduplicated absences plus holidays to calendar events.
// Output is deterministic: all absence events in input order, then all
// holiday events in input order. The calendar widget re-sorts by date.
func ProjectEvents(absences []Record, holidays []Holiday) []Event {
	events := make([]Event, 0, len(absences)+len(holidays))

	for i := range absences {
		record := absences[i]
		info := InfoForType(record.Type)
		events = append(events, Event{
			ID:       record.ID,
			Title:    info.Emoji + " " + record.PersonName,
			Start:    record.StartDate,
			End:      record.EndDate.ExclusiveEnd(),
			Category: CategoryAbsence,
			Color:    info.Color,
			Absence:  &record,
		})
	}

	for i := range holidays {
		holiday := holidays[i]
		events = append(events, Event{
			ID:       holiday.ID,
			Title:    holidayInfo.Emoji + " " + holiday.Title,
			Start:    holiday.StartDate,
			End:      holiday.EndDate.ExclusiveEnd(),
			Category: CategoryHoliday,
			Color:    holidayInfo.Color,
			Holiday:  &holiday,
		})
	}

	return events
}
