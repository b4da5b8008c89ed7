package absence

// Deduplicate collapses rows repeating the same absence once per team
// membership into one record per ID. The first-seen copy wins and first-seen
// order is preserved. Empty input yields empty output.
func Deduplicate(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, record := range records {
		if _, ok := seen[record.ID]; ok {
			continue
		}
		seen[record.ID] = struct{}{}
		out = append(out, record)
	}
	return out
}
