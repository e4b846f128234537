package report

// Preferred column order for report tables. Columns not listed here sort
// after the listed ones, keeping identifier columns at the far right.
var preferredColumns = []string{
	"artist",
	"album",
	"track_name",
	"total_listens",
	"total_hours_listened",
	"unique_liked_tracks",
	"last_listened",
	"first_listened",
	"genres",
}

// Table is a rendered report: a header and rows of preformatted cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// orderColumns arranges column names into the preferred presentation
// order, appending unlisted names in their given order.
func orderColumns(names []string) []string {
	rank := make(map[string]int, len(preferredColumns))
	for i, name := range preferredColumns {
		rank[name] = i
	}

	var ordered []string
	for _, name := range preferredColumns {
		for _, have := range names {
			if have == name {
				ordered = append(ordered, name)
			}
		}
	}
	for _, have := range names {
		if _, ok := rank[have]; !ok {
			ordered = append(ordered, have)
		}
	}
	return ordered
}
