package weather

import "time"

// Table is the name-addressed view of a single location's response.
type Table struct {
	Current map[Variable]float64
	Daily   map[Variable][]float64
	Days    []time.Time
}

// Decode maps the first location of responses onto a Table. Variables are
// matched to names by position using the same ordered lists the request was
// built from; any disagreement is reported as a decode failure.
func Decode(responses []Response) (Table, error) {
	if len(responses) == 0 {
		return Table{}, decodeErrorf("no locations returned")
	}
	resp := responses[0]

	current, err := matchColumns("current", resp.Current, currentVariables[:])
	if err != nil {
		return Table{}, err
	}
	daily, err := matchColumns("daily", resp.Daily, dailyVariables[:])
	if err != nil {
		return Table{}, err
	}
	count, err := dayCount(resp.Daily)
	if err != nil {
		return Table{}, err
	}
	for _, col := range daily {
		if uint64(len(col.Values)) != count {
			return Table{}, decodeErrorf("daily %s has %d values for %d days", col.Variable, len(col.Values), count)
		}
	}

	table := Table{
		Current: make(map[Variable]float64, len(current)),
		Daily:   make(map[Variable][]float64, len(daily)),
		Days:    dayRange(resp.Daily, int(count)),
	}
	for _, col := range current {
		table.Current[col.Variable] = col.Value
	}
	for _, col := range daily {
		table.Daily[col.Variable] = col.Values
	}
	return table, nil
}

func matchColumns(group string, g Group, declared []Variable) ([]Column, error) {
	for i, want := range declared {
		if i >= len(g.Variables) {
			return nil, decodeErrorf("%s variable %s missing at position %d", group, want, i)
		}
		if got := g.Variables[i].Variable; got != want {
			return nil, decodeErrorf("%s variable %s missing at position %d (found %q)", group, want, i, got)
		}
	}
	if len(g.Variables) > len(declared) {
		extra := g.Variables[len(declared)].Variable
		return nil, decodeErrorf("%s variable %q unexpected at position %d", group, extra, len(declared))
	}
	return g.Variables, nil
}

// dayCount is the number of Interval steps in [Time, TimeEnd).
func dayCount(g Group) (uint64, error) {
	if g.Interval <= 0 {
		return 0, decodeErrorf("daily interval must be positive, got %d", g.Interval)
	}
	if g.TimeEnd < g.Time {
		return 0, decodeErrorf("daily range ends at %d before it starts at %d", g.TimeEnd, g.Time)
	}
	span := uint64(g.TimeEnd) - uint64(g.Time)
	step := uint64(g.Interval)
	count := span / step
	if span%step != 0 {
		count++
	}
	return count, nil
}

// dayRange expands count steps from Time. count must come from dayCount and
// already agree with the column lengths.
func dayRange(g Group, count int) []time.Time {
	days := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		days = append(days, time.Unix(g.Time+int64(i)*g.Interval, 0).UTC())
	}
	return days
}
