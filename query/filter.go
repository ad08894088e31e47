package query

import "sort"

// rowSorter orders rows by a list of columns
type rowSorter struct {
	names      []string
	desc       bool
	comparator *valueComparator
}

func newRowSorter(names []string, direction SortDirection) *rowSorter {
	return &rowSorter{
		names:      names,
		desc:       direction == Descending,
		comparator: newValueComparator(),
	}
}

// compareRows compares two rows column by column, the first listed column
// being the primary key. The direction is applied to the whole comparison.
func (s *rowSorter) compareRows(a, b Row) int {
	for _, name := range s.names {
		if c := s.comparator.compare(a[name], b[name]); c != 0 {
			if s.desc {
				return -c
			}
			return c
		}
		// Values are equal, continue to next column
	}
	return 0
}

// sort sorts rows in place, keeping the input order of ties
func (s *rowSorter) sort(rows []Row) []Row {
	sort.SliceStable(rows, func(i, j int) bool {
		return s.compareRows(rows[i], rows[j]) < 0
	})
	return rows
}
