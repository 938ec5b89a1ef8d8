package search

import "sort"

// Sort keys accepted by JourneyQuery.SortBy.
const (
	SortByPrice    = "price"
	SortByDuration = "duration"
	SortByStops    = "stops"
)

// JourneyQuery collects the post-search shaping of a result set: optional
// AND-combined filters, one sort key with direction, and 1-indexed page
// slicing with a fixed page size.
type JourneyQuery struct {
	DepartAfter     *int                // first segment departure, minutes since midnight UTC
	DepartBefore    *int                // first segment departure, minutes since midnight UTC
	MaxEconomyCents uint32              // aggregate economy price ceiling; 0 = no ceiling
	BookedFlightIDs map[uint64]struct{} // flights the requesting user already booked; journeys touching any are excluded
	SortBy          string              // price, duration or stops; price when empty
	Descending      bool
	Page            int
	PageSize        int
}

// Apply filters, sorts and paginates the journeys.  It returns the page
// slice and the total page count, ceil(total/pageSize).  A page past the
// result count yields an empty slice, not an error.  The sort is stable so
// ties keep their emission order.
func Apply(journeys []Journey, q JourneyQuery) ([]Journey, int) {
	kept := make([]Journey, 0, len(journeys))
	for _, j := range journeys {
		if !q.matches(j) {
			continue
		}
		kept = append(kept, j)
	}

	less := lessFunc(q.SortBy, kept)
	if q.Descending {
		inner := less
		less = func(i, k int) bool { return inner(k, i) }
	}
	sort.SliceStable(kept, less)

	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	totalPages := (len(kept) + pageSize - 1) / pageSize

	page := q.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(kept) {
		return []Journey{}, totalPages
	}
	end := start + pageSize
	if end > len(kept) {
		end = len(kept)
	}
	return kept[start:end], totalPages
}

func (q JourneyQuery) matches(j Journey) bool {
	if q.DepartAfter != nil || q.DepartBefore != nil {
		dep := j.firstDeparture()
		minutes := dep.UTC().Hour()*60 + dep.UTC().Minute()
		if q.DepartAfter != nil && minutes < *q.DepartAfter {
			return false
		}
		if q.DepartBefore != nil && minutes > *q.DepartBefore {
			return false
		}
	}
	if q.MaxEconomyCents > 0 && j.EconomyPriceCents > q.MaxEconomyCents {
		return false
	}
	if len(q.BookedFlightIDs) > 0 {
		for _, s := range j.Segments {
			if _, booked := q.BookedFlightIDs[s.FlightID]; booked {
				return false
			}
		}
	}
	return true
}

func lessFunc(sortBy string, journeys []Journey) func(i, j int) bool {
	switch sortBy {
	case SortByDuration:
		return func(i, j int) bool { return journeys[i].DurationMinutes < journeys[j].DurationMinutes }
	case SortByStops:
		return func(i, j int) bool { return journeys[i].Stops < journeys[j].Stops }
	default: // price
		return func(i, j int) bool { return journeys[i].EconomyPriceCents < journeys[j].EconomyPriceCents }
	}
}
