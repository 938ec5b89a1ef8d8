package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func journeyFixture(economy uint32, duration, stops int, firstDep string, flightIDs ...uint64) Journey {
	segs := make([]Segment, 0, len(flightIDs))
	for i, id := range flightIDs {
		s := Segment{FlightID: id}
		if i == 0 {
			s.DepartureTime = firstDep
		}
		segs = append(segs, s)
	}
	return Journey{
		Segments:          segs,
		EconomyPriceCents: economy,
		DurationMinutes:   duration,
		Stops:             stops,
		IsDirect:          stops == 0,
	}
}

func TestApplySortsByPriceByDefault(t *testing.T) {
	journeys := []Journey{
		journeyFixture(9000, 100, 0, "2026-09-10T08:00:00Z", 1),
		journeyFixture(3000, 300, 1, "2026-09-10T09:00:00Z", 2, 3),
		journeyFixture(6000, 200, 0, "2026-09-10T10:00:00Z", 4),
	}
	page, totalPages := Apply(journeys, JourneyQuery{})

	require.Len(t, page, 3)
	assert.Equal(t, 1, totalPages)
	assert.Equal(t, uint32(3000), page[0].EconomyPriceCents)
	assert.Equal(t, uint32(6000), page[1].EconomyPriceCents)
	assert.Equal(t, uint32(9000), page[2].EconomyPriceCents)
}

func TestApplySortKeysAndDirection(t *testing.T) {
	journeys := []Journey{
		journeyFixture(9000, 100, 2, "2026-09-10T08:00:00Z", 1, 2, 3),
		journeyFixture(3000, 300, 0, "2026-09-10T09:00:00Z", 4),
		journeyFixture(6000, 200, 1, "2026-09-10T10:00:00Z", 5, 6),
	}

	tests := []struct {
		name       string
		sortBy     string
		descending bool
		wantFirst  uint32 // economy price of the expected first journey
	}{
		{name: "duration ascending", sortBy: SortByDuration, wantFirst: 9000},
		{name: "duration descending", sortBy: SortByDuration, descending: true, wantFirst: 3000},
		{name: "stops ascending", sortBy: SortByStops, wantFirst: 3000},
		{name: "price descending", sortBy: SortByPrice, descending: true, wantFirst: 9000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, _ := Apply(journeys, JourneyQuery{SortBy: tt.sortBy, Descending: tt.descending})
			require.NotEmpty(t, page)
			assert.Equal(t, tt.wantFirst, page[0].EconomyPriceCents)
		})
	}
}

func TestApplyStableSortKeepsEmissionOrderOnTies(t *testing.T) {
	journeys := []Journey{
		journeyFixture(5000, 100, 0, "2026-09-10T08:00:00Z", 1),
		journeyFixture(5000, 200, 0, "2026-09-10T09:00:00Z", 2),
	}
	page, _ := Apply(journeys, JourneyQuery{SortBy: SortByPrice})
	require.Len(t, page, 2)
	assert.Equal(t, uint64(1), page[0].Segments[0].FlightID)
	assert.Equal(t, uint64(2), page[1].Segments[0].FlightID)
}

func TestApplyPagination(t *testing.T) {
	journeys := make([]Journey, 0, 5)
	for i := 0; i < 5; i++ {
		journeys = append(journeys, journeyFixture(uint32(1000*(i+1)), 100, 0, "2026-09-10T08:00:00Z", uint64(i+1)))
	}

	page, totalPages := Apply(journeys, JourneyQuery{Page: 1, PageSize: 2})
	assert.Len(t, page, 2)
	assert.Equal(t, 3, totalPages)

	page, _ = Apply(journeys, JourneyQuery{Page: 3, PageSize: 2})
	assert.Len(t, page, 1)

	// A page past the end is empty, not an error.
	page, totalPages = Apply(journeys, JourneyQuery{Page: 9, PageSize: 2})
	assert.Empty(t, page)
	assert.Equal(t, 3, totalPages)
}

func TestApplyPriceCeiling(t *testing.T) {
	journeys := []Journey{
		journeyFixture(3000, 100, 0, "2026-09-10T08:00:00Z", 1),
		journeyFixture(9000, 100, 0, "2026-09-10T09:00:00Z", 2),
	}
	page, totalPages := Apply(journeys, JourneyQuery{MaxEconomyCents: 5000})
	require.Len(t, page, 1)
	assert.Equal(t, 1, totalPages)
	assert.Equal(t, uint32(3000), page[0].EconomyPriceCents)
}

func TestApplyDepartureWindow(t *testing.T) {
	journeys := []Journey{
		journeyFixture(3000, 100, 0, "2026-09-10T06:30:00Z", 1),
		journeyFixture(4000, 100, 0, "2026-09-10T13:00:00Z", 2),
		journeyFixture(5000, 100, 0, "2026-09-10T22:15:00Z", 3),
	}
	after := 8 * 60
	before := 18 * 60
	page, _ := Apply(journeys, JourneyQuery{DepartAfter: &after, DepartBefore: &before})
	require.Len(t, page, 1)
	assert.Equal(t, uint64(2), page[0].Segments[0].FlightID)
}

func TestApplyExcludesBookedFlights(t *testing.T) {
	journeys := []Journey{
		journeyFixture(3000, 100, 1, "2026-09-10T08:00:00Z", 1, 2),
		journeyFixture(4000, 100, 0, "2026-09-10T09:00:00Z", 3),
	}
	// Booking any leg of a journey removes the whole journey.
	page, _ := Apply(journeys, JourneyQuery{BookedFlightIDs: map[uint64]struct{}{2: {}}})
	require.Len(t, page, 1)
	assert.Equal(t, uint64(3), page[0].Segments[0].FlightID)
}
