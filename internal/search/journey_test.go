package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/airline-reservation/internal/model"
)

func formatterGraph() *Graph {
	airports := map[uint64]model.Airport{
		apA: {ID: apA, IATA: "AAA", Name: "Alpha International", CityID: 1},
		apB: {ID: apB, IATA: "BBB", Name: "Bravo Airport", CityID: 2},
		apC: {ID: apC, IATA: "CCC", Name: "Charlie Field", CityID: 3},
	}
	airlines := map[uint64]model.Airline{
		1: {ID: 1, Name: "Testwings", Code: "TW"},
	}
	aircraft := map[uint64]model.AircraftConfiguration{
		1: {ID: 1, Name: "Boeing 787-9"},
	}
	return NewGraph(testDay, testDay.AddDate(0, 0, 2), nil, nil, airports, airlines, aircraft)
}

func itineraryFixture() Itinerary {
	dep1 := testDay.Add(7 * time.Hour)
	arr1 := testDay.Add(9 * time.Hour)
	dep2 := testDay.Add(10*time.Hour + 30*time.Minute)
	arr2 := testDay.Add(12 * time.Hour)
	return Itinerary{Legs: []FlightNode{
		{
			Flight: model.Flight{ID: 20, AircraftConfigID: 1, DepartureTime: dep1, ArrivalTime: arr1,
				Terminal: "2", Gate: "B14",
				FirstPriceCents: 20000, BusinessPriceCents: 12000, EconomyPriceCents: 3000},
			Route: model.Route{ID: 20, AirlineID: 1, DepartureAirportID: apA, ArrivalAirportID: apC, FlightNumber: "TW101"},
		},
		{
			Flight: model.Flight{ID: 21, AircraftConfigID: 1, DepartureTime: dep2, ArrivalTime: arr2,
				FirstPriceCents: 18000, BusinessPriceCents: 10000, EconomyPriceCents: 4000},
			Route: model.Route{ID: 21, AirlineID: 1, DepartureAirportID: apC, ArrivalAirportID: apB, FlightNumber: "TW205"},
		},
	}}
}

func TestFormatRendersSegmentsAndLayovers(t *testing.T) {
	j, ok := NewFormatter(formatterGraph()).Format(itineraryFixture())
	require.True(t, ok)

	require.Len(t, j.Segments, 2)
	assert.Equal(t, "AAA", j.Segments[0].DepartureIATA)
	assert.Equal(t, "CCC", j.Segments[0].ArrivalIATA)
	assert.Equal(t, "TW101", j.Segments[0].FlightNumber)
	assert.Equal(t, "Testwings", j.Segments[0].Airline)
	assert.Equal(t, "Boeing 787-9", j.Segments[0].Aircraft)
	assert.Equal(t, "2026-09-10T07:00:00Z", j.Segments[0].DepartureTime)
	assert.Equal(t, 120, j.Segments[0].DurationMinutes)
	assert.Equal(t, "2", j.Segments[0].Terminal)
	assert.Equal(t, "B14", j.Segments[0].Gate)
	assert.Empty(t, j.Segments[1].Gate) // unassigned gates render as empty

	require.Len(t, j.Layovers, 1)
	assert.Equal(t, "CCC", j.Layovers[0].AirportIATA)
	assert.Equal(t, 90, j.Layovers[0].DurationMinutes)
}

func TestFormatAggregatesJourneyTotals(t *testing.T) {
	j, ok := NewFormatter(formatterGraph()).Format(itineraryFixture())
	require.True(t, ok)

	assert.Equal(t, uint32(7000), j.EconomyPriceCents)
	assert.Equal(t, uint32(22000), j.BusinessPriceCents)
	assert.Equal(t, uint32(38000), j.FirstPriceCents)
	assert.Equal(t, 300, j.DurationMinutes) // 07:00 to 12:00
	assert.False(t, j.IsDirect)
	assert.Equal(t, 1, j.Stops)
}

func TestFormatDirectFlight(t *testing.T) {
	it := Itinerary{Legs: itineraryFixture().Legs[:1]}
	j, ok := NewFormatter(formatterGraph()).Format(it)
	require.True(t, ok)
	assert.True(t, j.IsDirect)
	assert.Zero(t, j.Stops)
	assert.Empty(t, j.Layovers)
}

func TestFormatFailsOnUnresolvableReferences(t *testing.T) {
	it := itineraryFixture()

	g := formatterGraph()
	delete(g.Airports, apC)
	_, ok := NewFormatter(g).Format(it)
	assert.False(t, ok)

	g = formatterGraph()
	delete(g.Aircraft, 1)
	_, ok = NewFormatter(g).Format(it)
	assert.False(t, ok)
}

func TestFormatAllVisitsBucketsInTransferOrder(t *testing.T) {
	direct := Itinerary{Legs: itineraryFixture().Legs[:1]}
	oneStop := itineraryFixture()
	buckets := map[int][]Itinerary{
		1: {oneStop},
		0: {direct},
	}
	journeys := NewFormatter(formatterGraph()).FormatAll(buckets, 2)

	require.Len(t, journeys, 2)
	assert.True(t, journeys[0].IsDirect)
	assert.False(t, journeys[1].IsDirect)
}

func TestFormatAllDropsUnresolvable(t *testing.T) {
	g := formatterGraph()
	delete(g.Aircraft, 1)
	buckets := map[int][]Itinerary{0: {Itinerary{Legs: itineraryFixture().Legs[:1]}}}
	journeys := NewFormatter(g).FormatAll(buckets, 0)
	assert.Empty(t, journeys)
}
