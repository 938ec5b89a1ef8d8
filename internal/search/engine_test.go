package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/airline-reservation/internal/model"
)

// Test fixture airports: 1=AAA, 2=BBB, 3=CCC, 4=DDD.
const (
	apA uint64 = 1
	apB uint64 = 2
	apC uint64 = 3
	apD uint64 = 4
)

var testDay = time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

type testLeg struct {
	id       uint64
	airline  uint64
	from, to uint64
	depHour  float64
	arrHour  float64
	economy  uint32
	fullyBkd bool
}

func buildGraph(t *testing.T, legs []testLeg) *Graph {
	t.Helper()
	flights := make([]model.Flight, 0, len(legs))
	routes := make(map[uint64]model.Route, len(legs))
	for _, l := range legs {
		routes[l.id] = model.Route{
			ID:                 l.id,
			AirlineID:          l.airline,
			DepartureAirportID: l.from,
			ArrivalAirportID:   l.to,
			FlightNumber:       "TT100",
			PeriodStart:        testDay.AddDate(0, -1, 0),
			PeriodEnd:          testDay.AddDate(0, 1, 0),
		}
		flights = append(flights, model.Flight{
			ID:                l.id,
			RouteID:           l.id,
			AircraftConfigID:  1,
			DepartureTime:     testDay.Add(time.Duration(l.depHour * float64(time.Hour))),
			ArrivalTime:       testDay.Add(time.Duration(l.arrHour * float64(time.Hour))),
			EconomyPriceCents: l.economy,
			FullyBooked:       l.fullyBkd,
		})
	}
	return NewGraph(testDay, testDay.AddDate(0, 0, 2), flights, routes, nil, nil, nil)
}

func flightIDs(it Itinerary) []uint64 {
	ids := make([]uint64, 0, len(it.Legs))
	for _, leg := range it.Legs {
		ids = append(ids, leg.Flight.ID)
	}
	return ids
}

func TestSearchDirectFlight(t *testing.T) {
	g := buildGraph(t, []testLeg{
		{id: 10, airline: 1, from: apA, to: apB, depHour: 8, arrHour: 10, economy: 5000},
	})
	got := NewEngine(g).Search([]uint64{apA}, []uint64{apB}, testDay, 2, 45, Filters{})

	require.Len(t, got[0], 1)
	assert.Equal(t, []uint64{10}, flightIDs(got[0][0]))
	assert.Empty(t, got[1])
	assert.Empty(t, got[2])
}

func TestSearchBucketsByTransferCount(t *testing.T) {
	g := buildGraph(t, []testLeg{
		{id: 10, airline: 1, from: apA, to: apB, depHour: 8, arrHour: 16, economy: 4000},
		{id: 20, airline: 1, from: apA, to: apC, depHour: 7, arrHour: 9, economy: 3000},
		{id: 21, airline: 1, from: apC, to: apB, depHour: 10, arrHour: 12, economy: 3000},
	})
	got := NewEngine(g).Search([]uint64{apA}, []uint64{apB}, testDay, 2, 45, Filters{})

	require.Len(t, got[0], 1)
	assert.Equal(t, []uint64{10}, flightIDs(got[0][0]))
	require.Len(t, got[1], 1)
	assert.Equal(t, []uint64{20, 21}, flightIDs(got[1][0]))
}

func TestSearchRespectsMinimumTransferTime(t *testing.T) {
	g := buildGraph(t, []testLeg{
		{id: 20, airline: 1, from: apA, to: apC, depHour: 7, arrHour: 9, economy: 3000},
		// 30 minutes of connection time at C, below the 45 minute floor.
		{id: 21, airline: 1, from: apC, to: apB, depHour: 9.5, arrHour: 12, economy: 3000},
	})
	got := NewEngine(g).Search([]uint64{apA}, []uint64{apB}, testDay, 2, 45, Filters{})
	assert.Empty(t, got[1])

	// At a 30 minute floor the same connection is legal.
	got = NewEngine(g).Search([]uint64{apA}, []uint64{apB}, testDay, 2, 30, Filters{})
	require.Len(t, got[1], 1)
	assert.Equal(t, []uint64{20, 21}, flightIDs(got[1][0]))
}

func TestSearchMaxTransfersZeroOnlyDirect(t *testing.T) {
	g := buildGraph(t, []testLeg{
		{id: 10, airline: 1, from: apA, to: apB, depHour: 8, arrHour: 16, economy: 4000},
		{id: 20, airline: 1, from: apA, to: apC, depHour: 7, arrHour: 9, economy: 3000},
		{id: 21, airline: 1, from: apC, to: apB, depHour: 10, arrHour: 12, economy: 3000},
	})
	got := NewEngine(g).Search([]uint64{apA}, []uint64{apB}, testDay, 0, 45, Filters{})

	require.Len(t, got[0], 1)
	assert.Empty(t, got[1])
}

func TestSearchExcludesFullyBookedFlights(t *testing.T) {
	g := buildGraph(t, []testLeg{
		{id: 10, airline: 1, from: apA, to: apB, depHour: 8, arrHour: 10, economy: 5000, fullyBkd: true},
	})
	got := NewEngine(g).Search([]uint64{apA}, []uint64{apB}, testDay, 2, 45, Filters{})
	assert.Empty(t, got[0])
}

func TestSearchAirlineFilterAppliesToEveryLeg(t *testing.T) {
	g := buildGraph(t, []testLeg{
		{id: 20, airline: 1, from: apA, to: apC, depHour: 7, arrHour: 9, economy: 3000},
		{id: 21, airline: 2, from: apC, to: apB, depHour: 10, arrHour: 12, economy: 3000},
		{id: 22, airline: 1, from: apC, to: apB, depHour: 11, arrHour: 13, economy: 3500},
	})
	got := NewEngine(g).Search([]uint64{apA}, []uint64{apB}, testDay, 2, 45, Filters{AirlineID: 1})

	require.Len(t, got[1], 1)
	assert.Equal(t, []uint64{20, 22}, flightIDs(got[1][0]))
}

func TestSearchPriceCeilingIsCumulative(t *testing.T) {
	g := buildGraph(t, []testLeg{
		{id: 20, airline: 1, from: apA, to: apC, depHour: 7, arrHour: 9, economy: 3000},
		{id: 21, airline: 1, from: apC, to: apB, depHour: 10, arrHour: 12, economy: 3000},
	})
	// Each leg alone fits under 5000, the pair does not.
	got := NewEngine(g).Search([]uint64{apA}, []uint64{apB}, testDay, 2, 45, Filters{MaxEconomyCents: 5000})
	assert.Empty(t, got[1])

	got = NewEngine(g).Search([]uint64{apA}, []uint64{apB}, testDay, 2, 45, Filters{MaxEconomyCents: 6000})
	assert.Len(t, got[1], 1)
}

func TestSearchTimeOfDayWindowOnFirstLegOnly(t *testing.T) {
	g := buildGraph(t, []testLeg{
		{id: 20, airline: 1, from: apA, to: apC, depHour: 7, arrHour: 9, economy: 3000},
		// Second leg departs at 22:00; outside the window but not the first leg.
		{id: 21, airline: 1, from: apC, to: apB, depHour: 22, arrHour: 23, economy: 3000},
	})
	after := 6 * 60
	before := 12 * 60
	got := NewEngine(g).Search([]uint64{apA}, []uint64{apB}, testDay, 2, 45,
		Filters{DepartAfter: &after, DepartBefore: &before})
	require.Len(t, got[1], 1)

	// Shift the window so the first leg itself falls outside.
	after = 8 * 60
	got = NewEngine(g).Search([]uint64{apA}, []uint64{apB}, testDay, 2, 45,
		Filters{DepartAfter: &after, DepartBefore: &before})
	assert.Empty(t, got[1])
}

func TestSearchMultiAirportOriginAndDestination(t *testing.T) {
	g := buildGraph(t, []testLeg{
		{id: 10, airline: 1, from: apA, to: apC, depHour: 8, arrHour: 10, economy: 4000},
		{id: 11, airline: 1, from: apB, to: apD, depHour: 9, arrHour: 11, economy: 4500},
	})
	// City-level search: origins {A,B}, destinations {C,D}.
	got := NewEngine(g).Search([]uint64{apA, apB}, []uint64{apC, apD}, testDay, 2, 45, Filters{})
	assert.Len(t, got[0], 2)
}

func TestSearchNoDuplicateItineraries(t *testing.T) {
	// Two paths reach C before the shared final leg to B. However the
	// intermediate labels evolve, each flight-id tuple must surface at
	// most once across all buckets.
	g := buildGraph(t, []testLeg{
		{id: 20, airline: 1, from: apA, to: apC, depHour: 7, arrHour: 9, economy: 3000},
		{id: 30, airline: 1, from: apA, to: apD, depHour: 7, arrHour: 8, economy: 2000},
		{id: 31, airline: 1, from: apD, to: apC, depHour: 9, arrHour: 10, economy: 2000},
		{id: 40, airline: 1, from: apC, to: apB, depHour: 12, arrHour: 14, economy: 3000},
	})
	got := NewEngine(g).Search([]uint64{apA}, []uint64{apB}, testDay, 3, 45, Filters{})

	keys := make(map[string]int)
	for _, bucket := range got {
		for _, it := range bucket {
			keys[it.key()]++
		}
	}
	for key, n := range keys {
		assert.Equal(t, 1, n, "itinerary %s surfaced more than once", key)
	}
}

func TestSearchItineraryBucketMatchesPathLength(t *testing.T) {
	// A slower first leg into C beats nothing, but the engine must still
	// attribute every emitted itinerary to the bucket of its own leg count.
	g := buildGraph(t, []testLeg{
		{id: 20, airline: 1, from: apA, to: apC, depHour: 7, arrHour: 9, economy: 3000},
		{id: 30, airline: 1, from: apA, to: apD, depHour: 7, arrHour: 8, economy: 2000},
		{id: 31, airline: 1, from: apD, to: apC, depHour: 9, arrHour: 11, economy: 2000},
		{id: 40, airline: 1, from: apC, to: apB, depHour: 12, arrHour: 14, economy: 3000},
	})
	got := NewEngine(g).Search([]uint64{apA}, []uint64{apB}, testDay, 3, 45, Filters{})

	for transfers, bucket := range got {
		for _, it := range bucket {
			assert.Equal(t, transfers, it.Transfers())
		}
	}
}

func TestSearchWindowEndCutsLateDepartures(t *testing.T) {
	g := buildGraph(t, []testLeg{
		{id: 10, airline: 1, from: apA, to: apB, depHour: 8, arrHour: 10, economy: 5000},
		// Departs on day two, inside the graph window.
		{id: 11, airline: 1, from: apA, to: apB, depHour: 30, arrHour: 32, economy: 5000},
	})
	got := NewEngine(g).Search([]uint64{apA}, []uint64{apB}, testDay, 2, 45,
		Filters{WindowEnd: testDay.AddDate(0, 0, 1)})

	require.Len(t, got[0], 1)
	assert.Equal(t, []uint64{10}, flightIDs(got[0][0]))
}

func TestSearchEmptyInputs(t *testing.T) {
	g := buildGraph(t, []testLeg{
		{id: 10, airline: 1, from: apA, to: apB, depHour: 8, arrHour: 10, economy: 5000},
	})
	e := NewEngine(g)

	assert.Empty(t, e.Search(nil, []uint64{apB}, testDay, 2, 45, Filters{}))
	assert.Empty(t, e.Search([]uint64{apA}, nil, testDay, 2, 45, Filters{}))
	assert.Empty(t, e.Search([]uint64{apA}, []uint64{apB}, testDay, -1, 45, Filters{}))
}
