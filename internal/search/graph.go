// Package search implements the itinerary search core: a time-indexed
// flight graph loaded once per date window, a round-based earliest-arrival
// engine bounded by transfer count, journey formatting, and post-search
// filtering, sorting and pagination.  Everything in this package is pure
// in-memory computation; the repository layer supplies the data.
package search

import (
	"sort"
	"time"

	"github.com/iliyamo/airline-reservation/internal/model"
)

// FlightNode couples a flight with its route template so the engine can
// follow airport edges and the formatter can render flight numbers and
// airlines without further lookups.
type FlightNode struct {
	Flight model.Flight
	Route  model.Route
}

// Graph is the indexed output of a single load call: all flights departing
// inside [WindowStart, WindowEnd) grouped by departure airport, plus the
// reference data touched by them.  A graph is valid only for the window it
// was built for; callers must rebuild it when the window changes and must
// not issue a fresh load per search invocation.  Fully booked flights are
// excluded at load time.
type Graph struct {
	WindowStart time.Time
	WindowEnd   time.Time

	departures map[uint64][]FlightNode // departure airport id -> flights sorted by departure time

	Airports map[uint64]model.Airport
	Airlines map[uint64]model.Airline
	Aircraft map[uint64]model.AircraftConfiguration
}

// NewGraph indexes the given flights by departure airport.  Flights outside
// the window, flights whose route is missing, and fully booked flights are
// skipped.  Outbound lists are sorted by departure time so the engine can
// cut off expansion early.
func NewGraph(start, end time.Time, flights []model.Flight, routes map[uint64]model.Route,
	airports map[uint64]model.Airport, airlines map[uint64]model.Airline,
	aircraft map[uint64]model.AircraftConfiguration) *Graph {

	g := &Graph{
		WindowStart: start,
		WindowEnd:   end,
		departures:  make(map[uint64][]FlightNode),
		Airports:    airports,
		Airlines:    airlines,
		Aircraft:    aircraft,
	}
	for _, f := range flights {
		if f.FullyBooked {
			continue
		}
		if f.DepartureTime.Before(start) || !f.DepartureTime.Before(end) {
			continue
		}
		rt, ok := routes[f.RouteID]
		if !ok {
			continue
		}
		g.departures[rt.DepartureAirportID] = append(g.departures[rt.DepartureAirportID], FlightNode{Flight: f, Route: rt})
	}
	for id := range g.departures {
		list := g.departures[id]
		sort.Slice(list, func(i, j int) bool {
			return list[i].Flight.DepartureTime.Before(list[j].Flight.DepartureTime)
		})
		g.departures[id] = list
	}
	return g
}

// Outbound returns the flights departing from the given airport inside the
// graph's window, ordered by departure time.  The returned slice is shared;
// callers must not mutate it.
func (g *Graph) Outbound(airportID uint64) []FlightNode {
	return g.departures[airportID]
}
