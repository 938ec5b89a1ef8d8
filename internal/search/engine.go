package search

import (
	"strconv"
	"strings"
	"time"
)

// Filters narrows expansion during the search itself.  Applying them inline
// rather than post-hoc avoids growing branches that can never surface.
// Zero values disable the airline and price filters; the time-of-day window
// bounds are nil when unset and apply to the first leg of a path only.
type Filters struct {
	AirlineID       uint64    // restrict every leg to this airline; 0 = any
	MaxEconomyCents uint32    // cumulative economy price ceiling; 0 = no ceiling
	DepartAfter     *int      // first-leg departure, minutes since midnight UTC
	DepartBefore    *int      // first-leg departure, minutes since midnight UTC
	WindowEnd       time.Time // narrow the search to departures before this; zero = graph window end
}

// Itinerary is one flight path from an origin to a destination: an ordered
// list of legs whose airports chain and whose departure times respect the
// minimum connection time.
type Itinerary struct {
	Legs []FlightNode
}

// Transfers returns the number of intermediate stops (legs minus one).
func (it Itinerary) Transfers() int { return len(it.Legs) - 1 }

// key is the de-dup identity of an itinerary: the ordered tuple of flight
// ids.  Two paths over the same flight sequence are the same itinerary even
// when discovered through different intermediate states.
func (it Itinerary) key() string {
	var b strings.Builder
	for i, leg := range it.Legs {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(strconv.FormatUint(leg.Flight.ID, 10))
	}
	return b.String()
}

// label is the per-airport state of one round: the best known arrival at
// that airport, with the cumulative economy price as a lexicographic
// tie-break, and the path that produced it.
type label struct {
	arrival time.Time
	cost    uint32
	path    []FlightNode
}

// improves reports whether the candidate (arrival, cost) beats the label.
// Earlier arrival wins; equal arrivals break on lower cumulative price.
func (l *label) improves(arrival time.Time, cost uint32) bool {
	if l == nil {
		return true
	}
	if arrival.Before(l.arrival) {
		return true
	}
	return arrival.Equal(l.arrival) && cost < l.cost
}

// Engine runs round-based earliest-arrival searches over a loaded flight
// graph.  One engine serves many Search calls against the same graph; it
// holds no per-search state.
type Engine struct {
	graph *Graph
}

// NewEngine returns an engine bound to the given graph.
func NewEngine(g *Graph) *Engine { return &Engine{graph: g} }

// Search finds itineraries from any of the origin airports to any of the
// destination airports departing on the given date, bucketed by transfer
// count 0..maxTransfers.
//
// The algorithm runs maxTransfers+2 rounds.  Round 0 seeds every origin
// with an arrival at start of day, an empty path and zero cost.  Round k
// expands each airport whose label improved in round k-1: every outbound
// flight departing no earlier than the recorded arrival (plus the minimum
// connection time when the path is non-empty) yields a candidate label at
// its arrival airport.  A candidate recorded at a true destination with k
// legs is emitted into bucket k-1, de-duplicated by flight-id tuple.
// Labels that saw no improvement are carried forward so later rounds can
// still extend them, and the search terminates early when a round marks no
// airport.  A connection pushed past the graph's window by the minimum
// transfer time simply finds no departures and dies without emitting.
func (e *Engine) Search(origins, destinations []uint64, date time.Time, maxTransfers, minTransferMinutes int, f Filters) map[int][]Itinerary {
	out := make(map[int][]Itinerary)
	if len(origins) == 0 || len(destinations) == 0 || maxTransfers < 0 {
		return out
	}

	destSet := make(map[uint64]struct{}, len(destinations))
	for _, id := range destinations {
		destSet[id] = struct{}{}
	}

	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	minTransfer := time.Duration(minTransferMinutes) * time.Minute

	windowEnd := e.graph.WindowEnd
	if !f.WindowEnd.IsZero() && f.WindowEnd.Before(windowEnd) {
		windowEnd = f.WindowEnd
	}

	// Round 0: seed the origins.
	prev := make(map[uint64]*label, len(origins))
	marked := make(map[uint64]struct{}, len(origins))
	for _, id := range origins {
		prev[id] = &label{arrival: startOfDay}
		marked[id] = struct{}{}
	}

	seen := make(map[string]struct{})

	for k := 1; k <= maxTransfers+1; k++ {
		cur := make(map[uint64]*label)
		next := make(map[uint64]struct{})

		for airportID := range marked {
			from := prev[airportID]
			if from == nil {
				continue
			}
			earliest := from.arrival
			if len(from.path) > 0 {
				earliest = earliest.Add(minTransfer)
			}
			for _, fn := range e.graph.Outbound(airportID) {
				dep := fn.Flight.DepartureTime
				if !dep.Before(windowEnd) {
					break // outbound lists are sorted by departure
				}
				if dep.Before(earliest) {
					continue
				}
				if f.AirlineID != 0 && fn.Route.AirlineID != f.AirlineID {
					continue
				}
				if len(from.path) == 0 && !departsWithin(dep, f.DepartAfter, f.DepartBefore) {
					continue
				}
				cost := from.cost + fn.Flight.EconomyPriceCents
				if f.MaxEconomyCents > 0 && cost > f.MaxEconomyCents {
					continue
				}

				path := make([]FlightNode, len(from.path), len(from.path)+1)
				copy(path, from.path)
				path = append(path, fn)

				if _, isDest := destSet[fn.Route.ArrivalAirportID]; isDest {
					it := Itinerary{Legs: path}
					if _, dup := seen[it.key()]; !dup {
						seen[it.key()] = struct{}{}
						out[it.Transfers()] = append(out[it.Transfers()], it)
					}
				}

				// A candidate must beat both this round's best and the best
				// known from earlier rounds; otherwise a worse label would be
				// marked and re-expanded.
				arrAirport := fn.Route.ArrivalAirportID
				if cur[arrAirport].improves(fn.Flight.ArrivalTime, cost) && prev[arrAirport].improves(fn.Flight.ArrivalTime, cost) {
					cur[arrAirport] = &label{arrival: fn.Flight.ArrivalTime, cost: cost, path: path}
					next[arrAirport] = struct{}{}
				}
			}
		}

		if len(next) == 0 {
			break
		}

		// Carry forward any airport this round did not improve on.
		for airportID, old := range prev {
			if _, ok := cur[airportID]; !ok {
				cur[airportID] = old
			}
		}

		prev = cur
		marked = next
	}

	return out
}

// departsWithin checks a departure's time of day against an optional
// [after, before] window expressed in minutes since midnight UTC.
func departsWithin(dep time.Time, after, before *int) bool {
	minutes := dep.UTC().Hour()*60 + dep.UTC().Minute()
	if after != nil && minutes < *after {
		return false
	}
	if before != nil && minutes > *before {
		return false
	}
	return true
}
