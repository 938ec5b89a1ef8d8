package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/airline-reservation/internal/repository"
	"github.com/iliyamo/airline-reservation/internal/search"
)

// defaultGraphTTL bounds how stale a cached flight graph may get. Newly
// scheduled or newly sold-out flights become visible after at most this long.
const defaultGraphTTL = time.Minute

// SearchHandler serves itinerary search. It keeps the most recently built
// flight graph cached so that a single load call services many search
// invocations against the same date window; the graph is rebuilt when the
// window or the load-time filters change, or when the cached build is older
// than GraphTTL.
type SearchHandler struct {
	FlightRepo  *repository.FlightRepo
	AirportRepo *repository.AirportRepo
	BookingRepo *repository.BookingRepo

	WindowDays     int           // how many days of flights one window covers
	MinTransferMin int           // default minimum connection time
	GraphTTL       time.Duration // max age of a cached graph

	mu         sync.Mutex
	graphKey   string
	graph      *search.Graph
	graphBuilt time.Time
}

// NewSearchHandler constructs a SearchHandler. All repositories must be
// non-nil.
func NewSearchHandler(flightRepo *repository.FlightRepo, airportRepo *repository.AirportRepo, bookingRepo *repository.BookingRepo, windowDays, minTransferMin int) *SearchHandler {
	if flightRepo == nil || airportRepo == nil || bookingRepo == nil {
		panic("nil repository passed to NewSearchHandler")
	}
	if windowDays < 1 {
		windowDays = 2
	}
	return &SearchHandler{
		FlightRepo:     flightRepo,
		AirportRepo:    airportRepo,
		BookingRepo:    bookingRepo,
		WindowDays:     windowDays,
		MinTransferMin: minTransferMin,
		GraphTTL:       defaultGraphTTL,
	}
}

// cachedGraphLocked returns the cached graph when the key matches and the
// build has not aged past GraphTTL. Callers must hold mu.
func (h *SearchHandler) cachedGraphLocked(key string, now time.Time) (*search.Graph, bool) {
	if h.graph == nil || h.graphKey != key {
		return nil, false
	}
	if h.GraphTTL > 0 && now.Sub(h.graphBuilt) >= h.GraphTTL {
		return nil, false
	}
	return h.graph, true
}

// loadGraph returns the cached graph for the given window and load filter,
// rebuilding it when either changed since the previous call or the cached
// build went stale.
func (h *SearchHandler) loadGraph(c echo.Context, start, end time.Time, wf repository.WindowFilter) (*search.Graph, error) {
	key := fmt.Sprintf("%s|%s|%d|%d", start.Format("2006-01-02"), end.Format("2006-01-02"), wf.AirlineID, wf.MaxEconomyCents)
	h.mu.Lock()
	defer h.mu.Unlock()
	now := time.Now()
	if g, ok := h.cachedGraphLocked(key, now); ok {
		return g, nil
	}
	data, err := h.FlightRepo.LoadWindow(c.Request().Context(), start, end, wf)
	if err != nil {
		return nil, err
	}
	h.graph = search.NewGraph(start, end, data.Flights, data.Routes, data.Airports, data.Airlines, data.Aircraft)
	h.graphKey = key
	h.graphBuilt = now
	return h.graph, nil
}

// searchParams is the parsed and validated query of GET /v1/search.
type searchParams struct {
	origins       []uint64
	destinations  []uint64
	date          time.Time
	maxTransfers  int
	minTransfer   int
	filters       search.Filters
	query         search.JourneyQuery
	excludeBooked bool
}

// validationError renders a 400 with field-level detail. Search-path
// errors are purely request-level and never touch shared state.
func validationError(c echo.Context, field, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"error":   "validation_error",
		"field":   field,
		"message": msg,
	})
}

// parseSearchParams validates the common search query parameters. It
// returns a non-nil error response (already written) when validation
// fails.
func (h *SearchHandler) parseSearchParams(c echo.Context) (*searchParams, error, bool) {
	p := &searchParams{minTransfer: h.MinTransferMin, maxTransfers: 2}

	originID, err := strconv.ParseUint(c.QueryParam("origin"), 10, 64)
	if err != nil || originID == 0 {
		return nil, validationError(c, "origin", "origin id is required"), false
	}
	destID, err := strconv.ParseUint(c.QueryParam("destination"), 10, 64)
	if err != nil || destID == 0 {
		return nil, validationError(c, "destination", "destination id is required"), false
	}
	originType := locType(c.QueryParam("origin_type"))
	destType := locType(c.QueryParam("destination_type"))

	ctx := c.Request().Context()
	p.origins, err = h.AirportRepo.ResolveLocation(ctx, originID, originType)
	if err != nil {
		return nil, locationError(c, "origin", err), false
	}
	p.destinations, err = h.AirportRepo.ResolveLocation(ctx, destID, destType)
	if err != nil {
		return nil, locationError(c, "destination", err), false
	}

	if raw := c.QueryParam("date"); raw != "" {
		p.date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, validationError(c, "date", "date must be YYYY-MM-DD"), false
		}
	}

	if raw := c.QueryParam("max_transfers"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > 3 {
			return nil, validationError(c, "max_transfers", "max_transfers must be between 0 and 3"), false
		}
		p.maxTransfers = n
	}
	if raw := c.QueryParam("min_transfer_minutes"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, validationError(c, "min_transfer_minutes", "must be a non-negative integer"), false
		}
		p.minTransfer = n
	}

	if raw := c.QueryParam("airline_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, validationError(c, "airline_id", "must be a numeric id"), false
		}
		p.filters.AirlineID = n
	}
	if raw := c.QueryParam("max_price"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, validationError(c, "max_price", "must be a price in cents"), false
		}
		p.filters.MaxEconomyCents = uint32(n)
		p.query.MaxEconomyCents = uint32(n)
	}
	if raw := c.QueryParam("depart_after"); raw != "" {
		m, ok := parseClock(raw)
		if !ok {
			return nil, validationError(c, "depart_after", "must be HH:MM"), false
		}
		p.filters.DepartAfter = &m
		p.query.DepartAfter = &m
	}
	if raw := c.QueryParam("depart_before"); raw != "" {
		m, ok := parseClock(raw)
		if !ok {
			return nil, validationError(c, "depart_before", "must be HH:MM"), false
		}
		p.filters.DepartBefore = &m
		p.query.DepartBefore = &m
	}

	p.query.SortBy = strings.ToLower(strings.TrimSpace(c.QueryParam("sort")))
	switch p.query.SortBy {
	case "", search.SortByPrice, search.SortByDuration, search.SortByStops:
	default:
		return nil, validationError(c, "sort", "sort must be price, duration or stops"), false
	}
	p.query.Descending = strings.EqualFold(c.QueryParam("order"), "desc")

	p.query.Page, _ = strconv.Atoi(c.QueryParam("page"))
	if p.query.Page < 1 {
		p.query.Page = 1
	}
	p.query.PageSize, _ = strconv.Atoi(c.QueryParam("page_size"))
	if p.query.PageSize < 1 {
		p.query.PageSize = 20
	}
	if p.query.PageSize > 100 {
		p.query.PageSize = 100
	}

	p.excludeBooked = c.QueryParam("exclude_booked") == "true"
	return p, nil, true
}

// Search handles GET /v1/search. It resolves the endpoints, runs the
// round-based engine over the cached graph for [date, date+WindowDays),
// formats the itineraries and applies filtering, sorting and pagination.
func (h *SearchHandler) Search(c echo.Context) error {
	p, resp, ok := h.parseSearchParams(c)
	if !ok {
		return resp
	}
	if p.date.IsZero() {
		return validationError(c, "date", "date is required")
	}
	if !p.date.After(time.Now().UTC().AddDate(0, 0, -1)) {
		return validationError(c, "date", "departure date must not be in the past")
	}

	start := p.date
	end := p.date.AddDate(0, 0, h.WindowDays)
	graph, err := h.loadGraph(c, start, end, repository.WindowFilter{
		AirlineID:       p.filters.AirlineID,
		MaxEconomyCents: p.filters.MaxEconomyCents,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load flights"})
	}

	engine := search.NewEngine(graph)
	buckets := engine.Search(p.origins, p.destinations, p.date, p.maxTransfers, p.minTransfer, p.filters)
	journeys := search.NewFormatter(graph).FormatAll(buckets, p.maxTransfers)

	if p.excludeBooked {
		userID, err := getUserID(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		booked, err := h.BookingRepo.BookedFlightIDs(c.Request().Context(), userID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
		}
		p.query.BookedFlightIDs = booked
	}

	page, totalPages := search.Apply(journeys, p.query)
	return c.JSON(http.StatusOK, echo.Map{
		"journeys":    page,
		"total_pages": totalPages,
	})
}

// FlexibleDates handles GET /v1/search/flexible. It repeats the search
// once per day of the requested month and reports only the lowest economy
// price per day, or null when no itinerary exists that day. The whole
// month is loaded as one graph so the per-day searches share it.
func (h *SearchHandler) FlexibleDates(c echo.Context) error {
	p, resp, ok := h.parseSearchParams(c)
	if !ok {
		return resp
	}
	month, err := time.Parse("2006-01", c.QueryParam("month"))
	if err != nil {
		return validationError(c, "month", "month must be YYYY-MM")
	}

	start := month
	end := month.AddDate(0, 1, 0).AddDate(0, 0, h.WindowDays-1)
	graph, err := h.loadGraph(c, start, end, repository.WindowFilter{
		AirlineID:       p.filters.AirlineID,
		MaxEconomyCents: p.filters.MaxEconomyCents,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load flights"})
	}

	engine := search.NewEngine(graph)
	type dayPrice struct {
		Date               string  `json:"date"`
		LowestEconomyCents *uint32 `json:"lowest_economy_cents"`
	}
	days := make([]dayPrice, 0, 31)
	for d := month; d.Month() == month.Month(); d = d.AddDate(0, 0, 1) {
		dayFilters := p.filters
		dayFilters.WindowEnd = d.AddDate(0, 0, h.WindowDays)
		buckets := engine.Search(p.origins, p.destinations, d, p.maxTransfers, p.minTransfer, dayFilters)
		var lowest *uint32
		for _, its := range buckets {
			for _, it := range its {
				var total uint32
				for _, leg := range it.Legs {
					total += leg.Flight.EconomyPriceCents
				}
				if lowest == nil || total < *lowest {
					v := total
					lowest = &v
				}
			}
		}
		days = append(days, dayPrice{Date: d.Format("2006-01-02"), LowestEconomyCents: lowest})
	}
	return c.JSON(http.StatusOK, echo.Map{"days": days})
}

// locType normalizes the location type discriminator, defaulting to airport.
func locType(raw string) string {
	if strings.EqualFold(raw, repository.LocationCity) {
		return repository.LocationCity
	}
	return repository.LocationAirport
}

// locationError maps a ResolveLocation failure onto the response.
func locationError(c echo.Context, field string, err error) error {
	if err == repository.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": field + " not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}

// parseClock parses "HH:MM" into minutes since midnight.
func parseClock(raw string) (int, bool) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
