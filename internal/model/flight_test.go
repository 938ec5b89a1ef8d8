package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	day   = time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	route = Route{
		ID:                 1,
		AirlineID:          1,
		DepartureAirportID: 1,
		ArrivalAirportID:   2,
		FlightNumber:       "TW101",
		PeriodStart:        day.AddDate(0, -1, 0),
		PeriodEnd:          day.AddDate(0, 1, 0),
	}
)

func TestFlightValidate(t *testing.T) {
	tests := []struct {
		name    string
		dep     time.Time
		arr     time.Time
		wantErr error
	}{
		{name: "valid", dep: day.Add(8 * time.Hour), arr: day.Add(10 * time.Hour)},
		{name: "arrival before departure", dep: day.Add(10 * time.Hour), arr: day.Add(8 * time.Hour), wantErr: ErrFlightTimeOrder},
		{name: "arrival equals departure", dep: day.Add(8 * time.Hour), arr: day.Add(8 * time.Hour), wantErr: ErrFlightTimeOrder},
		{name: "departs before route period", dep: route.PeriodStart.AddDate(0, 0, -1), arr: route.PeriodStart, wantErr: ErrFlightOutsideRoute},
		{name: "arrives after route period", dep: route.PeriodEnd, arr: route.PeriodEnd.Add(2 * time.Hour), wantErr: ErrFlightOutsideRoute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Flight{RouteID: route.ID, DepartureTime: tt.dep, ArrivalTime: tt.arr}
			err := f.Validate(route)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFlightPriceCents(t *testing.T) {
	f := Flight{FirstPriceCents: 30000, BusinessPriceCents: 15000, EconomyPriceCents: 5000}
	assert.Equal(t, uint32(30000), f.PriceCents(ClassFirst))
	assert.Equal(t, uint32(15000), f.PriceCents(ClassBusiness))
	assert.Equal(t, uint32(5000), f.PriceCents(ClassEconomy))
}

func TestFlightDerivedWindows(t *testing.T) {
	dep := day.Add(14 * time.Hour)
	f := Flight{DepartureTime: dep, ArrivalTime: dep.Add(3 * time.Hour)}

	assert.Equal(t, dep.Add(-2*time.Hour), f.CheckInOpens())
	assert.Equal(t, dep.Add(-1*time.Hour), f.CheckInCloses())
	assert.Equal(t, dep.Add(-1*time.Hour), f.BoardingOpens())
	assert.Equal(t, dep, f.BoardingCloses())
	assert.Equal(t, 3*time.Hour, f.Duration())
}

func TestRouteValidate(t *testing.T) {
	now := day
	valid := Route{
		DepartureAirportID: 1,
		ArrivalAirportID:   2,
		PeriodStart:        day.AddDate(0, 0, 1),
		PeriodEnd:          day.AddDate(0, 2, 0),
	}
	require.NoError(t, valid.Validate(now))

	same := valid
	same.ArrivalAirportID = same.DepartureAirportID
	assert.ErrorIs(t, same.Validate(now), ErrRouteSameAirport)

	inverted := valid
	inverted.PeriodStart, inverted.PeriodEnd = inverted.PeriodEnd, inverted.PeriodStart
	assert.ErrorIs(t, inverted.Validate(now), ErrRoutePeriodOrder)

	past := valid
	past.PeriodStart = day.AddDate(0, 0, -1)
	assert.ErrorIs(t, past.Validate(now), ErrRoutePeriodPast)
}

func TestAircraftConfigurationClassOf(t *testing.T) {
	cfg := AircraftConfiguration{
		FirstSeats:    []string{"1A", "1B"},
		BusinessSeats: []string{"4A", "4B", "4C"},
		EconomySeats:  []string{"12A", "12B", "12C", "12D"},
	}
	assert.Equal(t, 9, cfg.TotalSeats())

	class, ok := cfg.ClassOf("1B")
	require.True(t, ok)
	assert.Equal(t, ClassFirst, class)

	class, ok = cfg.ClassOf("4C")
	require.True(t, ok)
	assert.Equal(t, ClassBusiness, class)

	class, ok = cfg.ClassOf("12D")
	require.True(t, ok)
	assert.Equal(t, ClassEconomy, class)

	_, ok = cfg.ClassOf("99Z")
	assert.False(t, ok)
}

func TestSeatSessionActive(t *testing.T) {
	now := day.Add(12 * time.Hour)
	s := SeatSession{EndsAt: now.Add(time.Minute)}
	assert.True(t, s.Active(now))

	// Expiry is exclusive: a session ending exactly now no longer blocks.
	s.EndsAt = now
	assert.False(t, s.Active(now))
}

func TestExtraMaxQuantity(t *testing.T) {
	stackable := Extra{Limit: 3, Stackable: true}
	assert.Equal(t, uint32(3), stackable.MaxQuantity())

	single := Extra{Limit: 3, Stackable: false}
	assert.Equal(t, uint32(1), single.MaxQuantity())
}

func TestClassTypeValid(t *testing.T) {
	assert.True(t, ClassFirst.Valid())
	assert.True(t, ClassBusiness.Valid())
	assert.True(t, ClassEconomy.Valid())
	assert.False(t, ClassType("PREMIUM").Valid())
	assert.False(t, ClassType("").Valid())
}

func TestInsurancePremiumCents(t *testing.T) {
	out := &Flight{InsurancePriceCents: 900}
	back := &Flight{InsurancePriceCents: 1100}

	assert.Equal(t, uint32(2000), InsurancePremiumCents(true, out, back))
	assert.Equal(t, uint32(900), InsurancePremiumCents(true, out))
	assert.Zero(t, InsurancePremiumCents(false, out, back))
	assert.Zero(t, InsurancePremiumCents(true))
}
