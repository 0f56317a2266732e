package service

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/Freeeeeet/boat_booking/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestSeedDemoData(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, nil, fixedClock())

	result, err := h.schedules.SeedDemoData(ctx, 3, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	require.Equal(t, 4, result.Boats)
	require.Equal(t, 6, result.Routes)
	// Days one and two keep every sailing, today's may have left already.
	require.GreaterOrEqual(t, result.Schedules, 6*2*2)
	require.LessOrEqual(t, result.Schedules, 6*3*3)

	boats, err := h.schedules.ListBoats(ctx, true)
	require.NoError(t, err)
	capacity := make(map[int64]int, len(boats))
	for _, boat := range boats {
		capacity[boat.ID] = boat.Capacity
	}

	routes, err := h.schedules.ListRoutes(ctx, true)
	require.NoError(t, err)
	byID := make(map[int64]*model.Route, len(routes))
	for _, route := range routes {
		byID[route.ID] = route
	}

	schedules, err := h.store.Schedules().List(ctx, repository.ScheduleQuery{})
	require.NoError(t, err)
	require.Len(t, schedules, result.Schedules)

	lastDay := testNow.AddDate(0, 0, 3).Truncate(24 * time.Hour)
	for _, s := range schedules {
		route := byID[s.RouteID]
		require.NotNil(t, route)
		require.Equal(t, capacity[s.BoatID], s.AvailableSeats)
		require.Equal(t, model.ScheduleStatusActive, s.Status)
		require.True(t, s.DepartureTime.After(testNow))
		require.True(t, s.DepartureTime.Before(lastDay))
		require.Equal(t, time.Duration(route.DurationMinutes)*time.Minute, s.ArrivalTime.Sub(s.DepartureTime))

		hour := s.DepartureTime.Hour()
		require.GreaterOrEqual(t, hour, 6)
		require.LessOrEqual(t, hour, 18)

		require.GreaterOrEqual(t, s.Price, model.MoneyFromUnits(100000))
		require.GreaterOrEqual(t, s.Price, route.BasePrice-model.MoneyFromUnits(50000))
		require.LessOrEqual(t, s.Price, route.BasePrice+model.MoneyFromUnits(100000))
	}

	available, err := h.schedules.ListAvailableSchedules(ctx, model.ScheduleFilter{DeparturePort: "Bali"})
	require.NoError(t, err)
	require.NotEmpty(t, available)
}

func TestSeedDemoDataIsDeterministic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a := newHarness(t, nil, fixedClock())
	b := newHarness(t, nil, fixedClock())

	first, err := a.schedules.SeedDemoData(ctx, 5, rand.New(rand.NewPCG(7, 7)))
	require.NoError(t, err)
	second, err := b.schedules.SeedDemoData(ctx, 5, rand.New(rand.NewPCG(7, 7)))
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestSeedDemoDataRefusesExistingFleet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, nil, fixedClock())
	newFleet(t, h, 10, "Sanur", "Nusa Penida")

	result, err := h.schedules.SeedDemoData(ctx, 1, rand.New(rand.NewPCG(1, 1)))
	require.ErrorIs(t, err, ErrFleetNotEmpty)
	require.Zero(t, result)
}

func TestSeedPriceFloor(t *testing.T) {
	t.Parallel()

	rnd := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 500; i++ {
		price := seedPrice(model.MoneyFromUnits(120000), rnd)
		require.GreaterOrEqual(t, price, model.MoneyFromUnits(100000))
		require.LessOrEqual(t, price, model.MoneyFromUnits(220000))
	}
}
