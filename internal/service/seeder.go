package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Freeeeeet/boat_booking/internal/model"
	"go.uber.org/zap"
)

// ErrFleetNotEmpty is returned when demo data is seeded into a datastore that already has boats.
var ErrFleetNotEmpty = errors.New("fleet is not empty, refusing to seed")

const (
	DefaultSeedDays = 30

	minSeedPrice       = 100000
	seedPriceDipUnits  = 50000
	seedPriceRiseUnits = 100000
)

var demoBoats = []BoatInput{
	{Name: "Ocean Explorer", Capacity: 50, Description: "Fast and comfortable boat with air conditioning"},
	{Name: "Island Hopper", Capacity: 30, Description: "Smaller boat perfect for scenic routes"},
	{Name: "Blue Wave", Capacity: 75, Description: "Large capacity boat with modern amenities"},
	{Name: "Sea Breeze", Capacity: 40, Description: "Mid-size boat with outdoor seating"},
}

var demoRoutes = []RouteInput{
	{DeparturePort: "Bali", DestinationPort: "Gili Trawangan", DurationMinutes: 90, BasePrice: model.MoneyFromUnits(350000)},
	{DeparturePort: "Bali", DestinationPort: "Lombok", DurationMinutes: 120, BasePrice: model.MoneyFromUnits(450000)},
	{DeparturePort: "Lombok", DestinationPort: "Gili Air", DurationMinutes: 45, BasePrice: model.MoneyFromUnits(200000)},
	{DeparturePort: "Gili Trawangan", DestinationPort: "Bali", DurationMinutes: 90, BasePrice: model.MoneyFromUnits(350000)},
	{DeparturePort: "Lombok", DestinationPort: "Bali", DurationMinutes: 120, BasePrice: model.MoneyFromUnits(450000)},
	{DeparturePort: "Gili Air", DestinationPort: "Lombok", DurationMinutes: 45, BasePrice: model.MoneyFromUnits(200000)},
}

type SeedResult struct {
	Boats     int `json:"boats"`
	Routes    int `json:"routes"`
	Schedules int `json:"schedules"`
}

// SeedDemoData creates the demo fleet and two or three sailings per route per
// day for the given number of days, starting today in the configured time zone.
// Sailings that would already have left are skipped.
func (s *ScheduleService) SeedDemoData(ctx context.Context, days int, rnd *rand.Rand) (SeedResult, error) {
	var result SeedResult

	existing, err := s.ListBoats(ctx, false)
	if err != nil {
		return result, err
	}
	if len(existing) > 0 {
		return result, ErrFleetNotEmpty
	}

	boats := make([]*model.Boat, 0, len(demoBoats))
	for _, in := range demoBoats {
		boat, err := s.CreateBoat(ctx, in)
		if err != nil {
			return result, fmt.Errorf("seed boat %q: %w", in.Name, err)
		}
		boats = append(boats, boat)
		result.Boats++
	}

	routes := make([]*model.Route, 0, len(demoRoutes))
	for _, in := range demoRoutes {
		route, err := s.CreateRoute(ctx, in)
		if err != nil {
			return result, fmt.Errorf("seed route %s → %s: %w", in.DeparturePort, in.DestinationPort, err)
		}
		routes = append(routes, route)
		result.Routes++
	}

	now := s.opts.now()
	y, m, d := now.In(s.opts.location).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, s.opts.location)

	for day := 0; day < days; day++ {
		date := today.AddDate(0, 0, day)
		for _, route := range routes {
			sailings := 2 + rnd.IntN(2)
			for i := 0; i < sailings; i++ {
				boat := boats[rnd.IntN(len(boats))]
				departure := date.Add(time.Duration(6+rnd.IntN(13))*time.Hour + time.Duration(rnd.IntN(60))*time.Minute)
				price := seedPrice(route.BasePrice, rnd)

				if !departure.After(now) {
					continue
				}

				_, err := s.CreateSchedule(ctx, ScheduleInput{
					BoatID:        boat.ID,
					RouteID:       route.ID,
					DepartureTime: departure,
					ArrivalTime:   departure.Add(time.Duration(route.DurationMinutes) * time.Minute),
					Price:         price,
				})
				if err != nil {
					return result, fmt.Errorf("seed schedule for %s: %w", route.Name(), err)
				}
				result.Schedules++
			}
		}
	}

	s.logger.Info("Demo data seeded",
		zap.Int("boats", result.Boats),
		zap.Int("routes", result.Routes),
		zap.Int("schedules", result.Schedules),
		zap.Int("days", days),
	)
	return result, nil
}

// seedPrice varies the route base price by -50000..+100000 units, never below 100000.
func seedPrice(base model.Money, rnd *rand.Rand) model.Money {
	variation := model.MoneyFromUnits(int64(rnd.IntN(seedPriceDipUnits+seedPriceRiseUnits+1) - seedPriceDipUnits))
	return max(base+variation, model.MoneyFromUnits(minSeedPrice))
}
