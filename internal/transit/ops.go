package transit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"schedule-transformer/internal/calendar"
	"schedule-transformer/internal/property"
	"schedule-transformer/internal/rules"
	"schedule-transformer/internal/transform"
	"schedule-transformer/pkg/logger"
)

// Names of the ops registered by RegisterOps.
const (
	OpRemoveEmptyTrips  = "remove_empty_trips"
	OpUppercaseHeadsign = "uppercase_headsign"
	OpCalendarExtension = "calendar_extension"
)

// RegisterOps adds the ops of the model to ops.
func RegisterOps(ops *rules.Ops) error {
	return errors.Join(
		ops.Register(OpRemoveEmptyTrips, func() any { return &RemoveEmptyTrips{} }),
		ops.Register(OpUppercaseHeadsign, func() any { return UppercaseHeadsign{} }),
		ops.Register(OpCalendarExtension, func() any { return &CalendarExtension{} }),
	)
}

// RemoveEmptyTrips removes trips without stop times. With Routes set, routes
// left without trips are removed as well, together with the fare rules
// naming them.
type RemoveEmptyTrips struct {
	Routes bool `yaml:"routes"`
}

func (s *RemoveEmptyTrips) Name() string { return OpRemoveEmptyTrips }

func (s *RemoveEmptyTrips) Apply(ctx context.Context, env *transform.Env) error {
	trips, err := removeChildless(env, TripType, StopTimesByTrip)
	if err != nil {
		return err
	}

	log := logger.FromContext(ctx).WithComponent(OpRemoveEmptyTrips)
	log.Infow("empty trips removed", "count", len(trips))

	if !s.Routes {
		return nil
	}

	env.Store.ClearCaches()

	routes, err := removeChildless(env, RouteType, TripsByRoute)
	if err != nil {
		return err
	}

	env.Store.ClearCaches()

	fares, err := removeChildren(env, routes, FareRuleType, FareRulesByRoute)
	if err != nil {
		return err
	}

	log.Infow("empty routes removed", "count", len(routes), "fare_rules", fares)

	return nil
}

// removeChildless removes the entities of t without children in
// relationship and returns them.
func removeChildless(env *transform.Env, t *property.Type, relationship string) ([]property.Entity, error) {
	var childless []property.Entity

	for _, e := range env.Store.All(t) {
		children, err := env.Store.Index(relationship, e)
		if err != nil {
			return nil, err
		}

		if len(children) == 0 {
			childless = append(childless, e)
		}
	}

	removeSet(env, t, childless)

	return childless, nil
}

// removeChildren removes the children of parents in relationship. Parents
// may already be gone from the store; children still point at them.
func removeChildren(env *transform.Env, parents []property.Entity, child *property.Type, relationship string) (int, error) {
	var children []property.Entity

	for _, p := range parents {
		group, err := env.Store.Index(relationship, p)
		if err != nil {
			return 0, err
		}

		children = append(children, group...)
	}

	return removeSet(env, child, children), nil
}

func removeSet(env *transform.Env, t *property.Type, entities []property.Entity) int {
	if len(entities) == 0 {
		return 0
	}

	drop := make(map[property.Entity]bool, len(entities))
	for _, e := range entities {
		drop[e] = true
	}

	return env.Store.RemoveFunc(t, func(e property.Entity) bool { return drop[e] })
}

// UppercaseHeadsign upper-cases the headsign of matched trips.
type UppercaseHeadsign struct{}

func (UppercaseHeadsign) Run(_ context.Context, _ *transform.Env, e property.Entity) error {
	trip, ok := e.(*Trip)
	if !ok {
		return fmt.Errorf("%s: %T is not a trip", OpUppercaseHeadsign, e)
	}

	trip.Headsign = strings.ToUpper(trip.Headsign)

	return nil
}

// CalendarExtension pushes the end date of service calendars forward. Days
// extends every calendar by that many days; Until extends calendars ending
// earlier up to that date. When DropBefore is set, calendars ending before
// it are removed together with their trips first and are not extended.
type CalendarExtension struct {
	Days       int    `yaml:"days"`
	Until      string `yaml:"until"`
	DropBefore string `yaml:"drop_before"`
}

func (f *CalendarExtension) CreateStages(p *transform.Pipeline) error {
	if f.Days < 0 {
		return fmt.Errorf("%s: negative days %d", OpCalendarExtension, f.Days)
	}

	var until, cutoff calendar.Date

	if f.Until != "" {
		d, err := calendar.Parse(f.Until)
		if err != nil {
			return fmt.Errorf("%s: until: %w", OpCalendarExtension, err)
		}

		until = d
	}

	if f.Days == 0 && until.IsZero() {
		return fmt.Errorf("%s: needs days or until", OpCalendarExtension)
	}

	if f.DropBefore != "" {
		d, err := calendar.Parse(f.DropBefore)
		if err != nil {
			return fmt.Errorf("%s: drop_before: %w", OpCalendarExtension, err)
		}

		cutoff = d
		p.Add(transform.StageFunc("drop_expired_calendars", func(_ context.Context, env *transform.Env) error {
			return dropExpired(env, cutoff)
		}))
	}

	p.Add(transform.StageFunc(OpCalendarExtension, func(ctx context.Context, env *transform.Env) error {
		extended := 0

		for _, e := range env.Store.All(ServiceCalendarType) {
			c := e.(*ServiceCalendar)
			end := c.EndDate.AddDays(f.Days)

			if !until.IsZero() && end.Before(until) {
				end = until
			}

			if end != c.EndDate {
				c.EndDate = end
				extended++
			}
		}

		logger.FromContext(ctx).WithComponent(OpCalendarExtension).Infow("calendars extended", "count", extended)

		return nil
	}))

	return nil
}

// dropExpired removes calendars ending before cutoff, the trips running on
// them and the stop times of those trips.
func dropExpired(env *transform.Env, cutoff calendar.Date) error {
	var expired []property.Entity

	for _, e := range env.Store.All(ServiceCalendarType) {
		if e.(*ServiceCalendar).EndDate.Before(cutoff) {
			expired = append(expired, e)
		}
	}

	removeSet(env, ServiceCalendarType, expired)

	var trips []property.Entity

	for _, e := range expired {
		group, err := env.Store.Index(TripsByServiceID, e.(*ServiceCalendar).ServiceID)
		if err != nil {
			return err
		}

		trips = append(trips, group...)
	}

	removeSet(env, TripType, trips)
	env.Store.ClearCaches()

	_, err := removeChildren(env, trips, StopTimeType, StopTimesByTrip)

	return err
}
