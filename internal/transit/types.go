package transit

import (
	"github.com/shopspring/decimal"

	"schedule-transformer/internal/calendar"
	"schedule-transformer/internal/property"
)

// Entity types, keyed where records are referenced by id.
var (
	AgencyType = property.Describe[Agency]("Agency",
		property.Field("id", func(a *Agency) string { return a.ID }, func(a *Agency, v string) { a.ID = v }),
		property.Field("name", func(a *Agency) string { return a.Name }, func(a *Agency, v string) { a.Name = v }),
		property.Field("url", func(a *Agency) string { return a.URL }, func(a *Agency, v string) { a.URL = v }),
		property.Field("timezone", func(a *Agency) string { return a.Timezone }, func(a *Agency, v string) { a.Timezone = v }),
		property.Field("lang", func(a *Agency) string { return a.Lang }, func(a *Agency, v string) { a.Lang = v }),
		property.Field("phone", func(a *Agency) string { return a.Phone }, func(a *Agency, v string) { a.Phone = v }),
	).WithKey("id")

	RouteType = property.Describe[Route]("Route",
		property.Field("id", func(r *Route) string { return r.ID }, func(r *Route, v string) { r.ID = v }),
		property.Field("agency", func(r *Route) *Agency { return r.Agency }, func(r *Route, v *Agency) { r.Agency = v }),
		property.Field("shortName", func(r *Route) string { return r.ShortName }, func(r *Route, v string) { r.ShortName = v }),
		property.Field("longName", func(r *Route) string { return r.LongName }, func(r *Route, v string) { r.LongName = v }),
		property.Field("desc", func(r *Route) string { return r.Desc }, func(r *Route, v string) { r.Desc = v }),
		property.Field("type", func(r *Route) int { return r.Type }, func(r *Route, v int) { r.Type = v }),
		property.Field("url", func(r *Route) string { return r.URL }, func(r *Route, v string) { r.URL = v }),
		property.Field("color", func(r *Route) string { return r.Color }, func(r *Route, v string) { r.Color = v }),
		property.Field("textColor", func(r *Route) string { return r.TextColor }, func(r *Route, v string) { r.TextColor = v }),
	).WithKey("id")

	TripType = property.Describe[Trip]("Trip",
		property.Field("id", func(t *Trip) string { return t.ID }, func(t *Trip, v string) { t.ID = v }),
		property.Field("route", func(t *Trip) *Route { return t.Route }, func(t *Trip, v *Route) { t.Route = v }),
		property.Field("serviceId", func(t *Trip) string { return t.ServiceID }, func(t *Trip, v string) { t.ServiceID = v }),
		property.Field("headsign", func(t *Trip) string { return t.Headsign }, func(t *Trip, v string) { t.Headsign = v }),
		property.Field("shortName", func(t *Trip) string { return t.ShortName }, func(t *Trip, v string) { t.ShortName = v }),
		property.Field("directionId", func(t *Trip) *int { return t.DirectionID }, func(t *Trip, v *int) { t.DirectionID = v }),
		property.Field("blockId", func(t *Trip) string { return t.BlockID }, func(t *Trip, v string) { t.BlockID = v }),
		property.Field("shapeId", func(t *Trip) string { return t.ShapeID }, func(t *Trip, v string) { t.ShapeID = v }),
		property.Field("wheelchairAccessible", func(t *Trip) int { return t.WheelchairAccessible }, func(t *Trip, v int) { t.WheelchairAccessible = v }),
		property.Field("express", func(t *Trip) bool { return t.Express }, func(t *Trip, v bool) { t.Express = v }),
	).WithKey("id")

	StopType = property.Describe[Stop]("Stop",
		property.Field("id", func(s *Stop) string { return s.ID }, func(s *Stop, v string) { s.ID = v }),
		property.Field("code", func(s *Stop) string { return s.Code }, func(s *Stop, v string) { s.Code = v }),
		property.Field("name", func(s *Stop) string { return s.Name }, func(s *Stop, v string) { s.Name = v }),
		property.Field("desc", func(s *Stop) string { return s.Desc }, func(s *Stop, v string) { s.Desc = v }),
		property.Field("lat", func(s *Stop) float64 { return s.Lat }, func(s *Stop, v float64) { s.Lat = v }),
		property.Field("lon", func(s *Stop) float64 { return s.Lon }, func(s *Stop, v float64) { s.Lon = v }),
		property.Field("zoneId", func(s *Stop) string { return s.ZoneID }, func(s *Stop, v string) { s.ZoneID = v }),
		property.Field("url", func(s *Stop) string { return s.URL }, func(s *Stop, v string) { s.URL = v }),
		property.Field("locationType", func(s *Stop) int { return s.LocationType }, func(s *Stop, v int) { s.LocationType = v }),
		property.Field("parentStation", func(s *Stop) *Stop { return s.ParentStation }, func(s *Stop, v *Stop) { s.ParentStation = v }),
		property.Field("wheelchairBoarding", func(s *Stop) int { return s.WheelchairBoarding }, func(s *Stop, v int) { s.WheelchairBoarding = v }),
	).WithKey("id")

	StopTimeType = property.Describe[StopTime]("StopTime",
		property.Field("trip", func(s *StopTime) *Trip { return s.Trip }, func(s *StopTime, v *Trip) { s.Trip = v }),
		property.Field("stop", func(s *StopTime) *Stop { return s.Stop }, func(s *StopTime, v *Stop) { s.Stop = v }),
		property.Field("arrivalTime", func(s *StopTime) *int { return s.ArrivalTime }, func(s *StopTime, v *int) { s.ArrivalTime = v }),
		property.Field("departureTime", func(s *StopTime) *int { return s.DepartureTime }, func(s *StopTime, v *int) { s.DepartureTime = v }),
		property.Field("stopSequence", func(s *StopTime) int { return s.StopSequence }, func(s *StopTime, v int) { s.StopSequence = v }),
		property.Field("stopHeadsign", func(s *StopTime) string { return s.StopHeadsign }, func(s *StopTime, v string) { s.StopHeadsign = v }),
		property.Field("pickupType", func(s *StopTime) int { return s.PickupType }, func(s *StopTime, v int) { s.PickupType = v }),
		property.Field("dropOffType", func(s *StopTime) int { return s.DropOffType }, func(s *StopTime, v int) { s.DropOffType = v }),
		property.Field("shapeDistTraveled", func(s *StopTime) *float64 { return s.ShapeDistTraveled }, func(s *StopTime, v *float64) { s.ShapeDistTraveled = v }),
	)

	ServiceCalendarType = property.Describe[ServiceCalendar]("ServiceCalendar",
		property.Field("serviceId", func(c *ServiceCalendar) string { return c.ServiceID }, func(c *ServiceCalendar, v string) { c.ServiceID = v }),
		property.Field("monday", func(c *ServiceCalendar) bool { return c.Monday }, func(c *ServiceCalendar, v bool) { c.Monday = v }),
		property.Field("tuesday", func(c *ServiceCalendar) bool { return c.Tuesday }, func(c *ServiceCalendar, v bool) { c.Tuesday = v }),
		property.Field("wednesday", func(c *ServiceCalendar) bool { return c.Wednesday }, func(c *ServiceCalendar, v bool) { c.Wednesday = v }),
		property.Field("thursday", func(c *ServiceCalendar) bool { return c.Thursday }, func(c *ServiceCalendar, v bool) { c.Thursday = v }),
		property.Field("friday", func(c *ServiceCalendar) bool { return c.Friday }, func(c *ServiceCalendar, v bool) { c.Friday = v }),
		property.Field("saturday", func(c *ServiceCalendar) bool { return c.Saturday }, func(c *ServiceCalendar, v bool) { c.Saturday = v }),
		property.Field("sunday", func(c *ServiceCalendar) bool { return c.Sunday }, func(c *ServiceCalendar, v bool) { c.Sunday = v }),
		property.Field("startDate", func(c *ServiceCalendar) calendar.Date { return c.StartDate }, func(c *ServiceCalendar, v calendar.Date) { c.StartDate = v }),
		property.Field("endDate", func(c *ServiceCalendar) calendar.Date { return c.EndDate }, func(c *ServiceCalendar, v calendar.Date) { c.EndDate = v }),
	).WithKey("serviceId")

	FareAttributeType = property.Describe[FareAttribute]("FareAttribute",
		property.Field("id", func(f *FareAttribute) string { return f.ID }, func(f *FareAttribute, v string) { f.ID = v }),
		property.Field("price", func(f *FareAttribute) decimal.Decimal { return f.Price }, func(f *FareAttribute, v decimal.Decimal) { f.Price = v }),
		property.Field("currencyType", func(f *FareAttribute) string { return f.CurrencyType }, func(f *FareAttribute, v string) { f.CurrencyType = v }),
		property.Field("paymentMethod", func(f *FareAttribute) int { return f.PaymentMethod }, func(f *FareAttribute, v int) { f.PaymentMethod = v }),
		property.Field("transfers", func(f *FareAttribute) *int { return f.Transfers }, func(f *FareAttribute, v *int) { f.Transfers = v }),
		property.Field("transferDuration", func(f *FareAttribute) *int { return f.TransferDuration }, func(f *FareAttribute, v *int) { f.TransferDuration = v }),
	).WithKey("id")

	FareRuleType = property.Describe[FareRule]("FareRule",
		property.Field("fare", func(f *FareRule) *FareAttribute { return f.Fare }, func(f *FareRule, v *FareAttribute) { f.Fare = v }),
		property.Field("route", func(f *FareRule) *Route { return f.Route }, func(f *FareRule, v *Route) { f.Route = v }),
		property.Field("originId", func(f *FareRule) string { return f.OriginID }, func(f *FareRule, v string) { f.OriginID = v }),
		property.Field("destinationId", func(f *FareRule) string { return f.DestinationID }, func(f *FareRule, v string) { f.DestinationID = v }),
		property.Field("containsId", func(f *FareRule) string { return f.ContainsID }, func(f *FareRule, v string) { f.ContainsID = v }),
	)
)

// LoadOrder lists the entity types so that referenced records load before
// the records referencing them.
func LoadOrder() []*property.Type {
	return []*property.Type{
		AgencyType,
		StopType,
		RouteType,
		ServiceCalendarType,
		TripType,
		StopTimeType,
		FareAttributeType,
		FareRuleType,
	}
}
