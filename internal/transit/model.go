package transit

import (
	"github.com/shopspring/decimal"

	"schedule-transformer/internal/calendar"
)

type Agency struct {
	_        struct{} `csv:"record=agency.txt,prefix=agency_,required,order=agency_id|agency_name|agency_url|agency_timezone"`
	ID       string   `csv:"codec=agency_id,optional"`
	Name     string
	URL      string
	Timezone string
	Lang     string `csv:"optional"`
	Phone    string `csv:"optional"`
}

type Route struct {
	_         struct{} `csv:"record=routes.txt,prefix=route_,required,order=route_id|agency_id|route_short_name|route_long_name|route_type"`
	ID        string
	Agency    *Agency `csv:"name=agency_id,optional"`
	ShortName string  `csv:"optional"`
	LongName  string  `csv:"optional"`
	Desc      string  `csv:"optional"`
	Type      int
	URL       string `csv:"optional"`
	Color     string `csv:"optional"`
	TextColor string `csv:"optional"`
}

type Trip struct {
	_                    struct{} `csv:"record=trips.txt,required,order=route_id|service_id|trip_id"`
	ID                   string   `csv:"name=trip_id"`
	Route                *Route   `csv:"name=route_id"`
	ServiceID            string
	Headsign             string `csv:"name=trip_headsign,optional"`
	ShortName            string `csv:"name=trip_short_name,optional"`
	DirectionID          *int   `csv:"optional"`
	BlockID              string `csv:"optional"`
	ShapeID              string `csv:"optional"`
	WheelchairAccessible int    `csv:"optional,default=0"`
	Express              bool   `csv:"name=service_type,codec=express,optional"`
}

type Stop struct {
	_                  struct{} `csv:"record=stops.txt,prefix=stop_,required,order=stop_id|stop_code|stop_name|stop_lat|stop_lon"`
	ID                 string
	Code               string `csv:"optional"`
	Name               string
	Desc               string `csv:"optional"`
	Lat                float64
	Lon                float64
	ZoneID             string `csv:"name=zone_id,optional"`
	URL                string `csv:"optional"`
	LocationType       int    `csv:"name=location_type,optional,default=0"`
	ParentStation      *Stop  `csv:"name=parent_station,optional"`
	WheelchairBoarding int    `csv:"name=wheelchair_boarding,optional,default=0"`
}

// StopTime times are seconds since midnight of the service day; nil means
// the time is not given.
type StopTime struct {
	_                 struct{} `csv:"record=stop_times.txt,required,order=trip_id|arrival_time|departure_time|stop_id|stop_sequence"`
	Trip              *Trip    `csv:"name=trip_id"`
	Stop              *Stop    `csv:"name=stop_id"`
	ArrivalTime       *int     `csv:"codec=clock_time,optional"`
	DepartureTime     *int     `csv:"codec=clock_time,optional"`
	StopSequence      int
	StopHeadsign      string   `csv:"optional"`
	PickupType        int      `csv:"optional,default=0"`
	DropOffType       int      `csv:"optional,default=0"`
	ShapeDistTraveled *float64 `csv:"optional"`
}

type ServiceCalendar struct {
	_         struct{} `csv:"record=calendar.txt,order=service_id|monday|tuesday|wednesday|thursday|friday|saturday|sunday|start_date|end_date"`
	ServiceID string
	Monday    bool `csv:"codec=flag"`
	Tuesday   bool `csv:"codec=flag"`
	Wednesday bool `csv:"codec=flag"`
	Thursday  bool `csv:"codec=flag"`
	Friday    bool `csv:"codec=flag"`
	Saturday  bool `csv:"codec=flag"`
	Sunday    bool `csv:"codec=flag"`
	StartDate calendar.Date
	EndDate   calendar.Date
}

type FareAttribute struct {
	_                struct{} `csv:"record=fare_attributes.txt"`
	ID               string   `csv:"name=fare_id"`
	Price            decimal.Decimal
	CurrencyType     string
	PaymentMethod    int
	Transfers        *int `csv:"optional"`
	TransferDuration *int `csv:"optional"`
}

type FareRule struct {
	_             struct{}       `csv:"record=fare_rules.txt"`
	Fare          *FareAttribute `csv:"name=fare_id"`
	Route         *Route         `csv:"name=route_id,optional"`
	OriginID      string         `csv:"optional"`
	DestinationID string         `csv:"optional"`
	ContainsID    string         `csv:"optional"`
}
