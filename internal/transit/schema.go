package transit

import (
	"errors"

	"schedule-transformer/internal/codec"
	"schedule-transformer/internal/property"
	"schedule-transformer/internal/schema"
)

// CodecExpress is the codec of the trip service type: "E" for express,
// "L" for local.
const CodecExpress = "express"

var (
	ErrRouteName = errors.New("route needs a short or a long name")
	ErrTimeOrder = errors.New("departure before arrival")
)

// NewCodecs returns the codec registry of the model.
func NewCodecs(types *property.Registry) *codec.Registry {
	codecs := codec.NewRegistry(types)
	codecs.Register(CodecExpress, codec.FlagFactory("E", "L"))

	return codecs
}

// Validators returns the record configuration carrying the validators of
// the model.
func Validators() []schema.RecordConfig {
	return []schema.RecordConfig{
		{
			Type: RouteType.Name(),
			Validators: []schema.Validator{{
				Name: "route_name",
				Check: func(e property.Entity) error {
					r := e.(*Route)
					if r.ShortName == "" && r.LongName == "" {
						return ErrRouteName
					}

					return nil
				},
			}},
		},
		{
			Type: StopTimeType.Name(),
			Validators: []schema.Validator{{
				Name: "time_order",
				Check: func(e property.Entity) error {
					st := e.(*StopTime)
					if st.ArrivalTime != nil && st.DepartureTime != nil && *st.DepartureTime < *st.ArrivalTime {
						return ErrTimeOrder
					}

					return nil
				},
			}},
		},
	}
}
