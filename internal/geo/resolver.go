package geo

import (
	"context"
	"errors"
	"fmt"

	geog "github.com/codingsince1985/geo-golang"
	"github.com/codingsince1985/geo-golang/openstreetmap"
	"github.com/ringsaturn/tzf"
)

// ErrUnresolvable — место не нашлось. Пользователь может уточнить ввод,
// состояние диалога при этом не теряется.
var ErrUnresolvable = errors.New("location not resolvable")

type Location struct {
	Lat      float64
	Lon      float64
	Timezone string
	Address  string
}

type Resolver interface {
	Resolve(ctx context.Context, place string) (*Location, error)
}

// NominatimResolver: координаты через OSM Nominatim, зона по координатам
// через tzf (аналог timezonefinder).
type NominatimResolver struct {
	geocoder geog.Geocoder
	finder   tzf.F
}

func NewNominatimResolver() (*NominatimResolver, error) {
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("init timezone finder: %w", err)
	}
	return &NominatimResolver{
		geocoder: openstreetmap.Geocoder(),
		finder:   finder,
	}, nil
}

func (r *NominatimResolver) Resolve(ctx context.Context, place string) (*Location, error) {
	loc, err := r.geocoder.Geocode(place)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", place, err)
	}
	if loc == nil {
		return nil, ErrUnresolvable
	}

	tzName := r.finder.GetTimezoneName(loc.Lng, loc.Lat)
	if tzName == "" {
		tzName = "UTC"
	}

	address := place
	if addr, err := r.geocoder.ReverseGeocode(loc.Lat, loc.Lng); err == nil && addr != nil && addr.FormattedAddress != "" {
		address = addr.FormattedAddress
	}

	return &Location{
		Lat:      loc.Lat,
		Lon:      loc.Lng,
		Timezone: tzName,
		Address:  address,
	}, nil
}
