package astro

import (
	"errors"
	"time"
)

// ErrEphemeris — расчёт не удался. Повторять с теми же входными данными
// бессмысленно: библиотека детерминирована.
var ErrEphemeris = errors.New("ephemeris calculation failed")

type Body string

const (
	Sun       Body = "Sun"
	Moon      Body = "Moon"
	Mercury   Body = "Mercury"
	Venus     Body = "Venus"
	Mars      Body = "Mars"
	Jupiter   Body = "Jupiter"
	Saturn    Body = "Saturn"
	Uranus    Body = "Uranus"
	Neptune   Body = "Neptune"
	Pluto     Body = "Pluto"
	Lilith    Body = "Lilith"
	NorthNode Body = "North Node"
	SouthNode Body = "South Node"
	Ascendant Body = "Ascendant"
	MC        Body = "MC"
)

// PlanetOrder — канонический порядок тел в карте.
var PlanetOrder = []Body{
	Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn,
	Uranus, Neptune, Pluto, Lilith, NorthNode, SouthNode,
}

type Position struct {
	Longitude float64 // эклиптическая долгота, градусы [0,360)
	Latitude  float64
}

// HouseSet — куспиды двенадцати домов (Cusps[1..12]) плюс углы.
type HouseSet struct {
	Cusps     [13]float64
	Ascendant float64
	MC        float64
}

// Ephemeris — обёртка над астрономической библиотекой. Обе операции —
// чистые функции от (момент, координаты).
type Ephemeris interface {
	Positions(utc time.Time, lat, lon float64) (map[Body]Position, error)
	Houses(utc time.Time, lat, lon float64) (*HouseSet, error)
}
