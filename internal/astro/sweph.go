package astro

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/mshafiee/swephgo"
)

// Номера тел Swiss Ephemeris (se_*.h).
const (
	seSun      = 0
	seMoon     = 1
	seMercury  = 2
	seVenus    = 3
	seMars     = 4
	seJupiter  = 5
	seSaturn   = 6
	seUranus   = 7
	seNeptune  = 8
	sePluto    = 9
	seMeanNode = 10
	seMeanApog = 12

	seflgSwieph = 2
)

var swephBodies = []struct {
	body Body
	ipl  int
}{
	{Sun, seSun},
	{Moon, seMoon},
	{Mercury, seMercury},
	{Venus, seVenus},
	{Mars, seMars},
	{Jupiter, seJupiter},
	{Saturn, seSaturn},
	{Uranus, seUranus},
	{Neptune, seNeptune},
	{Pluto, sePluto},
	{Lilith, seMeanApog},
	{NorthNode, seMeanNode},
}

// SwissEphemeris реализует Ephemeris поверх swephgo.
type SwissEphemeris struct{}

func NewSwissEphemeris(ephePath string) *SwissEphemeris {
	if ephePath != "" {
		swephgo.SetEphePath([]byte(ephePath))
	}
	return &SwissEphemeris{}
}

func julianDay(utc time.Time) float64 {
	hour := float64(utc.Hour()) + float64(utc.Minute())/60.0
	return swephgo.Julday(utc.Year(), int(utc.Month()), utc.Day(), hour, swephgo.SeGregCal)
}

func (e *SwissEphemeris) Positions(utc time.Time, lat, lon float64) (map[Body]Position, error) {
	jd := julianDay(utc)

	res := make(map[Body]Position, len(swephBodies)+1)
	xx := make([]float64, 6)
	serr := make([]byte, 256)

	for _, b := range swephBodies {
		if rc := swephgo.CalcUt(jd, b.ipl, seflgSwieph, xx, serr); rc < 0 {
			return nil, fmt.Errorf("%w: %s: %s", ErrEphemeris, b.body, cstr(serr))
		}
		res[b.body] = Position{Longitude: xx[0], Latitude: xx[1]}
	}

	// Южный узел зеркален северному.
	nn := res[NorthNode]
	res[SouthNode] = Position{
		Longitude: math.Mod(nn.Longitude+180, 360),
		Latitude:  -nn.Latitude,
	}
	return res, nil
}

func (e *SwissEphemeris) Houses(utc time.Time, lat, lon float64) (*HouseSet, error) {
	jd := julianDay(utc)

	cusps := make([]float64, 13)
	ascmc := make([]float64, 10)
	if rc := swephgo.Houses(jd, lat, lon, int('P'), cusps, ascmc); rc < 0 {
		return nil, fmt.Errorf("%w: houses at %.4f,%.4f", ErrEphemeris, lat, lon)
	}

	hs := &HouseSet{Ascendant: ascmc[0], MC: ascmc[1]}
	copy(hs.Cusps[:], cusps)
	return hs, nil
}

func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
