package astro

import (
	"strings"
	"testing"
)

func TestZodiacSign(t *testing.T) {
	cases := []struct {
		lon  float64
		want string
	}{
		{0, "Овен"},
		{29.99, "Овен"},
		{30, "Телец"},
		{123.4, "Лев"},
		{359.99, "Рыбы"},
		{360, "Овен"},
		{-10, "Рыбы"}, // нормализация отрицательных долгот
		{720.5, "Овен"},
	}
	for _, c := range cases {
		if got := ZodiacSign(c.lon); got != c.want {
			t.Errorf("ZodiacSign(%v) = %q, want %q", c.lon, got, c.want)
		}
	}
}

func TestZodiacSignPartition(t *testing.T) {
	// двенадцать равных сегментов покрывают весь круг
	seen := make(map[string]int)
	for lon := 0.0; lon < 360; lon += 15 {
		seen[ZodiacSign(lon)]++
	}
	if len(seen) != 12 {
		t.Fatalf("got %d distinct signs, want 12", len(seen))
	}
	for sign, n := range seen {
		if n != 2 {
			t.Errorf("sign %s covered %d samples, want 2", sign, n)
		}
	}
}

func evenHouses() *HouseSet {
	hs := &HouseSet{Ascendant: 0, MC: 270}
	for i := 1; i <= 12; i++ {
		hs.Cusps[i] = float64((i - 1) * 30)
	}
	return hs
}

func TestHouseOf(t *testing.T) {
	hs := evenHouses()
	cases := []struct {
		lon  float64
		want int
	}{
		{0, 1},    // куспид принадлежит своему дому
		{15, 1},
		{30, 2},
		{345, 12}, // последний сегмент переходит через 0°
		{359.9, 12},
	}
	for _, c := range cases {
		if got := HouseOf(c.lon, hs); got != c.want {
			t.Errorf("HouseOf(%v) = %d, want %d", c.lon, got, c.want)
		}
	}
}

func TestHouseOfEveryLongitudeResolves(t *testing.T) {
	// несимметричные куспиды с переходом через 0°
	hs := &HouseSet{}
	bounds := []float64{350, 20, 45, 80, 110, 140, 170, 200, 225, 260, 290, 320}
	for i, b := range bounds {
		hs.Cusps[i+1] = b
	}
	for lon := 0.0; lon < 360; lon += 0.5 {
		house := HouseOf(lon, hs)
		if house < 1 || house > 12 {
			t.Fatalf("HouseOf(%v) = %d, out of range", lon, house)
		}
	}
}

func TestHouseOfDegenerateCusps(t *testing.T) {
	// все куспиды нулевые: каждый сегмент пуст, долгота падает в 1-й дом
	hs := &HouseSet{}
	if got := HouseOf(123, hs); got != 1 {
		t.Errorf("HouseOf on degenerate cusps = %d, want 1", got)
	}
}

func samplePositions() map[Body]Position {
	return map[Body]Position{
		Sun:     {Longitude: 54.3},
		Moon:    {Longitude: 123.4},
		Mercury: {Longitude: 40.0},
	}
}

func TestBuildChart(t *testing.T) {
	hs := evenHouses()
	c := BuildChart(samplePositions(), hs)

	if got := c[Sun]; got.Sign != "Телец" || got.House != 2 {
		t.Errorf("Sun = %+v, want Телец house 2", got)
	}
	asc, ok := c[Ascendant]
	if !ok {
		t.Fatal("chart missing Ascendant")
	}
	if asc.House != 1 {
		t.Errorf("Ascendant house = %d, want 1", asc.House)
	}
	mc, ok := c[MC]
	if !ok {
		t.Fatal("chart missing MC")
	}
	if mc.Sign != "Козерог" {
		t.Errorf("MC sign = %q, want Козерог", mc.Sign)
	}
}

func TestFormatChartDeterministic(t *testing.T) {
	hs := evenHouses()
	c := BuildChart(samplePositions(), hs)

	first := FormatChart(c)
	for i := 0; i < 10; i++ {
		if FormatChart(c) != first {
			t.Fatal("FormatChart is not deterministic")
		}
	}
	for _, fragment := range []string{"ВАША НАТАЛЬНАЯ КАРТА", "Солнце", "Луна", "Асцендент"} {
		if !strings.Contains(first, fragment) {
			t.Errorf("formatted chart missing %q", fragment)
		}
	}
	// порядок тел канонический: Солнце раньше Луны
	if strings.Index(first, "Солнце") > strings.Index(first, "Луна") {
		t.Error("bodies are not in canonical order")
	}
}
