package astro

import "testing"

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"15.05.1990", "15.05.1990", true},
		{"15/05/1990", "15.05.1990", true},
		{"15-05-1990", "15.05.1990", true},
		{"15 05 1990", "15.05.1990", true},
		{"1.2.1990", "01.02.1990", true},
		{"  15.05.1990  ", "15.05.1990", true},
		// двузначный год
		{"15.05.90", "15.05.1990", true},
		{"15.05.05", "15.05.2005", true},
		{"15.05.30", "15.05.2030", true},
		{"15.05.31", "15.05.1931", true},
		// мусор и выход за диапазоны
		{"привет", "", false},
		{"", "", false},
		{"32.05.1990", "", false},
		{"15.13.1990", "", false},
		{"15.05.1899", "", false},
		{"15.05.2101", "", false},
	}
	for _, c := range cases {
		got, ok := ParseDate(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("ParseDate(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestParseTimeTotal(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"14:30", "14:30"},
		{"14.30", "14:30"},
		{"14-30", "14:30"},
		{"9:05", "09:05"},
		{"0:00", "00:00"},
		{"23:59", "23:59"},
		// словесные периоды дня
		{"утром", "09:00"},
		{"Утром (09:00)", "09:00"},
		{"днем", "15:00"},
		{"днём", "15:00"},
		{"вечером", "21:00"},
		{"ночью", "03:00"},
		// не распозналось: полдень по умолчанию
		{"не знаю", "12:00"},
		{"", "12:00"},
		{"25:70", "12:00"},
	}
	for _, c := range cases {
		if got := ParseTime(c.in); got != c.want {
			t.Errorf("ParseTime(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseCoords(t *testing.T) {
	cases := []struct {
		in       string
		lat, lon float64
		ok       bool
	}{
		{"55.7558, 37.6173", 55.7558, 37.6173, true},
		{"55.7558 37.6173", 55.7558, 37.6173, true},
		{"-33.87, 151.21", -33.87, 151.21, true},
		{"широта 55.75, долгота 37.61", 55.75, 37.61, true},
		{"55.7558", 0, 0, false},
		{"", 0, 0, false},
		{"91, 37", 0, 0, false},
		{"55, 181", 0, 0, false},
	}
	for _, c := range cases {
		lat, lon, ok := ParseCoords(c.in)
		if ok != c.ok {
			t.Errorf("ParseCoords(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && (lat != c.lat || lon != c.lon) {
			t.Errorf("ParseCoords(%q) = %v, %v; want %v, %v", c.in, lat, lon, c.lat, c.lon)
		}
	}
}
