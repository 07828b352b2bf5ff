package astro

import "testing"

func chartWith(points map[Body]float64) Chart {
	c := make(Chart, len(points))
	for b, lon := range points {
		c[b] = ChartPoint{Longitude: lon, Sign: ZodiacSign(lon)}
	}
	return c
}

func findAspect(aspects []Aspect, b1, b2 Body) *Aspect {
	for i := range aspects {
		if aspects[i].Body1 == b1 && aspects[i].Body2 == b2 {
			return &aspects[i]
		}
	}
	return nil
}

func TestAspectsWindows(t *testing.T) {
	cases := []struct {
		name     string
		lon1     float64
		lon2     float64
		aspect   string
		strength string
	}{
		{"точное соединение", 10, 10, "Соединение", "сильный"},
		{"соединение на краю орбиса", 10, 18, "Соединение", "умеренный"},
		{"секстиль", 0, 60, "Секстиль", "сильный"},
		{"квадратура", 100, 190, "Квадратура", "сильный"},
		{"трин", 10, 130, "Трин", "сильный"},
		{"оппозиция", 5, 185, "Оппозиция", "сильный"},
		{"оппозиция через 0°", 350, 170, "Оппозиция", "сильный"},
	}
	for _, c := range cases {
		a := chartWith(map[Body]float64{Sun: c.lon1})
		b := chartWith(map[Body]float64{Moon: c.lon2})
		got := findAspect(Aspects(a, b), Sun, Moon)
		if got == nil {
			t.Errorf("%s: aspect not found", c.name)
			continue
		}
		if got.Name != c.aspect || got.Strength != c.strength {
			t.Errorf("%s: got %s/%s, want %s/%s", c.name, got.Name, got.Strength, c.aspect, c.strength)
		}
	}
}

func TestAspectsOutsideOrb(t *testing.T) {
	a := chartWith(map[Body]float64{Sun: 0})
	b := chartWith(map[Body]float64{Moon: 45}) // между секстилем и квадратурой
	if got := Aspects(a, b); len(got) != 0 {
		t.Errorf("expected no aspects, got %v", got)
	}
}

func TestAspectsSkipSameBody(t *testing.T) {
	a := chartWith(map[Body]float64{Sun: 10})
	b := chartWith(map[Body]float64{Sun: 10})
	if got := Aspects(a, b); len(got) != 0 {
		t.Errorf("body paired with itself: %v", got)
	}
}

func TestAspectsMirrored(t *testing.T) {
	a := chartWith(map[Body]float64{Sun: 0, Moon: 200})
	b := chartWith(map[Body]float64{Sun: 120, Moon: 90})

	fwd := Aspects(a, b)
	rev := Aspects(b, a)
	if len(fwd) != len(rev) {
		t.Fatalf("asymmetric aspect count: %d vs %d", len(fwd), len(rev))
	}
	for _, f := range fwd {
		r := findAspect(rev, f.Body2, f.Body1)
		if r == nil || r.Name != f.Name {
			t.Errorf("aspect %s %s-%s has no mirror", f.Name, f.Body1, f.Body2)
		}
	}
}

func TestFormatAspectsEmpty(t *testing.T) {
	if got := FormatAspects(nil); got != "Нет значимых аспектов между картами." {
		t.Errorf("unexpected empty formatting: %q", got)
	}
}
