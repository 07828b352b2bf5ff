package session

import "testing"

func TestStepTransitions(t *testing.T) {
	cases := []struct {
		state State
		input string
		next  State
		ok    bool
	}{
		{NatalDate, "15.05.1990", NatalTime, true},
		{NatalDate, "не дата", NatalDate, false},
		{NatalTime, "14:30", NatalCity, true},
		{NatalTime, "что угодно", NatalCity, true}, // время тотально
		{NatalCity, "Москва", NatalCoordsChoice, true},
		{NatalCity, "", NatalCity, false},
		{NatalCoordsChoice, "Да", NatalCoords, true},
		{NatalCoordsChoice, "Нет", NatalComputing, true},
		{NatalCoordsChoice, "может быть", NatalCoordsChoice, false},
		{NatalCoords, "55.75, 37.61", NatalComputing, true},
		{NatalCoords, "координаты", NatalCoords, false},

		{CompatName, "Анна", CompatDate, true},
		{CompatDate, "01.01.1985", CompatTime, true},
		{CompatRelationship, "партнёр", CompatCoordsChoice, true},
		{CompatCoordsChoice, "Нет", CompatComputing, true},

		{HoroTime, "08:00", HoroCity, true},
		{HoroCity, "Казань", HoroCoordsChoice, true},
		// настройка гороскопа завершается в диалоге, как и остальные потоки
		{HoroCoordsChoice, "Нет", DialogActive, true},
		{HoroCoords, "55.79, 49.12", DialogActive, true},
	}
	for _, c := range cases {
		next, _, ok := Step(c.state, c.input)
		if next != c.next || ok != c.ok {
			t.Errorf("Step(%v, %q) = %v, %v; want %v, %v",
				c.state, c.input, next, ok, c.next, c.ok)
		}
	}
}

func TestBackSentinelHasPriority(t *testing.T) {
	// сентинел срабатывает в любом состоянии с разрешённым возвратом,
	// даже там, где он разобрался бы как обычный текст
	for _, s := range []State{
		NatalDate, NatalTime, NatalCity, NatalCoordsChoice, NatalCoords,
		CompatName, CompatDate, CompatCity, CompatRelationship,
		HoroTime, HoroCity,
	} {
		next, class, ok := Step(s, BackSentinel)
		if class != InputBack || next != Idle || !ok {
			t.Errorf("state %v: back sentinel gave %v, %v, %v", s, next, class, ok)
		}
	}
}

func TestComputingStatesRejectBack(t *testing.T) {
	for _, s := range []State{NatalComputing, CompatComputing} {
		if s.AllowsBack() {
			t.Errorf("state %v must not allow back", s)
		}
		if class := Classify(s, BackSentinel); class == InputBack {
			t.Errorf("state %v classified sentinel as back", s)
		}
	}
}

func TestClassifyYesNoCaseInsensitive(t *testing.T) {
	cases := []struct {
		in   string
		want InputClass
	}{
		{"Да", InputYes},
		{"да", InputYes},
		{"дА", InputYes},
		{" ДА ", InputYes},
		{"Нет", InputNo},
		{"нЕт", InputNo},
		{"НЕТ", InputNo},
		{"может быть", InputInvalid},
	}
	for _, c := range cases {
		if got := Classify(NatalCoordsChoice, c.in); got != c.want {
			t.Errorf("Classify(NatalCoordsChoice, %q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestClassifyTimeIsTotal(t *testing.T) {
	for _, in := range []string{"14:30", "утром", "", "мусор", "25:99"} {
		if class := Classify(NatalTime, in); class != InputTime {
			t.Errorf("Classify(NatalTime, %q) = %v, want InputTime", in, class)
		}
	}
}
