package astro

import (
	"errors"
	"fmt"
	"time"
)

// ErrBadTimezone — идентификатор зоны не найден в базе tz.
var ErrBadTimezone = errors.New("unknown timezone")

// NormalizeBirth переводит локальные дату (DD.MM.YYYY) и время (HH:MM)
// в UTC-момент по правилам зоны tzName. Неоднозначные моменты на границе
// перехода на летнее время разрешаются правилами самой зоны.
func NormalizeBirth(date, clock, tzName string) (time.Time, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrBadTimezone, tzName)
	}

	d, err := time.Parse("02.01.2006", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: %w", date, err)
	}
	c, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time %q: %w", clock, err)
	}

	local := time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, loc)
	return local.UTC(), nil
}
