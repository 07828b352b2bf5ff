package astro

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultBirthTime используется, когда время рождения вообще не распозналось.
const DefaultBirthTime = "12:00"

var (
	reDate   = regexp.MustCompile(`(\d{1,2})[./\-\s](\d{1,2})[./\-\s](\d{2,4})`)
	reClock  = regexp.MustCompile(`(\d{1,2})[:.\-\s](\d{1,2})`)
	reCoords = regexp.MustCompile(`[^\d.,\s\-+]`)
)

// Словесное время суток -> каноническое время.
var dayPeriods = []struct {
	word string
	time string
}{
	{"утр", "09:00"},
	{"днем", "15:00"},
	{"днём", "15:00"},
	{"день", "15:00"},
	{"дня", "15:00"},
	{"вечер", "21:00"},
	{"ноч", "03:00"},
}

// ParseDate принимает дату с разделителями . / - или пробелом и 2- или
// 4-значным годом, возвращает нормализованную строку DD.MM.YYYY.
// Двузначный год: <=30 трактуется как 20xx, иначе 19xx.
func ParseDate(s string) (string, bool) {
	m := reDate.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	if year < 100 {
		if year > 30 {
			year += 1900
		} else {
			year += 2000
		}
	}
	if day < 1 || day > 31 || month < 1 || month > 12 || year < 1900 || year > 2100 {
		return "", false
	}
	return fmt.Sprintf("%02d.%02d.%04d", day, month, year), true
}

// ParseTime всегда возвращает валидное HH:MM: словесные варианты времени
// суток отображаются на канонические часы, числовые проверяются на
// диапазон, всё остальное — полдень по умолчанию.
func ParseTime(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	for _, p := range dayPeriods {
		if strings.Contains(s, p.word) {
			return p.time
		}
	}

	if m := reClock.FindStringSubmatch(s); m != nil {
		hh, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if hh >= 0 && hh <= 23 && mm >= 0 && mm <= 59 {
			return fmt.Sprintf("%02d:%02d", hh, mm)
		}
	}
	return DefaultBirthTime
}

// ParseCoords разбирает пару "широта, долгота" (запятая или пробел) и
// проверяет диапазоны -90..90 / -180..180.
func ParseCoords(s string) (lat, lon float64, ok bool) {
	cleaned := reCoords.ReplaceAllString(s, "")
	parts := regexp.MustCompile(`[,\s]+`).Split(strings.TrimSpace(cleaned), -1)

	var nums []float64
	for _, p := range parts {
		if p == "" {
			continue
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, 0, false
		}
		nums = append(nums, f)
	}
	if len(nums) < 2 {
		return 0, 0, false
	}
	lat, lon = nums[0], nums[1]
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}
