package astro

import (
	"fmt"
	"math"
	"strings"
)

var zodiacSigns = [12]string{
	"Овен", "Телец", "Близнецы", "Рак", "Лев", "Дева",
	"Весы", "Скорпион", "Стрелец", "Козерог", "Водолей", "Рыбы",
}

// ZodiacSign: двенадцать равных 30°-сегментов, 0° = Овен.
func ZodiacSign(longitude float64) string {
	lon := math.Mod(longitude, 360)
	if lon < 0 {
		lon += 360
	}
	return zodiacSigns[int(lon/30)%12]
}

// HouseOf ищет дом, в чей сегмент [cusp_i, cusp_i+1) попадает долгота,
// с учётом перехода через 0°. На вырожденных куспидах (немонотонные
// данные, полярные широты) возвращает 1-й дом.
func HouseOf(longitude float64, hs *HouseSet) int {
	for i := 1; i <= 12; i++ {
		start := hs.Cusps[i]
		end := hs.Cusps[i%12+1]
		if start > end {
			if longitude >= start || longitude < end {
				return i
			}
		} else if longitude >= start && longitude < end {
			return i
		}
	}
	return 1
}

type ChartPoint struct {
	Longitude float64
	Sign      string
	House     int
}

// Chart — результат расчёта: тело -> долгота, знак, дом.
// Значение неизменяемое, при перерасчёте заменяется целиком.
type Chart map[Body]ChartPoint

// BuildChart присваивает планетам знаки и дома и добавляет углы карты.
func BuildChart(positions map[Body]Position, hs *HouseSet) Chart {
	c := make(Chart, len(positions)+2)
	for body, pos := range positions {
		c[body] = ChartPoint{
			Longitude: pos.Longitude,
			Sign:      ZodiacSign(pos.Longitude),
			House:     HouseOf(pos.Longitude, hs),
		}
	}
	c[Ascendant] = ChartPoint{Longitude: hs.Ascendant, Sign: ZodiacSign(hs.Ascendant), House: 1}
	c[MC] = ChartPoint{Longitude: hs.MC, Sign: ZodiacSign(hs.MC), House: HouseOf(hs.MC, hs)}
	return c
}

var bodyNamesRu = map[Body]string{
	Sun:       "Солнце",
	Moon:      "Луна",
	Mercury:   "Меркурий",
	Venus:     "Венера",
	Mars:      "Марс",
	Jupiter:   "Юпитер",
	Saturn:    "Сатурн",
	Uranus:    "Уран",
	Neptune:   "Нептун",
	Pluto:     "Плутон",
	Lilith:    "Лилит",
	NorthNode: "Северный Узел",
	SouthNode: "Южный Узел",
	Ascendant: "Асцендент",
	MC:        "MC (Середина Неба)",
}

var bodyEmojis = map[Body]string{
	Sun:       "☀️",
	Moon:      "🌙",
	Mercury:   "☿️",
	Venus:     "♀️",
	Mars:      "♂️",
	Jupiter:   "♃",
	Saturn:    "♄",
	Uranus:    "♅",
	Neptune:   "♆",
	Pluto:     "♇",
	Lilith:    "🔮",
	NorthNode: "☊",
	SouthNode: "☋",
	Ascendant: "⬆️",
	MC:        "🔝",
}

var signEmojis = map[string]string{
	"Овен": "♈️", "Телец": "♉️", "Близнецы": "♊️", "Рак": "♋️",
	"Лев": "♌️", "Дева": "♍️", "Весы": "♎️", "Скорпион": "♏️",
	"Стрелец": "♐️", "Козерог": "♑️", "Водолей": "♒️", "Рыбы": "♓️",
}

func bodyNameRu(b Body) string {
	if n, ok := bodyNamesRu[b]; ok {
		return n
	}
	return string(b)
}

// FormatChart — каноническое текстовое представление карты. Детерминировано
// и полностью восстановимо из (positions, houses); именно эта строка
// сохраняется в базе.
func FormatChart(c Chart) string {
	var b strings.Builder

	b.WriteString("✨ ВАША НАТАЛЬНАЯ КАРТА ✨\n")
	b.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
	b.WriteString("🪐 ПЛАНЕТЫ\n")
	b.WriteString("┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈\n")

	for _, body := range PlanetOrder {
		p, ok := c[body]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s %s — %s %s, Дом %d\n",
			bodyEmojis[body], bodyNameRu(body), signEmojis[p.Sign], p.Sign, p.House)
	}

	b.WriteString("\n🏠 УГЛОВЫЕ ДОМА\n")
	b.WriteString("┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈┈\n")
	for _, body := range []Body{Ascendant, MC} {
		p, ok := c[body]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s %s — %s %s\n",
			bodyEmojis[body], bodyNameRu(body), signEmojis[p.Sign], p.Sign)
	}

	b.WriteString("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	b.WriteString("Карта рассчитана с помощью Swiss Ephemeris")
	return b.String()
}

// FormatPositions — краткая сводка положений без домов, для транзитных
// вставок в промпты гороскопов.
func FormatPositions(positions map[Body]Position) string {
	var b strings.Builder
	for _, body := range PlanetOrder {
		p, ok := positions[body]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s: %s (%.1f°)\n", bodyNameRu(body), ZodiacSign(p.Longitude), p.Longitude)
	}
	return strings.TrimRight(b.String(), "\n")
}
