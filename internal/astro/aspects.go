package astro

import (
	"fmt"
	"math"
	"strings"
)

type AspectKind struct {
	Angle     float64
	Name      string
	Orb       float64
	Influence string
}

// Пять классических аспектов с фиксированными орбисами.
var AspectKinds = []AspectKind{
	{0, "Соединение", 8, "сильное"},
	{60, "Секстиль", 4, "положительное"},
	{90, "Квадратура", 6, "напряженное"},
	{120, "Трин", 8, "положительное"},
	{180, "Оппозиция", 8, "напряженное"},
}

// Тела, участвующие в синастрии.
var importantBodies = []Body{
	Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Ascendant, MC,
}

type Aspect struct {
	Body1     Body
	Body2     Body
	Name      string
	Angle     float64
	Deviation float64 // отклонение от точного угла
	Strength  string  // "сильный" | "умеренный"
	Influence string
}

// Aspects перебирает пары тел двух карт (тело против самого себя
// пропускается) и проверяет минимальное угловое расстояние против каждого
// аспектного окна. Аспекты считаются "сильными" при отклонении <= орбис/2.
func Aspects(a, b Chart) []Aspect {
	var out []Aspect
	for _, b1 := range importantBodies {
		p1, ok := a[b1]
		if !ok {
			continue
		}
		for _, b2 := range importantBodies {
			if b1 == b2 {
				continue
			}
			p2, ok := b[b2]
			if !ok {
				continue
			}

			diff := math.Abs(p1.Longitude - p2.Longitude)
			if diff > 180 {
				diff = 360 - diff
			}

			for _, kind := range AspectKinds {
				if diff < kind.Angle-kind.Orb || diff > kind.Angle+kind.Orb {
					continue
				}
				dev := math.Abs(diff - kind.Angle)
				strength := "умеренный"
				if dev <= kind.Orb/2 {
					strength = "сильный"
				}
				out = append(out, Aspect{
					Body1:     b1,
					Body2:     b2,
					Name:      kind.Name,
					Angle:     kind.Angle,
					Deviation: dev,
					Strength:  strength,
					Influence: kind.Influence,
				})
			}
		}
	}
	return out
}

// FormatAspects — табличка аспектов для подстановки в промпт и ответ.
func FormatAspects(aspects []Aspect) string {
	if len(aspects) == 0 {
		return "Нет значимых аспектов между картами."
	}
	var b strings.Builder
	b.WriteString("Планеты | Аспект | Сила | Влияние\n")
	for _, a := range aspects {
		fmt.Fprintf(&b, "%s - %s | %s | %s | %s\n",
			bodyNameRu(a.Body1), bodyNameRu(a.Body2), a.Name, a.Strength, a.Influence)
	}
	return strings.TrimRight(b.String(), "\n")
}
