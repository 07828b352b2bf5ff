package session

import (
	"strings"

	"github.com/kirfitai/astrology-bot/internal/astro"
)

// State — шаг диалога. Один enum на все потоки; группы состояний
// соответствуют потокам натальной карты, совместимости, настройки
// гороскопа и подписки.
type State int

const (
	Idle State = iota

	// натальная карта
	NatalDate
	NatalTime
	NatalCity
	NatalCoordsChoice
	NatalCoords
	NatalComputing

	// steady state: свободный диалог по рассчитанной карте
	DialogActive

	// совместимость
	CompatAction
	CompatSelectContact
	CompatName
	CompatDate
	CompatTime
	CompatCity
	CompatRelationship
	CompatCoordsChoice
	CompatCoords
	CompatComputing
	CompatViewing

	// настройка гороскопа
	HoroAction
	HoroTime
	HoroCity
	HoroCoordsChoice
	HoroCoords

	// подписка
	SubSelectingPlan
)

var stateNames = map[State]string{
	Idle:                "idle",
	NatalDate:           "natal_waiting_date",
	NatalTime:           "natal_waiting_time",
	NatalCity:           "natal_waiting_city",
	NatalCoordsChoice:   "natal_waiting_coords_choice",
	NatalCoords:         "natal_waiting_coords",
	NatalComputing:      "natal_computing",
	DialogActive:        "dialog_active",
	CompatAction:        "compat_selecting_action",
	CompatSelectContact: "compat_selecting_contact",
	CompatName:          "compat_waiting_partner_name",
	CompatDate:          "compat_waiting_partner_date",
	CompatTime:          "compat_waiting_partner_time",
	CompatCity:          "compat_waiting_partner_city",
	CompatRelationship:  "compat_waiting_partner_relationship",
	CompatCoordsChoice:  "compat_waiting_partner_coords_choice",
	CompatCoords:        "compat_waiting_partner_coords",
	CompatComputing:     "compat_computing",
	CompatViewing:       "compat_viewing_result",
	HoroAction:          "horo_selecting_action",
	HoroTime:            "horo_waiting_time",
	HoroCity:            "horo_waiting_city",
	HoroCoordsChoice:    "horo_waiting_coords_choice",
	HoroCoords:          "horo_waiting_coords",
	SubSelectingPlan:    "sub_selecting_plan",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// AllowsBack: каждое состояние, кроме терминальных и computing, принимает
// сентинел "назад в меню". Проверка выполняется до любого разбора ввода.
func (s State) AllowsBack() bool {
	switch s {
	case NatalComputing, CompatComputing:
		return false
	}
	return true
}

// InputClass — класс входа после разбора. Переходы описываются
// как данные в терминах (State, InputClass).
type InputClass int

const (
	InputInvalid InputClass = iota
	InputBack               // сентинел "назад в меню"
	InputDate
	InputTime
	InputText // город, имя, отношение — любой непустой текст
	InputYes
	InputNo
	InputCoords
)

// BackSentinel — текст кнопки возврата в главное меню.
const BackSentinel = "↩️ Назад в меню"

// Classify определяет класс ввода для состояния. Сентинел возврата
// проверяется первым и безусловно.
func Classify(s State, text string) InputClass {
	if text == BackSentinel && s.AllowsBack() {
		return InputBack
	}
	switch s {
	case NatalDate, CompatDate:
		if _, ok := astro.ParseDate(text); ok {
			return InputDate
		}
		return InputInvalid
	case NatalTime, CompatTime, HoroTime:
		// ParseTime тотален: любой вход даёт валидное время
		return InputTime
	case NatalCity, CompatCity, HoroCity, CompatName, CompatRelationship:
		if text != "" {
			return InputText
		}
		return InputInvalid
	case NatalCoordsChoice, CompatCoordsChoice, HoroCoordsChoice:
		switch normalizeYesNo(text) {
		case "да":
			return InputYes
		case "нет":
			return InputNo
		}
		return InputInvalid
	case NatalCoords, CompatCoords, HoroCoords:
		if _, _, ok := astro.ParseCoords(text); ok {
			return InputCoords
		}
		return InputInvalid
	}
	return InputInvalid
}

func normalizeYesNo(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, "да"):
		return "да"
	case strings.EqualFold(s, "нет"):
		return "нет"
	}
	return ""
}

// Rule — правило перехода: следующее состояние.
// InputInvalid везде означает "остаёмся на месте и переспрашиваем";
// InputBack — сброс в Idle; они в таблицу не включаются.
type Rule struct {
	Next State
}

// Transitions — таблица переходов. Ветка "нет" на выборе координат
// срезает шаг ввода координат и сразу уходит в расчёт.
var Transitions = map[State]map[InputClass]Rule{
	NatalDate:         {InputDate: {Next: NatalTime}},
	NatalTime:         {InputTime: {Next: NatalCity}},
	NatalCity:         {InputText: {Next: NatalCoordsChoice}},
	NatalCoordsChoice: {InputYes: {Next: NatalCoords}, InputNo: {Next: NatalComputing}},
	NatalCoords:       {InputCoords: {Next: NatalComputing}},

	CompatName:         {InputText: {Next: CompatDate}},
	CompatDate:         {InputDate: {Next: CompatTime}},
	CompatTime:         {InputTime: {Next: CompatCity}},
	CompatCity:         {InputText: {Next: CompatRelationship}},
	CompatRelationship: {InputText: {Next: CompatCoordsChoice}},
	CompatCoordsChoice: {InputYes: {Next: CompatCoords}, InputNo: {Next: CompatComputing}},
	CompatCoords:       {InputCoords: {Next: CompatComputing}},

	HoroTime:         {InputTime: {Next: HoroCity}},
	HoroCity:         {InputText: {Next: HoroCoordsChoice}},
	HoroCoordsChoice: {InputYes: {Next: HoroCoords}, InputNo: {Next: DialogActive}},
	HoroCoords:       {InputCoords: {Next: DialogActive}},
}

// Step классифицирует ввод и возвращает следующее состояние.
// (next == s, ok == false) — невалидный ввод, остаёмся и переспрашиваем.
func Step(s State, text string) (next State, class InputClass, ok bool) {
	class = Classify(s, text)
	if class == InputBack {
		return Idle, class, true
	}
	if rules, found := Transitions[s]; found {
		if r, found := rules[class]; found {
			return r.Next, class, true
		}
	}
	return s, class, false
}
