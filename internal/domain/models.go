package domain

import "time"

type Plan string

const (
	PlanFree    Plan = "free"
	PlanWeek    Plan = "1_week"
	PlanMonth   Plan = "1_month"
	PlanQuarter Plan = "3_month"
	PlanYear    Plan = "1_year"
)

// PlanDays — длительность подписки в днях.
func PlanDays(p Plan) int {
	switch p {
	case PlanWeek:
		return 7
	case PlanMonth:
		return 30
	case PlanQuarter:
		return 90
	case PlanYear:
		return 365
	default:
		return 0
	}
}

type User struct {
	ID               int64
	TelegramID       int64
	Username         *string
	FirstName        *string
	LastName         *string
	BirthDate        *string // DD.MM.YYYY
	BirthTime        *string // HH:MM
	City             *string
	Latitude         *float64
	Longitude        *float64
	Timezone         *string
	NatalChart       *string
	Plan             Plan
	PlanExpiry       *time.Time
	FreeMessagesLeft int
	HoroscopeTime    *string // HH:MM, локальное время доставки
	HoroscopeCity    *string
	HoroscopeLat     *float64
	HoroscopeLon     *float64
	InputTokens      int64
	OutputTokens     int64
	TotalCost        float64
	CreatedAt        time.Time
	LastActivity     time.Time
}

func (u *User) HasChart() bool {
	return u != nil && u.NatalChart != nil && *u.NatalChart != ""
}

// IsPaid — активная платная подписка на момент now.
func (u *User) IsPaid(now time.Time) bool {
	return u.Plan != PlanFree && u.PlanExpiry != nil && u.PlanExpiry.After(now)
}

type Contact struct {
	ID           int64
	OwnerID      int64
	PersonName   string
	BirthDate    string
	BirthTime    string
	City         string
	Latitude     float64
	Longitude    float64
	Timezone     string
	Relationship string
	NatalChart   string
	CreatedAt    time.Time
}

type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxCompleted TxStatus = "completed"
	TxFailed    TxStatus = "failed"
	TxCancelled TxStatus = "cancelled"
)

type Transaction struct {
	ID        int64
	UserID    int64
	Plan      Plan
	Amount    float64
	Stars     int
	Status    TxStatus
	Method    string
	Payload   *string
	StartDate *time.Time
	EndDate   *time.Time
	CreatedAt time.Time
}

type HoroscopeKind string

const (
	HoroscopeDaily   HoroscopeKind = "daily"
	HoroscopeMonthly HoroscopeKind = "monthly"
)

type Horoscope struct {
	ID        int64
	UserID    int64
	Kind      HoroscopeKind
	Text      string
	CreatedAt time.Time
}
