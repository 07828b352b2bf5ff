package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kirfitai/astrology-bot/internal/domain"
)

type Users struct{ pool *pgxpool.Pool }

func NewUsers(p *pgxpool.Pool) *Users { return &Users{pool: p} }

const userColumns = `id, telegram_id, username, first_name, last_name,
	birth_date, birth_time, city, latitude, longitude, tz_name, natal_chart,
	plan, plan_expiry, free_messages_left,
	horoscope_time, horoscope_city, horoscope_latitude, horoscope_longitude,
	input_tokens, output_tokens, total_cost, created_at, last_activity`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var plan string
	err := row.Scan(
		&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName,
		&u.BirthDate, &u.BirthTime, &u.City, &u.Latitude, &u.Longitude, &u.Timezone, &u.NatalChart,
		&plan, &u.PlanExpiry, &u.FreeMessagesLeft,
		&u.HoroscopeTime, &u.HoroscopeCity, &u.HoroscopeLat, &u.HoroscopeLon,
		&u.InputTokens, &u.OutputTokens, &u.TotalCost, &u.CreatedAt, &u.LastActivity,
	)
	if err != nil {
		return nil, err
	}
	u.Plan = domain.Plan(plan)
	return &u, nil
}

// UpsertTelegramUser регистрирует пользователя при первом контакте и
// обновляет имя/username при каждом следующем.
func (r *Users) UpsertTelegramUser(ctx context.Context, telegramID int64, username, firstName, lastName *string, freeMessages int) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users(telegram_id, username, first_name, last_name, free_messages_left)
		VALUES($1,$2,$3,$4,$5)
		ON CONFLICT (telegram_id) DO UPDATE
		SET username=EXCLUDED.username,
			first_name=EXCLUDED.first_name,
			last_name=EXCLUDED.last_name,
			last_activity=now()
		RETURNING `+userColumns,
		telegramID, username, firstName, lastName, freeMessages)
	return scanUser(row)
}

func (r *Users) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id=$1`, telegramID)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *Users) UpdateBirthProfile(ctx context.Context, telegramID int64, date, timeStr, city string, lat, lon float64, tzName, chartText string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET
			birth_date=$2, birth_time=$3, city=$4,
			latitude=$5, longitude=$6, tz_name=$7, natal_chart=$8,
			last_activity=now()
		WHERE telegram_id=$1
	`, telegramID, date, timeStr, city, lat, lon, tzName, chartText)
	return err
}

func (r *Users) UpdateHoroscopeSettings(ctx context.Context, telegramID int64, timeStr, city string, lat, lon float64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET
			horoscope_time=$2, horoscope_city=$3,
			horoscope_latitude=$4, horoscope_longitude=$5,
			last_activity=now()
		WHERE telegram_id=$1
	`, telegramID, timeStr, city, lat, lon)
	return err
}

// DecrementFreeMessages списывает одно бесплатное сообщение, не уходя ниже
// нуля. Действует только на free-плане.
func (r *Users) DecrementFreeMessages(ctx context.Context, telegramID int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET
			free_messages_left = GREATEST(free_messages_left - 1, 0),
			last_activity=now()
		WHERE telegram_id=$1 AND plan='free'
	`, telegramID)
	return err
}

func (r *Users) UpdateSubscription(ctx context.Context, telegramID int64, plan domain.Plan, days int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET
			plan=$2,
			plan_expiry = now() + make_interval(days => $3),
			last_activity=now()
		WHERE telegram_id=$1
	`, telegramID, string(plan), days)
	return err
}

func (r *Users) DemoteToFree(ctx context.Context, telegramID int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET plan='free', plan_expiry=NULL
		WHERE telegram_id=$1
	`, telegramID)
	return err
}

// DemoteAllExpired — ночная зачистка истёкших подписок.
func (r *Users) DemoteAllExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET plan='free', plan_expiry=NULL
		WHERE plan <> 'free' AND plan_expiry IS NOT NULL AND plan_expiry < now()
	`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Users) AddTokenUsage(ctx context.Context, telegramID int64, inputTokens, outputTokens int, cost float64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET
			input_tokens = input_tokens + $2,
			output_tokens = output_tokens + $3,
			total_cost = total_cost + $4,
			last_activity=now()
		WHERE telegram_id=$1
	`, telegramID, inputTokens, outputTokens, cost)
	return err
}

// UsersDueForHoroscope — все, у кого настроена доставка на это локальное
// время (HH:MM) и задан город.
func (r *Users) UsersDueForHoroscope(ctx context.Context, timeStr string) ([]*domain.User, error) {
	return r.queryUsers(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE horoscope_time=$1 AND horoscope_city IS NOT NULL
	`, timeStr)
}

// AllWithChart — получатели ежемесячной рассылки.
func (r *Users) AllWithChart(ctx context.Context) ([]*domain.User, error) {
	return r.queryUsers(ctx, `
		SELECT `+userColumns+` FROM users WHERE natal_chart IS NOT NULL
	`)
}

func (r *Users) queryUsers(ctx context.Context, sql string, args ...any) ([]*domain.User, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
