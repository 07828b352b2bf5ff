package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kirfitai/astrology-bot/internal/domain"
)

type Horoscopes struct{ pool *pgxpool.Pool }

func NewHoroscopes(p *pgxpool.Pool) *Horoscopes { return &Horoscopes{pool: p} }

func (r *Horoscopes) Add(ctx context.Context, userID int64, kind domain.HoroscopeKind, text string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO horoscopes(user_id, horoscope_type, horoscope_text)
		VALUES($1,$2,$3)
		RETURNING horoscope_id
	`, userID, string(kind), text).Scan(&id)
	return id, err
}

// Messages — журнал переписки: направление, токены, стоимость.
type Messages struct{ pool *pgxpool.Pool }

func NewMessages(p *pgxpool.Pool) *Messages { return &Messages{pool: p} }

func (r *Messages) Log(ctx context.Context, userID int64, direction, content string, tokens int, cost float64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO messages(user_id, direction, content, tokens, cost)
		VALUES($1,$2,$3,$4,$5)
	`, userID, direction, content, tokens, cost)
	return err
}
