package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kirfitai/astrology-bot/internal/domain"
)

type Contacts struct{ pool *pgxpool.Pool }

func NewContacts(p *pgxpool.Pool) *Contacts { return &Contacts{pool: p} }

const contactColumns = `contact_id, owner_id, person_name, birth_date, birth_time,
	city, latitude, longitude, tz_name, relationship, natal_chart, created_at`

func scanContact(row pgx.Row) (*domain.Contact, error) {
	var c domain.Contact
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.PersonName, &c.BirthDate, &c.BirthTime,
		&c.City, &c.Latitude, &c.Longitude, &c.Timezone, &c.Relationship, &c.NatalChart, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Upsert: контакт уникален по (владелец, имя); повторный ввод того же
// имени перезаписывает данные рождения и карту.
func (r *Contacts) Upsert(ctx context.Context, c *domain.Contact) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO contacts(owner_id, person_name, birth_date, birth_time,
			city, latitude, longitude, tz_name, relationship, natal_chart)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (owner_id, person_name) DO UPDATE SET
			birth_date=EXCLUDED.birth_date,
			birth_time=EXCLUDED.birth_time,
			city=EXCLUDED.city,
			latitude=EXCLUDED.latitude,
			longitude=EXCLUDED.longitude,
			tz_name=EXCLUDED.tz_name,
			relationship=EXCLUDED.relationship,
			natal_chart=EXCLUDED.natal_chart
		RETURNING contact_id
	`, c.OwnerID, c.PersonName, c.BirthDate, c.BirthTime,
		c.City, c.Latitude, c.Longitude, c.Timezone, c.Relationship, c.NatalChart).Scan(&id)
	return id, err
}

// UpdateByID — терминальный шаг потока в режиме редактирования.
func (r *Contacts) UpdateByID(ctx context.Context, c *domain.Contact) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE contacts SET
			person_name=$3, birth_date=$4, birth_time=$5,
			city=$6, latitude=$7, longitude=$8, tz_name=$9,
			relationship=$10, natal_chart=$11
		WHERE contact_id=$1 AND owner_id=$2
	`, c.ID, c.OwnerID, c.PersonName, c.BirthDate, c.BirthTime,
		c.City, c.Latitude, c.Longitude, c.Timezone, c.Relationship, c.NatalChart)
	return err
}

func (r *Contacts) List(ctx context.Context, ownerID int64) ([]*domain.Contact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE owner_id=$1 ORDER BY person_name
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Contacts) Get(ctx context.Context, contactID int64) (*domain.Contact, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE contact_id=$1`, contactID)
	c, err := scanContact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// FindByName — регистронезависимый поиск по имени контакта.
func (r *Contacts) FindByName(ctx context.Context, ownerID int64, name string) (*domain.Contact, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE owner_id=$1 AND lower(person_name)=lower($2)
	`, ownerID, strings.TrimSpace(name))
	c, err := scanContact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *Contacts) Delete(ctx context.Context, contactID, ownerID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE contact_id=$1 AND owner_id=$2`, contactID, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// --- сохранённые анализы совместимости ---

func (r *Contacts) AddAnalysis(ctx context.Context, ownerID, contactID int64, text string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO compatibility_analyses(owner_id, contact_id, analysis_text)
		VALUES($1,$2,$3)
		RETURNING analysis_id
	`, ownerID, contactID, text).Scan(&id)
	return id, err
}

// CountAnalyses питает правило "первый анализ всегда полный".
func (r *Contacts) CountAnalyses(ctx context.Context, ownerID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM compatibility_analyses WHERE owner_id=$1
	`, ownerID).Scan(&n)
	return n, err
}

// LatestAnalysis — полный текст последнего анализа по контакту
// (для разблокировки после микроплатежа).
func (r *Contacts) LatestAnalysis(ctx context.Context, ownerID, contactID int64) (string, error) {
	var text string
	err := r.pool.QueryRow(ctx, `
		SELECT analysis_text FROM compatibility_analyses
		WHERE owner_id=$1 AND contact_id=$2
		ORDER BY created_at DESC LIMIT 1
	`, ownerID, contactID).Scan(&text)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return text, err
}
