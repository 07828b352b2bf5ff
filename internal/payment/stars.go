package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kirfitai/astrology-bot/internal/domain"
	"github.com/kirfitai/astrology-bot/internal/repo"
)

var ErrUnknownPlan = errors.New("unknown subscription plan")

// Invoice — данные для выставления счёта в Telegram Stars.
type Invoice struct {
	TransactionID int64
	Stars         int
	Title         string
	Description   string
	Payload       string
}

var planTitles = map[domain.Plan]string{
	domain.PlanWeek:    "Премиум на неделю",
	domain.PlanMonth:   "Премиум на месяц",
	domain.PlanQuarter: "Премиум на 3 месяца",
	domain.PlanYear:    "Премиум на год",
}

func PlanTitle(p domain.Plan) string {
	if t, ok := planTitles[p]; ok {
		return t
	}
	return string(p)
}

// Service создаёт транзакции и завершает их по событиям оплаты.
// Сам платёж проводит Telegram; здесь только жизненный цикл записи.
type Service struct {
	txs         *repo.Transactions
	users       *repo.Users
	prices      map[domain.Plan]float64
	starsPerUSD float64
	unlockStars int
}

func NewService(txs *repo.Transactions, users *repo.Users, prices map[domain.Plan]float64, starsPerUSD float64, unlockStars int) *Service {
	return &Service{
		txs:         txs,
		users:       users,
		prices:      prices,
		starsPerUSD: starsPerUSD,
		unlockStars: unlockStars,
	}
}

// CreateSubscription регистрирует pending-транзакцию и возвращает инвойс.
func (s *Service) CreateSubscription(ctx context.Context, userID int64, plan domain.Plan) (*Invoice, error) {
	price, ok := s.prices[plan]
	if !ok {
		return nil, ErrUnknownPlan
	}
	stars := int(price * s.starsPerUSD)

	id, err := s.txs.Add(ctx, &domain.Transaction{
		UserID: userID,
		Plan:   plan,
		Amount: price,
		Stars:  stars,
		Status: domain.TxPending,
		Method: "telegram_stars",
	})
	if err != nil {
		return nil, err
	}

	return &Invoice{
		TransactionID: id,
		Stars:         stars,
		Title:         PlanTitle(plan),
		Description:   "Безлимитное общение, полные анализы совместимости и расширенные гороскопы.",
		Payload:       fmt.Sprintf("sub:%d", id),
	}, nil
}

// CreateUnlock — одноразовая разблокировка анализа совместимости.
func (s *Service) CreateUnlock(ctx context.Context, userID, contactID int64) (*Invoice, error) {
	id, err := s.txs.Add(ctx, &domain.Transaction{
		UserID: userID,
		Plan:   domain.PlanFree,
		Amount: 0,
		Stars:  s.unlockStars,
		Status: domain.TxPending,
		Method: "telegram_stars",
	})
	if err != nil {
		return nil, err
	}

	return &Invoice{
		TransactionID: id,
		Stars:         s.unlockStars,
		Title:         "Разблокировка анализа",
		Description:   "Полный текст анализа совместимости.",
		Payload:       fmt.Sprintf("unlock:%d:%d", id, contactID),
	}, nil
}

// Completed обрабатывает успешный платёж по payload инвойса.
// Для подписки — активирует план; для разблокировки — возвращает id
// контакта, чей анализ надо показать целиком.
type Completion struct {
	Transaction *domain.Transaction
	Plan        domain.Plan // PlanFree для разблокировки
	ContactID   int64       // 0 для подписки
}

func (s *Service) Completed(ctx context.Context, payload, providerRef string) (*Completion, error) {
	kind, txID, contactID, err := parsePayload(payload)
	if err != nil {
		return nil, err
	}

	tx, err := s.txs.Get(ctx, txID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction %d not found", txID)
	}

	ref := providerRef
	if err := s.txs.UpdateStatus(ctx, txID, domain.TxCompleted, &ref); err != nil {
		return nil, err
	}

	if kind == "sub" {
		if err := s.users.UpdateSubscription(ctx, tx.UserID, tx.Plan, domain.PlanDays(tx.Plan)); err != nil {
			return nil, err
		}
		return &Completion{Transaction: tx, Plan: tx.Plan}, nil
	}
	return &Completion{Transaction: tx, Plan: domain.PlanFree, ContactID: contactID}, nil
}

// Failed помечает транзакцию неуспешной; подписка не меняется.
func (s *Service) Failed(ctx context.Context, payload string) error {
	_, txID, _, err := parsePayload(payload)
	if err != nil {
		return err
	}
	return s.txs.UpdateStatus(ctx, txID, domain.TxFailed, nil)
}

func parsePayload(payload string) (kind string, txID, contactID int64, err error) {
	parts := strings.Split(payload, ":")
	switch {
	case len(parts) == 2 && parts[0] == "sub":
		kind = "sub"
	case len(parts) == 3 && parts[0] == "unlock":
		kind = "unlock"
	default:
		return "", 0, 0, fmt.Errorf("bad payment payload %q", payload)
	}
	txID, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("bad payment payload %q", payload)
	}
	if kind == "unlock" {
		contactID, err = strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return "", 0, 0, fmt.Errorf("bad payment payload %q", payload)
		}
	}
	return kind, txID, contactID, nil
}
