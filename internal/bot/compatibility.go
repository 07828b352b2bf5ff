package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kirfitai/astrology-bot/internal/astro"
	"github.com/kirfitai/astrology-bot/internal/domain"
	"github.com/kirfitai/astrology-bot/internal/session"
)

func (h *Handler) startCompat(ctx context.Context, chatID int64, u *domain.User, s *session.Session) {
	if !u.HasChart() {
		h.reply(chatID, "Для анализа совместимости сначала нужна ваша натальная карта. Нажмите «"+btnNatal+"».", mainMenu())
		return
	}
	s.Clear()
	s.State = session.CompatAction
	h.reply(chatID, "💞 Анализ совместимости. Добавить нового человека или выбрать из сохранённых?", compatibilityMenu())
}

func (h *Handler) compatStep(ctx context.Context, chatID int64, u *domain.User, s *session.Session, text string) {
	// состояния-меню обрабатываются вручную, шаги ввода — по таблице переходов
	switch s.State {
	case session.CompatAction:
		h.compatAction(ctx, chatID, u, s, text)
		return
	case session.CompatSelectContact:
		h.compatSelectContact(ctx, chatID, u, s, text)
		return
	case session.CompatName:
		h.compatName(ctx, chatID, u, s, text)
		return
	case session.CompatViewing:
		if text == session.BackSentinel {
			s.Clear()
			h.reply(chatID, "Вы вернулись в главное меню.", mainMenu())
			return
		}
		h.reply(chatID, "Используйте кнопки под карточкой контакта или вернитесь в меню.", nil)
		return
	}

	cur := s.State
	next, class, ok := session.Step(cur, text)
	if class == session.InputBack {
		s.Clear()
		h.reply(chatID, "Вы вернулись в главное меню.", mainMenu())
		return
	}
	if !ok {
		h.reply(chatID, invalidInputPrompt(cur), nil)
		return
	}

	switch cur {
	case session.CompatDate:
		s.Date, _ = astro.ParseDate(text)
		s.State = next
		h.reply(chatID, "🕐 Время рождения партнёра, например 14:30. Если неизвестно, выберите период дня.", timePeriodsKeyboard())

	case session.CompatTime:
		s.Time = astro.ParseTime(text)
		s.State = next
		h.reply(chatID, "🏙 В каком городе родился этот человек?", backButton())

	case session.CompatCity:
		loc, err := h.resolver.Resolve(ctx, text)
		if err != nil {
			h.log.Warn().Err(err).Str("place", text).Msg("geocode failed")
			h.reply(chatID, "Не удалось найти такое место. Попробуйте написать иначе.", nil)
			return
		}
		s.City, s.Lat, s.Lon, s.Timezone = loc.Address, loc.Lat, loc.Lon, loc.Timezone
		s.State = next
		h.reply(chatID, "Кем вам приходится этот человек? Например: партнёр, друг, коллега, мама.", backButton())

	case session.CompatRelationship:
		s.Relationship = strings.TrimSpace(text)
		s.State = next
		h.reply(chatID, fmt.Sprintf(
			"📍 %s\nКоординаты: %.4f, %.4f\nЧасовой пояс: %s\n\nУточнить координаты вручную?",
			s.City, s.Lat, s.Lon, s.Timezone), yesNoKeyboard())

	case session.CompatCoordsChoice:
		if class == session.InputYes {
			s.State = next
			h.reply(chatID, "Введите координаты: широта, долгота.", backButton())
			return
		}
		s.State = session.CompatComputing
		h.computeCompat(ctx, chatID, u, s)

	case session.CompatCoords:
		lat, lon, _ := astro.ParseCoords(text)
		s.Lat, s.Lon = lat, lon
		s.State = session.CompatComputing
		h.computeCompat(ctx, chatID, u, s)
	}
}

func (h *Handler) compatAction(ctx context.Context, chatID int64, u *domain.User, s *session.Session, text string) {
	switch text {
	case session.BackSentinel:
		s.Clear()
		h.reply(chatID, "Вы вернулись в главное меню.", mainMenu())
	case btnNewContact, btnAddShort:
		s.State = session.CompatName
		h.reply(chatID, "Как зовут этого человека?", backButton())
	case btnMyContacts:
		contacts, err := h.contacts.List(ctx, u.TelegramID)
		if err != nil {
			h.reportError("contacts_list", err, chatID)
			h.reply(chatID, "Не получилось загрузить контакты, попробуйте позже.", nil)
			return
		}
		if len(contacts) == 0 {
			h.reply(chatID, "Сохранённых контактов пока нет. Добавьте первого!", nil)
			return
		}
		s.State = session.CompatSelectContact
		h.reply(chatID, "Выберите контакт:", contactsKeyboard(contacts))
	default:
		h.reply(chatID, "Выберите действие кнопками ниже.", compatibilityMenu())
	}
}

func (h *Handler) compatSelectContact(ctx context.Context, chatID int64, u *domain.User, s *session.Session, text string) {
	switch text {
	case session.BackSentinel:
		s.Clear()
		h.reply(chatID, "Вы вернулись в главное меню.", mainMenu())
		return
	case btnBack:
		s.State = session.CompatAction
		h.reply(chatID, "Добавить нового человека или выбрать из сохранённых?", compatibilityMenu())
		return
	case btnAddShort:
		s.State = session.CompatName
		h.reply(chatID, "Как зовут этого человека?", backButton())
		return
	}

	name := strings.TrimSpace(strings.TrimPrefix(text, "👤 "))
	c, err := h.contacts.FindByName(ctx, u.TelegramID, name)
	if err != nil {
		h.reportError("contact_find", err, chatID)
		return
	}
	if c == nil {
		h.reply(chatID, "Такого контакта не нашлось. Выберите из списка.", nil)
		return
	}
	s.State = session.CompatViewing
	s.ContactID = c.ID
	card := fmt.Sprintf("👤 %s\n📅 %s, %s\n🏙 %s\n💞 %s",
		c.PersonName, c.BirthDate, c.BirthTime, c.City, c.Relationship)
	m := tgbotapi.NewMessage(chatID, card)
	m.ReplyMarkup = contactActionsInline(c.ID)
	h.send(m)
}

// compatName: ввод имени и развилка для уже существующего контакта.
func (h *Handler) compatName(ctx context.Context, chatID int64, u *domain.User, s *session.Session, text string) {
	switch text {
	case session.BackSentinel:
		s.Clear()
		h.reply(chatID, "Вы вернулись в главное меню.", mainMenu())
		return
	case btnUseSaved:
		if s.ContactID == 0 {
			h.reply(chatID, "Сначала введите имя.", nil)
			return
		}
		c, err := h.contacts.Get(ctx, s.ContactID)
		if err != nil || c == nil {
			h.reportError("contact_get", err, chatID)
			h.reply(chatID, "Контакт не нашёлся, введите данные заново.", backButton())
			return
		}
		h.fillFromContact(s, c)
		s.State = session.CompatComputing
		h.computeCompat(ctx, chatID, u, s)
		return
	case btnReenter:
		if s.PartnerName == "" {
			h.reply(chatID, "Сначала введите имя.", nil)
			return
		}
		// перезапись существующего контакта, id уже в сессии
		s.EditMode = s.ContactID != 0
		s.State = session.CompatDate
		h.reply(chatID, "📅 Дата рождения партнёра, формат ДД.ММ.ГГГГ.", backButton())
		return
	}

	name := strings.TrimSpace(text)
	if name == "" {
		h.reply(chatID, "Напишите имя текстом.", nil)
		return
	}

	existing, err := h.contacts.FindByName(ctx, u.TelegramID, name)
	if err != nil {
		h.reportError("contact_find", err, chatID)
		return
	}
	s.PartnerName = name
	if existing != nil {
		s.ContactID = existing.ID
		h.reply(chatID, fmt.Sprintf(
			"У вас уже есть контакт «%s» (%s, %s). Использовать сохранённые данные или ввести заново?",
			existing.PersonName, existing.BirthDate, existing.City), reuseContactKeyboard())
		return
	}
	s.ContactID = 0
	s.State = session.CompatDate
	h.reply(chatID, "📅 Дата рождения партнёра, формат ДД.ММ.ГГГГ.", backButton())
}

func (h *Handler) fillFromContact(s *session.Session, c *domain.Contact) {
	s.PartnerName = c.PersonName
	s.Date, s.Time = c.BirthDate, c.BirthTime
	s.City, s.Lat, s.Lon, s.Timezone = c.City, c.Latitude, c.Longitude, c.Timezone
	s.Relationship = c.Relationship
	s.ContactID = c.ID
	s.EditMode = true
}

// computeCompat — расчёт обеих карт, синастрия и LLM-анализ.
// Точка невозврата, как и расчёт натальной карты.
func (h *Handler) computeCompat(ctx context.Context, chatID int64, u *domain.User, s *session.Session) {
	h.reply(chatID, "🔮 Считаю совместимость...", tgbotapi.NewRemoveKeyboard(true))

	userChart, err := h.chartFromProfile(u)
	if err != nil {
		h.abortFlow(chatID, s, "compat_user_chart", err)
		return
	}

	utc, err := astro.NormalizeBirth(s.Date, s.Time, s.Timezone)
	if err != nil {
		h.abortFlow(chatID, s, "compat_normalize", err)
		return
	}
	positions, err := h.eph.Positions(utc, s.Lat, s.Lon)
	if err != nil {
		h.abortFlow(chatID, s, "compat_positions", err)
		return
	}
	houses, err := h.eph.Houses(utc, s.Lat, s.Lon)
	if err != nil {
		h.abortFlow(chatID, s, "compat_houses", err)
		return
	}
	partnerChart := astro.BuildChart(positions, houses)
	partnerText := astro.FormatChart(partnerChart)

	contact := &domain.Contact{
		ID:           s.ContactID,
		OwnerID:      u.TelegramID,
		PersonName:   s.PartnerName,
		BirthDate:    s.Date,
		BirthTime:    s.Time,
		City:         s.City,
		Latitude:     s.Lat,
		Longitude:    s.Lon,
		Timezone:     s.Timezone,
		Relationship: s.Relationship,
		NatalChart:   partnerText,
	}
	if s.EditMode && s.ContactID != 0 {
		err = h.contacts.UpdateByID(ctx, contact)
	} else {
		contact.ID, err = h.contacts.Upsert(ctx, contact)
	}
	if err != nil {
		h.abortFlow(chatID, s, "contact_save", err)
		return
	}

	aspects := astro.Aspects(userChart, partnerChart)
	aspectsText := astro.FormatAspects(aspects)

	analysis, usage, err := h.gen.CompatibilityAnalysis(ctx, *u.NatalChart, partnerText, aspectsText, s.Relationship)
	if err != nil {
		h.abortFlow(chatID, s, "compat_analysis", err)
		return
	}
	h.accountUsage(ctx, u, "Анализ совместимости: "+contact.PersonName, analysis, usage)

	// решение о полном тексте принимается до записи анализа:
	// самый первый анализ показывается целиком
	full, err := h.gate.AnalysisView(ctx, u)
	if err != nil {
		h.reportError("analysis_view", err, chatID)
		full = false
	}
	if _, err := h.contacts.AddAnalysis(ctx, u.TelegramID, contact.ID, analysis); err != nil {
		h.reportError("analysis_save", err, chatID)
	}

	header := fmt.Sprintf("💞 Совместимость с %s\n\n%s\n\n", contact.PersonName, aspectsText)
	if full {
		h.reply(chatID, header+analysis, mainMenu())
	} else {
		m := tgbotapi.NewMessage(chatID, header+h.gate.Preview(analysis)+
			"\n\n🔒 Полный анализ доступен по подписке или за разовую разблокировку.")
		m.ReplyMarkup = unlockInline(contact.ID, h.cfg.UnlockStars)
		h.send(m)
		h.reply(chatID, "Возвращаю в меню.", mainMenu())
	}

	s.Clear()
	s.State = session.DialogActive
}

// chartFromProfile восстанавливает карту пользователя из сохранённого
// профиля рождения. Текстовое представление в базе уже есть, но для
// аспектов нужны долготы.
func (h *Handler) chartFromProfile(u *domain.User) (astro.Chart, error) {
	if u.BirthDate == nil || u.BirthTime == nil || u.Timezone == nil ||
		u.Latitude == nil || u.Longitude == nil {
		return nil, fmt.Errorf("user %d has no birth profile", u.TelegramID)
	}
	utc, err := astro.NormalizeBirth(*u.BirthDate, *u.BirthTime, *u.Timezone)
	if err != nil {
		return nil, err
	}
	positions, err := h.eph.Positions(utc, *u.Latitude, *u.Longitude)
	if err != nil {
		return nil, err
	}
	houses, err := h.eph.Houses(utc, *u.Latitude, *u.Longitude)
	if err != nil {
		return nil, err
	}
	return astro.BuildChart(positions, houses), nil
}

// --- callbacks ---

func (h *Handler) compatWithSavedContact(ctx context.Context, chatID int64, u *domain.User, contactID int64) {
	c, err := h.contacts.Get(ctx, contactID)
	if err != nil || c == nil || c.OwnerID != u.TelegramID {
		h.reportError("contact_get", err, chatID)
		h.reply(chatID, "Контакт не нашёлся.", mainMenu())
		return
	}
	h.sessions.Do(u.TelegramID, func(s *session.Session) {
		s.Clear()
		h.fillFromContact(s, c)
		s.State = session.CompatComputing
		h.computeCompat(ctx, chatID, u, s)
	})
}

func (h *Handler) beginContactEdit(ctx context.Context, chatID int64, u *domain.User, contactID int64) {
	c, err := h.contacts.Get(ctx, contactID)
	if err != nil || c == nil || c.OwnerID != u.TelegramID {
		h.reportError("contact_get", err, chatID)
		return
	}
	h.sessions.Do(u.TelegramID, func(s *session.Session) {
		s.Clear()
		s.EditMode = true
		s.ContactID = c.ID
		s.PartnerName = c.PersonName
		s.State = session.CompatDate
		h.reply(chatID, fmt.Sprintf("✏️ Обновляем данные «%s».\n📅 Дата рождения, формат ДД.ММ.ГГГГ.", c.PersonName), backButton())
	})
}

func (h *Handler) deleteContact(ctx context.Context, chatID int64, u *domain.User, contactID int64) {
	deleted, err := h.contacts.Delete(ctx, contactID, u.TelegramID)
	if err != nil {
		h.reportError("contact_delete", err, chatID)
		return
	}
	if !deleted {
		h.reply(chatID, "Контакт уже удалён.", mainMenu())
		return
	}
	h.sessions.Do(u.TelegramID, func(s *session.Session) { s.Clear() })
	h.reply(chatID, "🗑 Контакт удалён.", mainMenu())
}
