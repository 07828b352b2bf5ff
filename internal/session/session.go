package session

import "sync"

// Message — реплика истории диалога для LLM-контекста.
type Message struct {
	Role    string
	Content string
}

// History — кольцевой буфер фиксированной ёмкости: при переполнении
// вытесняется самая старая реплика.
type History struct {
	capacity int
	items    []Message
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{capacity: capacity}
}

func (h *History) Push(m Message) {
	h.items = append(h.items, m)
	if len(h.items) > h.capacity {
		h.items = h.items[len(h.items)-h.capacity:]
	}
}

func (h *History) Items() []Message {
	out := make([]Message, len(h.items))
	copy(out, h.items)
	return out
}

func (h *History) Len() int { return len(h.items) }

// Session — эфемерное состояние диалога одного пользователя: текущий шаг
// плюс частично собранные поля между шагами.
type Session struct {
	State State

	// общие поля сценариев
	Date     string
	Time     string
	City     string
	Lat      float64
	Lon      float64
	Timezone string

	// совместимость
	PartnerName  string
	Relationship string
	EditMode     bool  // терминальный шаг обновляет контакт вместо вставки
	ContactID    int64 // цель при EditMode / выбранный контакт

	History *History
}

// Clear сбрасывает всё, кроме истории диалога: сценарий прерван,
// но контекст общения сохраняется до /reset.
func (s *Session) Clear() {
	history := s.History
	*s = Session{History: history}
}

// Reset сбрасывает и сценарий, и историю.
func (s *Session) Reset(historyCap int) {
	*s = Session{History: NewHistory(historyCap)}
}

type entry struct {
	mu sync.Mutex
	s  *Session
}

// Manager хранит сессии по telegram id и сериализует доступ: в один момент
// времени с сессией пользователя работает ровно один обработчик.
type Manager struct {
	mu         sync.Mutex
	sessions   map[int64]*entry
	historyCap int
}

func NewManager(historyCap int) *Manager {
	return &Manager{
		sessions:   make(map[int64]*entry),
		historyCap: historyCap,
	}
}

func (m *Manager) get(userID int64) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[userID]
	if !ok {
		e = &entry{s: &Session{History: NewHistory(m.historyCap)}}
		m.sessions[userID] = e
	}
	return e
}

// Do выполняет fn под мьютексом сессии пользователя.
func (m *Manager) Do(userID int64, fn func(s *Session)) {
	e := m.get(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.s)
}

// Reset — полный сброс сессии (команда /reset).
func (m *Manager) Reset(userID int64) {
	m.Do(userID, func(s *Session) {
		s.Reset(m.historyCap)
	})
}
