package tour

import (
	"context"
	"sync"
	"time"
)

// Store хранит по одной живой сессии на каждый активный диалог.
// Действия одного диалога сериализуются собственным мьютексом записи
// (двойное нажатие кнопки обрабатывается строго по одному), при этом
// разные диалоги не блокируют друг друга.
type Store struct {
	mu      sync.Mutex
	entries map[int64]*entry
	ttl     time.Duration // 0 — без вытеснения простаивающих сессий
}

type entry struct {
	mu      sync.Mutex
	session Session
	touched time.Time
}

// NewStore создает хранилище сессий без вытеснения по простою.
func NewStore() *Store {
	return &Store{entries: make(map[int64]*entry)}
}

// NewStoreWithTTL создает хранилище, которое при периодической уборке
// (см. StartEvictor) забывает сессии, простоявшие дольше ttl.
// Вытеснение — необязательное расширение для ограничения памяти;
// забытая сессия эквивалентна возврату в меню.
func NewStoreWithTTL(ttl time.Duration) *Store {
	return &Store{entries: make(map[int64]*entry), ttl: ttl}
}

func (s *Store) entryFor(conversationID int64) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[conversationID]
	if !ok {
		e = &entry{session: NewSession(), touched: time.Now()}
		s.entries[conversationID] = e
	}
	return e
}

// Get возвращает сессию диалога, лениво создавая начальную при первом обращении.
func (s *Store) Get(conversationID int64) Session {
	e := s.entryFor(conversationID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// Put атомарно заменяет сессию диалога.
func (s *Store) Put(conversationID int64, sess Session) {
	e := s.entryFor(conversationID)
	e.mu.Lock()
	e.session = sess
	e.touched = time.Now()
	e.mu.Unlock()
}

// Clear сбрасывает сессию диалога в начальное состояние.
func (s *Store) Clear(conversationID int64) {
	s.Put(conversationID, NewSession())
}

// Do выполняет fn над сессией диалога под его мьютексом: пока fn работает,
// другие действия этого же диалога ждут. Изменения fn сохраняются только
// при nil-ошибке.
func (s *Store) Do(conversationID int64, fn func(sess *Session) error) error {
	e := s.entryFor(conversationID)
	e.mu.Lock()
	defer e.mu.Unlock()
	working := e.session
	if err := fn(&working); err != nil {
		return err
	}
	e.session = working
	e.touched = time.Now()
	return nil
}

// StartEvictor запускает фоновую уборку простаивающих сессий с заданным
// интервалом. Без TTL (NewStore) ничего не делает. Останавливается по ctx.
func (s *Store) StartEvictor(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				s.evict(now)
			}
		}
	}()
}

func (s *Store) evict(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		e.mu.Lock()
		idle := now.Sub(e.touched)
		e.mu.Unlock()
		if idle > s.ttl {
			delete(s.entries, id)
		}
	}
}
