package tour

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLazyInit(t *testing.T) {
	store := NewStore()
	sess := store.Get(1)
	assert.Equal(t, PhaseIdle, sess.Phase.Kind)
}

func TestStorePutGetClear(t *testing.T) {
	store := NewStore()
	store.Put(1, Session{Phase: CityChosen(7)})
	assert.Equal(t, 7, store.Get(1).Phase.CityID)

	store.Clear(1)
	assert.Equal(t, PhaseIdle, store.Get(1).Phase.Kind)
}

func TestStoreIsolatesConversations(t *testing.T) {
	store := NewStore()
	store.Put(1, Session{Phase: CityChosen(7)})
	assert.Equal(t, PhaseIdle, store.Get(2).Phase.Kind)
}

func TestStoreDoSerializesConversation(t *testing.T) {
	store := NewStore()
	const workers = 100

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Do(1, func(sess *Session) error {
				sess.Phase = AwaitingArrival(1, 10, sess.Phase.Cursor+1)
				return nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	// Без сериализации часть инкрементов была бы потеряна.
	assert.Equal(t, workers, store.Get(1).Phase.Cursor)
}

func TestStoreDoDiscardsOnError(t *testing.T) {
	store := NewStore()
	err := store.Do(1, func(sess *Session) error {
		sess.Phase = CityChosen(7)
		return ErrNotFound
	})
	require.Error(t, err)
	assert.Equal(t, PhaseIdle, store.Get(1).Phase.Kind)
}

func TestStoreEviction(t *testing.T) {
	store := NewStoreWithTTL(time.Millisecond)
	store.Put(1, Session{Phase: CityChosen(7)})

	store.evict(time.Now().Add(time.Second))
	assert.Equal(t, PhaseIdle, store.Get(1).Phase.Kind)
}
