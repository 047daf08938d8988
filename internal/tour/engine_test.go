package tour

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pocketguide/internal/model"
)

// fakeCatalog — каталог в памяти для тестов движка.
type fakeCatalog struct {
	cities     []model.City
	excursions map[int][]model.Excursion // по городу
	points     map[int][]model.Point     // по экскурсии
}

func (f *fakeCatalog) ListCities(context.Context) ([]model.City, error) {
	return f.cities, nil
}

func (f *fakeCatalog) GetCity(_ context.Context, id int) (*model.City, error) {
	for i := range f.cities {
		if f.cities[i].ID == id {
			return &f.cities[i], nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeCatalog) ListExcursions(_ context.Context, cityID int) ([]model.Excursion, error) {
	return f.excursions[cityID], nil
}

func (f *fakeCatalog) GetExcursion(_ context.Context, id int) (*model.Excursion, error) {
	for _, excs := range f.excursions {
		for i := range excs {
			if excs[i].ID == id {
				return &excs[i], nil
			}
		}
	}
	return nil, ErrNotFound
}

func (f *fakeCatalog) ListPoints(_ context.Context, excursionID int) ([]model.Point, error) {
	return f.points[excursionID], nil
}

// fakeResolver отдает ссылку как есть для известных путей.
type fakeResolver struct {
	known map[string]string
}

func (f *fakeResolver) Resolve(ref string) (string, error) {
	if resolved, ok := f.known[ref]; ok {
		return resolved, nil
	}
	return "", ErrNotFound
}

func strptr(s string) *string { return &s }

// parisCatalog — каталог из сценария: Париж, одна экскурсия, две точки.
func parisCatalog() *fakeCatalog {
	return &fakeCatalog{
		cities: []model.City{{ID: 1, Name: "Paris"}},
		excursions: map[int][]model.Excursion{
			1: {{ID: 10, CityID: 1, Title: "Historic Paris", Description: "Прогулка по историческому центру"}},
		},
		points: map[int][]model.Point{
			10: {
				{ID: 100, ExcursionID: 10, Order: 1, Title: "Лувр", Text: "Рассказ о Лувре", Lat: 48.8606, Lng: 2.3376},
				{ID: 101, ExcursionID: 10, Order: 2, Title: "Нотр-Дам", Text: "Рассказ о соборе", Lat: 48.8530, Lng: 2.3499},
			},
		},
	}
}

func newTestEngine(cat *fakeCatalog) (*Engine, *Store) {
	store := NewStore()
	resolver := &fakeResolver{known: map[string]string{}}
	return NewEngine(store, cat, resolver, zap.NewNop()), store
}

const conv int64 = 42

func handle(t *testing.T, e *Engine, act Action) []Event {
	t.Helper()
	events, err := e.Handle(context.Background(), conv, act)
	require.NoError(t, err)
	return events
}

func TestHappyPathTwoPoints(t *testing.T) {
	e, store := newTestEngine(parisCatalog())

	sequence := []Action{
		{Kind: ActionSelectCity, ID: 1},
		{Kind: ActionSelectExcursion, ID: 10},
		{Kind: ActionStartTour},
		{Kind: ActionConfirmArrival},
		{Kind: ActionAdvance},
		{Kind: ActionConfirmArrival},
		{Kind: ActionAdvance},
	}

	var locations, choices int
	var all []Event
	for _, act := range sequence {
		events := handle(t, e, act)
		all = append(all, events...)
		for _, ev := range events {
			switch ev.(type) {
			case ShowLocation:
				locations++
			case ShowChoices:
				choices++
			}
		}
	}

	assert.Equal(t, PhaseCompleted, store.Get(conv).Phase.Kind)
	// Ровно по одной паре метка+кнопка на каждую из двух точек.
	assert.Equal(t, 2, locations)

	last, ok := all[len(all)-1].(ShowChoices)
	require.True(t, ok)
	assert.Equal(t, msgCompleted, last.Prompt)
}

func TestReplayDeterminism(t *testing.T) {
	sequence := []Action{
		{Kind: ActionListCities},
		{Kind: ActionSelectCity, ID: 1},
		{Kind: ActionSelectExcursion, ID: 10},
		{Kind: ActionStartTour},
		{Kind: ActionConfirmArrival},
		{Kind: ActionReturnHome},
	}

	var traces [2][]Phase
	for run := 0; run < 2; run++ {
		e, store := newTestEngine(parisCatalog())
		for _, act := range sequence {
			handle(t, e, act)
			traces[run] = append(traces[run], store.Get(conv).Phase)
		}
	}
	assert.Equal(t, traces[0], traces[1])
}

func TestEmptyCatalog(t *testing.T) {
	e, store := newTestEngine(&fakeCatalog{})

	events := handle(t, e, Action{Kind: ActionListCities})
	require.Len(t, events, 1)
	assert.Equal(t, ShowText{Body: msgNoCities}, events[0])
	assert.Equal(t, PhaseIdle, store.Get(conv).Phase.Kind)
}

func TestCityWithNoExcursions(t *testing.T) {
	cat := parisCatalog()
	cat.cities = append(cat.cities, model.City{ID: 2, Name: "Lyon"})
	e, store := newTestEngine(cat)

	events := handle(t, e, Action{Kind: ActionSelectCity, ID: 2})
	require.Len(t, events, 1)
	assert.Equal(t, ShowText{Body: msgNoExcursions}, events[0])
	assert.Equal(t, PhaseCityChosen, store.Get(conv).Phase.Kind)
}

func TestInvalidCitySelection(t *testing.T) {
	e, store := newTestEngine(parisCatalog())

	events := handle(t, e, Action{Kind: ActionSelectCity, ID: 999})
	require.Len(t, events, 1)
	assert.Equal(t, ShowText{Body: msgInvalidSelection}, events[0])
	assert.Equal(t, PhaseIdle, store.Get(conv).Phase.Kind)
}

func TestCrossCityExcursionRejected(t *testing.T) {
	cat := parisCatalog()
	cat.cities = append(cat.cities, model.City{ID: 2, Name: "Lyon"})
	cat.excursions[2] = []model.Excursion{{ID: 20, CityID: 2, Title: "Old Lyon", Description: "Прогулка по старому Лиону"}}
	e, store := newTestEngine(cat)

	handle(t, e, Action{Kind: ActionSelectCity, ID: 1})
	events := handle(t, e, Action{Kind: ActionSelectExcursion, ID: 20})

	require.Len(t, events, 1)
	assert.Equal(t, ShowText{Body: msgInvalidSelection}, events[0])
	phase := store.Get(conv).Phase
	assert.Equal(t, PhaseCityChosen, phase.Kind)
	assert.Equal(t, 1, phase.CityID)
}

func TestTourWithoutPoints(t *testing.T) {
	cat := parisCatalog()
	cat.points[10] = nil
	e, store := newTestEngine(cat)

	handle(t, e, Action{Kind: ActionSelectCity, ID: 1})
	handle(t, e, Action{Kind: ActionSelectExcursion, ID: 10})
	events := handle(t, e, Action{Kind: ActionStartTour})

	require.Len(t, events, 1)
	assert.Equal(t, ShowText{Body: msgNoPoints}, events[0])
	assert.Equal(t, PhaseExcursionChosen, store.Get(conv).Phase.Kind)
}

func TestPointDeletedMidTour(t *testing.T) {
	cat := parisCatalog()
	cat.points[10] = append(cat.points[10],
		model.Point{ID: 102, ExcursionID: 10, Order: 3, Title: "Эйфелева башня", Text: "Рассказ о башне", Lat: 48.8584, Lng: 2.2945})
	e, store := newTestEngine(cat)

	handle(t, e, Action{Kind: ActionSelectCity, ID: 1})
	handle(t, e, Action{Kind: ActionSelectExcursion, ID: 10})
	handle(t, e, Action{Kind: ActionStartTour})
	handle(t, e, Action{Kind: ActionConfirmArrival})
	handle(t, e, Action{Kind: ActionAdvance})
	handle(t, e, Action{Kind: ActionConfirmArrival})
	handle(t, e, Action{Kind: ActionAdvance})
	require.Equal(t, 2, store.Get(conv).Phase.Cursor)

	// Третью точку удалили между отправкой метки и нажатием «Я на месте».
	cat.points[10] = cat.points[10][:2]
	events := handle(t, e, Action{Kind: ActionConfirmArrival})

	require.Len(t, events, 1)
	assert.Equal(t, ShowText{Body: msgItineraryChanged}, events[0])
	assert.Equal(t, PhaseIdle, store.Get(conv).Phase.Kind)
}

func TestReturnHomeIdempotent(t *testing.T) {
	e, store := newTestEngine(parisCatalog())

	for i := 0; i < 2; i++ {
		events := handle(t, e, Action{Kind: ActionReturnHome})
		require.Len(t, events, 1)
		assert.Equal(t, ShowText{Body: msgMenu}, events[0])
	}
	assert.Equal(t, PhaseIdle, store.Get(conv).Phase.Kind)
}

func TestCompletedIsTerminal(t *testing.T) {
	e, store := newTestEngine(parisCatalog())

	for _, act := range []Action{
		{Kind: ActionSelectCity, ID: 1},
		{Kind: ActionSelectExcursion, ID: 10},
		{Kind: ActionStartTour},
		{Kind: ActionConfirmArrival},
		{Kind: ActionAdvance},
		{Kind: ActionConfirmArrival},
		{Kind: ActionAdvance},
	} {
		handle(t, e, act)
	}
	require.Equal(t, PhaseCompleted, store.Get(conv).Phase.Kind)

	events := handle(t, e, Action{Kind: ActionAdvance})
	require.Len(t, events, 1)
	assert.Equal(t, ShowText{Body: msgWrongState}, events[0])
	assert.Equal(t, PhaseCompleted, store.Get(conv).Phase.Kind)

	handle(t, e, Action{Kind: ActionReturnHome})
	assert.Equal(t, PhaseIdle, store.Get(conv).Phase.Kind)
}

func TestDuplicateConfirmArrival(t *testing.T) {
	e, store := newTestEngine(parisCatalog())

	handle(t, e, Action{Kind: ActionSelectCity, ID: 1})
	handle(t, e, Action{Kind: ActionSelectExcursion, ID: 10})
	handle(t, e, Action{Kind: ActionStartTour})
	first := handle(t, e, Action{Kind: ActionConfirmArrival})
	require.NotEmpty(t, first)

	// Двойное нажатие не дублирует контент точки.
	second := handle(t, e, Action{Kind: ActionConfirmArrival})
	assert.Empty(t, second)
	assert.Equal(t, PhaseAtPoint, store.Get(conv).Phase.Kind)
}

func TestMediaUnavailableDegrades(t *testing.T) {
	cat := parisCatalog()
	cat.points[10][0].Image = strptr("media/images/louvre.jpg")
	cat.points[10][0].Audio = strptr("media/audio/louvre.mp3")
	e, _ := newTestEngine(cat)

	handle(t, e, Action{Kind: ActionSelectCity, ID: 1})
	handle(t, e, Action{Kind: ActionSelectExcursion, ID: 10})
	handle(t, e, Action{Kind: ActionStartTour})
	events := handle(t, e, Action{Kind: ActionConfirmArrival})

	// Резолвер не знает файлов: медиа пропущено, текст доставлен.
	require.Len(t, events, 1)
	choices, ok := events[0].(ShowChoices)
	require.True(t, ok)
	assert.Equal(t, "Рассказ о Лувре", choices.Prompt)
}

func TestMediaResolved(t *testing.T) {
	cat := parisCatalog()
	cat.points[10][0].Audio = strptr("media/audio/louvre.mp3")
	store := NewStore()
	resolver := &fakeResolver{known: map[string]string{
		"media/audio/louvre.mp3": "/srv/media/audio/louvre.mp3",
	}}
	e := NewEngine(store, cat, resolver, zap.NewNop())

	handle(t, e, Action{Kind: ActionSelectCity, ID: 1})
	handle(t, e, Action{Kind: ActionSelectExcursion, ID: 10})
	handle(t, e, Action{Kind: ActionStartTour})
	events := handle(t, e, Action{Kind: ActionConfirmArrival})

	require.Len(t, events, 2)
	assert.Equal(t, ShowMedia{Kind: MediaAudio, Ref: "/srv/media/audio/louvre.mp3"}, events[0])
}

func TestPointsResortedByOrder(t *testing.T) {
	cat := parisCatalog()
	// Каталог вернул точки вразнобой и с разреженными Order.
	cat.points[10] = []model.Point{
		{ID: 101, ExcursionID: 10, Order: 7, Title: "Нотр-Дам", Text: "Рассказ о соборе", Lat: 48.8530, Lng: 2.3499},
		{ID: 100, ExcursionID: 10, Order: 2, Title: "Лувр", Text: "Рассказ о Лувре", Lat: 48.8606, Lng: 2.3376},
	}
	e, _ := newTestEngine(cat)

	handle(t, e, Action{Kind: ActionSelectCity, ID: 1})
	handle(t, e, Action{Kind: ActionSelectExcursion, ID: 10})
	events := handle(t, e, Action{Kind: ActionStartTour})

	require.Len(t, events, 2)
	loc, ok := events[0].(ShowLocation)
	require.True(t, ok)
	// Первой идет точка с наименьшим Order, а не первая в ответе каталога.
	assert.Equal(t, 48.8606, loc.Lat)
}

func TestStartTourRestartRequiresHome(t *testing.T) {
	e, store := newTestEngine(parisCatalog())

	handle(t, e, Action{Kind: ActionSelectCity, ID: 1})
	handle(t, e, Action{Kind: ActionSelectExcursion, ID: 10})
	handle(t, e, Action{Kind: ActionStartTour})

	// Смена экскурсии посреди маршрута не разрешена без возврата в меню.
	events := handle(t, e, Action{Kind: ActionSelectExcursion, ID: 10})
	require.Len(t, events, 1)
	assert.Equal(t, ShowText{Body: msgWrongState}, events[0])
	assert.Equal(t, PhaseAwaitingArrival, store.Get(conv).Phase.Kind)
}
