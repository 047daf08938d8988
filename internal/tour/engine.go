package tour

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"pocketguide/internal/model"
)

// Engine — конечный автомат прохождения экскурсии. На каждое действие
// пользователя вычисляет новую фазу сессии и набор инструкций показа.
// Список точек запрашивается у каталога заново на каждом переходе:
// админка может менять маршрут между нажатиями, и устаревший курсор
// должен мягко сбрасывать сессию, а не ронять обработку.
type Engine struct {
	store   *Store
	catalog Catalog
	media   MediaResolver
	log     *zap.Logger
}

// NewEngine создает движок экскурсий.
func NewEngine(store *Store, catalog Catalog, media MediaResolver, log *zap.Logger) *Engine {
	return &Engine{store: store, catalog: catalog, media: media, log: log}
}

// Handle обрабатывает одно действие диалога: под мьютексом диалога применяет
// переход, фиксирует новую сессию и возвращает события для показа.
// Ошибка возвращается только при сбое ввода-вывода каталога; все ожидаемые
// отклонения (неверный выбор, пустой каталог, устаревший курсор) выражены
// событиями, состояние при ошибке не меняется.
func (e *Engine) Handle(ctx context.Context, conversationID int64, act Action) ([]Event, error) {
	var events []Event
	err := e.store.Do(conversationID, func(sess *Session) error {
		before := sess.Phase
		evs, err := e.apply(ctx, sess, act)
		if err != nil {
			return err
		}
		e.log.Info("действие обработано",
			zap.Int64("conversation", conversationID),
			zap.Stringer("action", act.Kind),
			zap.Stringer("from", before),
			zap.Stringer("to", sess.Phase),
		)
		events = evs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (e *Engine) apply(ctx context.Context, sess *Session, act Action) ([]Event, error) {
	switch act.Kind {
	case ActionReturnHome:
		return e.returnHome(sess), nil
	case ActionListCities:
		return e.listCities(ctx, sess)
	case ActionSelectCity:
		return e.selectCity(ctx, sess, act.ID)
	case ActionSelectExcursion:
		return e.selectExcursion(ctx, sess, act.ID)
	case ActionStartTour:
		return e.startTour(ctx, sess)
	case ActionConfirmArrival:
		return e.confirmArrival(ctx, sess)
	case ActionAdvance:
		return e.advance(ctx, sess)
	}
	return nil, fmt.Errorf("неизвестное действие: %v", act.Kind)
}

// returnHome сбрасывает сессию и показывает главное меню. Повторный вызов
// из Idle дает ровно тот же результат.
func (e *Engine) returnHome(sess *Session) []Event {
	sess.Phase = Idle()
	return []Event{ShowText{Body: msgMenu}}
}

func (e *Engine) listCities(ctx context.Context, sess *Session) ([]Event, error) {
	cities, err := e.catalog.ListCities(ctx)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить список городов: %w", err)
	}
	if len(cities) == 0 {
		return []Event{ShowText{Body: msgNoCities}}, nil
	}
	// Запрос списка городов начинает выбор заново из любой фазы.
	sess.Phase = Idle()
	opts := make([]Option, len(cities))
	for i, c := range cities {
		opts[i] = Option{Label: c.Name, Token: CityToken(c.ID)}
	}
	return []Event{ShowChoices{Prompt: msgChooseCity, Options: opts}}, nil
}

func (e *Engine) selectCity(ctx context.Context, sess *Session, cityID int) ([]Event, error) {
	if sess.Phase.Kind != PhaseIdle {
		return []Event{ShowText{Body: msgWrongState}}, nil
	}
	city, err := e.catalog.GetCity(ctx, cityID)
	if errors.Is(err, ErrNotFound) {
		return []Event{ShowText{Body: msgInvalidSelection}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("не удалось получить город %d: %w", cityID, err)
	}
	excursions, err := e.catalog.ListExcursions(ctx, city.ID)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить экскурсии города %d: %w", city.ID, err)
	}
	sess.Phase = CityChosen(city.ID)
	if len(excursions) == 0 {
		return []Event{ShowText{Body: msgNoExcursions}}, nil
	}
	opts := make([]Option, len(excursions))
	for i, exc := range excursions {
		opts[i] = Option{Label: exc.Title, Token: ExcursionToken(exc.ID)}
	}
	return []Event{ShowChoices{Prompt: msgChooseExcursion, Options: opts}}, nil
}

func (e *Engine) selectExcursion(ctx context.Context, sess *Session, excursionID int) ([]Event, error) {
	if sess.Phase.Kind != PhaseCityChosen {
		return []Event{ShowText{Body: msgWrongState}}, nil
	}
	exc, err := e.catalog.GetExcursion(ctx, excursionID)
	if errors.Is(err, ErrNotFound) {
		return []Event{ShowText{Body: msgInvalidSelection}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("не удалось получить экскурсию %d: %w", excursionID, err)
	}
	if exc.CityID != sess.Phase.CityID {
		// Экскурсия из другого города: выбор отклоняется, город остается прежним.
		return []Event{ShowText{Body: msgInvalidSelection}}, nil
	}
	points, err := e.sortedPoints(ctx, exc.ID)
	if err != nil {
		return nil, err
	}
	sess.Phase = ExcursionChosen(exc.CityID, exc.ID)
	summary := fmt.Sprintf("*%s*\n\n%s\n\n📍 Точек: %d", exc.Title, exc.Description, len(points))
	return []Event{ShowChoices{
		Prompt:  summary,
		Options: []Option{{Label: labelStart, Token: TokenStartTour}},
	}}, nil
}

func (e *Engine) startTour(ctx context.Context, sess *Session) ([]Event, error) {
	if sess.Phase.Kind != PhaseExcursionChosen {
		return []Event{ShowText{Body: msgWrongState}}, nil
	}
	points, err := e.sortedPoints(ctx, sess.Phase.ExcursionID)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return []Event{ShowText{Body: msgNoPoints}}, nil
	}
	sess.Phase = AwaitingArrival(sess.Phase.CityID, sess.Phase.ExcursionID, 0)
	return pointIntro(points[0]), nil
}

func (e *Engine) confirmArrival(ctx context.Context, sess *Session) ([]Event, error) {
	if sess.Phase.Kind == PhaseAtPoint {
		// Повторное нажатие «Я на месте»: контент уже показан, ничего не дублируем.
		return nil, nil
	}
	if sess.Phase.Kind != PhaseAwaitingArrival {
		return []Event{ShowText{Body: msgWrongState}}, nil
	}
	points, err := e.sortedPoints(ctx, sess.Phase.ExcursionID)
	if err != nil {
		return nil, err
	}
	cursor := sess.Phase.Cursor
	if cursor >= len(points) {
		return e.itineraryChanged(sess), nil
	}
	p := points[cursor]
	sess.Phase = AtPoint(sess.Phase.CityID, sess.Phase.ExcursionID, cursor)
	return e.pointContent(p), nil
}

func (e *Engine) advance(ctx context.Context, sess *Session) ([]Event, error) {
	if sess.Phase.Kind != PhaseAtPoint {
		return []Event{ShowText{Body: msgWrongState}}, nil
	}
	points, err := e.sortedPoints(ctx, sess.Phase.ExcursionID)
	if err != nil {
		return nil, err
	}
	if sess.Phase.Cursor >= len(points) {
		return e.itineraryChanged(sess), nil
	}
	next := sess.Phase.Cursor + 1
	if next >= len(points) {
		sess.Phase = Completed()
		return []Event{ShowChoices{
			Prompt:  msgCompleted,
			Options: []Option{{Label: labelGoHome, Token: TokenReturnHome}},
		}}, nil
	}
	sess.Phase = AwaitingArrival(sess.Phase.CityID, sess.Phase.ExcursionID, next)
	return pointIntro(points[next]), nil
}

// itineraryChanged обрабатывает устаревший курсор: маршрут отредактировали
// между нажатиями, сессия мягко сбрасывается.
func (e *Engine) itineraryChanged(sess *Session) []Event {
	e.log.Warn("курсор вне границ маршрута, сессия сброшена",
		zap.Int("excursion", sess.Phase.ExcursionID),
		zap.Int("cursor", sess.Phase.Cursor),
	)
	sess.Phase = Idle()
	return []Event{ShowText{Body: msgItineraryChanged}}
}

// sortedPoints возвращает свежий список точек, страховочно отсортированный
// по Order по возрастанию.
func (e *Engine) sortedPoints(ctx context.Context, excursionID int) ([]model.Point, error) {
	points, err := e.catalog.ListPoints(ctx, excursionID)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить точки экскурсии %d: %w", excursionID, err)
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Order < points[j].Order })
	return points, nil
}

// pointIntro — анонс точки: метка на карте и просьба подтвердить прибытие.
func pointIntro(p model.Point) []Event {
	return []Event{
		ShowLocation{Lat: p.Lat, Lng: p.Lng},
		ShowChoices{
			Prompt:  fmt.Sprintf("📍 *%s*\n\n%s", p.Title, msgArrivalPromptTail),
			Options: []Option{{Label: labelImHere, Token: TokenConfirmArrival}},
		},
	}
}

// pointContent — контент точки после прибытия: медиа, рассказ и кнопка «дальше».
// Недоступный медиафайл пропускается, текст доставляется в любом случае.
func (e *Engine) pointContent(p model.Point) []Event {
	var events []Event
	events = e.appendMedia(events, MediaImage, p.Image)
	events = e.appendMedia(events, MediaAudio, p.Audio)
	events = e.appendMedia(events, MediaVideo, p.Video)
	events = append(events, ShowChoices{
		Prompt:  p.Text,
		Options: []Option{{Label: labelNext, Token: TokenAdvance}},
	})
	return events
}

func (e *Engine) appendMedia(events []Event, kind MediaKind, ref *string) []Event {
	if ref == nil || *ref == "" {
		return events
	}
	resolved, err := e.media.Resolve(*ref)
	if err != nil {
		e.log.Warn("медиафайл недоступен, точка отправлена без него",
			zap.String("ref", *ref), zap.Error(err))
		return events
	}
	return append(events, ShowMedia{Kind: kind, Ref: resolved})
}
