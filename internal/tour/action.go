package tour

import (
	"fmt"
	"strconv"
	"strings"
)

// ActionKind перечисляет действия пользователя, понятные движку.
type ActionKind int

const (
	// ActionListCities — запрос списка городов (команда /get_trips).
	ActionListCities ActionKind = iota
	// ActionSelectCity — выбор города по кнопке.
	ActionSelectCity
	// ActionSelectExcursion — выбор экскурсии по кнопке.
	ActionSelectExcursion
	// ActionStartTour — старт выбранной экскурсии.
	ActionStartTour
	// ActionConfirmArrival — подтверждение «Я на месте».
	ActionConfirmArrival
	// ActionAdvance — переход к следующей точке.
	ActionAdvance
	// ActionReturnHome — возврат в главное меню (сброс сессии).
	ActionReturnHome
)

// String возвращает обозначение действия для логов.
func (k ActionKind) String() string {
	switch k {
	case ActionListCities:
		return "list_cities"
	case ActionSelectCity:
		return "select_city"
	case ActionSelectExcursion:
		return "select_excursion"
	case ActionStartTour:
		return "start_tour"
	case ActionConfirmArrival:
		return "confirm_arrival"
	case ActionAdvance:
		return "advance"
	case ActionReturnHome:
		return "return_home"
	}
	return "unknown"
}

// Action — одно валидированное действие пользователя.
// ID заполнен только для ActionSelectCity и ActionSelectExcursion.
type Action struct {
	Kind ActionKind
	ID   int
}

// Токены callback-данных inline-кнопок. Движок вкладывает их в ShowChoices,
// адаптер доставки возвращает их обратно через ParseToken.
const (
	tokenCityPrefix      = "city:"
	tokenExcursionPrefix = "exc:"
	TokenStartTour       = "start_trip"
	TokenConfirmArrival  = "im_here"
	TokenAdvance         = "next"
	TokenReturnHome      = "home"
)

// CityToken возвращает callback-токен выбора города.
func CityToken(id int) string { return fmt.Sprintf("%s%d", tokenCityPrefix, id) }

// ExcursionToken возвращает callback-токен выбора экскурсии.
func ExcursionToken(id int) string { return fmt.Sprintf("%s%d", tokenExcursionPrefix, id) }

// ParseToken разбирает callback-данные кнопки в действие движка.
// Возвращает false для неизвестных или испорченных токенов.
func ParseToken(data string) (Action, bool) {
	switch {
	case data == TokenStartTour:
		return Action{Kind: ActionStartTour}, true
	case data == TokenConfirmArrival:
		return Action{Kind: ActionConfirmArrival}, true
	case data == TokenAdvance:
		return Action{Kind: ActionAdvance}, true
	case data == TokenReturnHome:
		return Action{Kind: ActionReturnHome}, true
	case strings.HasPrefix(data, tokenCityPrefix):
		id, err := strconv.Atoi(strings.TrimPrefix(data, tokenCityPrefix))
		if err != nil {
			return Action{}, false
		}
		return Action{Kind: ActionSelectCity, ID: id}, true
	case strings.HasPrefix(data, tokenExcursionPrefix):
		id, err := strconv.Atoi(strings.TrimPrefix(data, tokenExcursionPrefix))
		if err != nil {
			return Action{}, false
		}
		return Action{Kind: ActionSelectExcursion, ID: id}, true
	}
	return Action{}, false
}
