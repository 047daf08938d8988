package tour

import "fmt"

// PhaseKind перечисляет состояния прохождения экскурсии.
type PhaseKind int

const (
	// PhaseIdle — начальное состояние: ни город, ни экскурсия не выбраны.
	PhaseIdle PhaseKind = iota
	// PhaseCityChosen — выбран город, идет выбор экскурсии.
	PhaseCityChosen
	// PhaseExcursionChosen — выбрана экскурсия, ожидается старт.
	PhaseExcursionChosen
	// PhaseAwaitingArrival — отправлена точка маршрута, ожидается «Я на месте».
	PhaseAwaitingArrival
	// PhaseAtPoint — контент точки показан, ожидается переход к следующей.
	PhaseAtPoint
	// PhaseCompleted — экскурсия завершена; до сброса принимается только возврат в меню.
	PhaseCompleted
)

// Phase — текущее положение пользователя в экскурсии. Поля CityID/ExcursionID/Cursor
// имеют смысл только для тех видов, конструкторы которых их устанавливают; создавать
// Phase следует только через конструкторы ниже, чтобы некорректные сочетания
// не возникали.
type Phase struct {
	Kind        PhaseKind
	CityID      int
	ExcursionID int
	// Cursor — позиционный индекс (с нуля) в списке точек, отсортированном по Order.
	// Это не значение поля Order: движок сортирует свежий список на каждом переходе
	// и адресует точки позицией.
	Cursor int
}

// Idle возвращает начальную фазу.
func Idle() Phase { return Phase{Kind: PhaseIdle} }

// CityChosen возвращает фазу с выбранным городом.
func CityChosen(cityID int) Phase {
	return Phase{Kind: PhaseCityChosen, CityID: cityID}
}

// ExcursionChosen возвращает фазу с выбранной экскурсией (курсор еще не установлен).
func ExcursionChosen(cityID, excursionID int) Phase {
	return Phase{Kind: PhaseExcursionChosen, CityID: cityID, ExcursionID: excursionID}
}

// AwaitingArrival возвращает фазу ожидания прибытия на точку cursor.
func AwaitingArrival(cityID, excursionID, cursor int) Phase {
	return Phase{Kind: PhaseAwaitingArrival, CityID: cityID, ExcursionID: excursionID, Cursor: cursor}
}

// AtPoint возвращает фазу «контент точки cursor показан».
func AtPoint(cityID, excursionID, cursor int) Phase {
	return Phase{Kind: PhaseAtPoint, CityID: cityID, ExcursionID: excursionID, Cursor: cursor}
}

// Completed возвращает терминальную фазу завершенной экскурсии.
func Completed() Phase { return Phase{Kind: PhaseCompleted} }

// String возвращает короткое обозначение фазы для логов.
func (p Phase) String() string {
	switch p.Kind {
	case PhaseIdle:
		return "idle"
	case PhaseCityChosen:
		return fmt.Sprintf("city_chosen(%d)", p.CityID)
	case PhaseExcursionChosen:
		return fmt.Sprintf("excursion_chosen(%d)", p.ExcursionID)
	case PhaseAwaitingArrival:
		return fmt.Sprintf("awaiting_arrival(%d:%d)", p.ExcursionID, p.Cursor)
	case PhaseAtPoint:
		return fmt.Sprintf("at_point(%d:%d)", p.ExcursionID, p.Cursor)
	case PhaseCompleted:
		return "completed"
	}
	return "unknown"
}
