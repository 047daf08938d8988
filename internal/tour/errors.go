package tour

import "errors"

// Ошибки уровня ядра экскурсионного движка.
var (
	// ErrNotFound возвращается каталогом, если город/экскурсия/точка не существует.
	ErrNotFound = errors.New("запись не найдена")
	// ErrItineraryChanged означает, что маршрут изменился под ногами пользователя:
	// сохраненный курсор вышел за границы свежего списка точек.
	ErrItineraryChanged = errors.New("маршрут изменился")
	// ErrEmptyCatalog означает отсутствие данных на запрошенном уровне каталога.
	ErrEmptyCatalog = errors.New("каталог пуст")
)
