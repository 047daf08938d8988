package tour

import (
	"context"

	"pocketguide/internal/model"
)

// Catalog — контракт чтения контента (города → экскурсии → точки),
// который движок запрашивает заново на каждом переходе. Каталог может
// меняться извне (правки через админку) между нажатиями пользователя,
// поэтому движок никогда не кеширует список точек в сессии.
type Catalog interface {
	// ListCities возвращает все города в порядке добавления.
	ListCities(ctx context.Context) ([]model.City, error)
	// GetCity возвращает город по ID либо ErrNotFound.
	GetCity(ctx context.Context, id int) (*model.City, error)
	// ListExcursions возвращает экскурсии города. Пустой срез — не ошибка.
	ListExcursions(ctx context.Context, cityID int) ([]model.Excursion, error)
	// GetExcursion возвращает экскурсию по ID либо ErrNotFound.
	GetExcursion(ctx context.Context, id int) (*model.Excursion, error)
	// ListPoints возвращает точки экскурсии, отсортированные по Order по возрастанию.
	ListPoints(ctx context.Context, excursionID int) ([]model.Point, error)
}

// MediaResolver переводит сохраненный относительный путь (media/audio/xxx.mp3)
// в пригодную для отправки ссылку или путь к файлу. Отсутствующий файл — ErrNotFound.
type MediaResolver interface {
	Resolve(ref string) (string, error)
}
