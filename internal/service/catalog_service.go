package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"pocketguide/internal/model"
	"pocketguide/internal/repository"
)

// ErrValidation — нарушение ограничений на поля сущности.
var ErrValidation = errors.New("ошибка валидации")

// CatalogService содержит бизнес-логику каталога: валидацию полей при
// правках через админку и короткий кеш карточек города/экскурсии, чтобы
// повторные обращения в рамках одной экскурсии не ходили в базу.
// Списки точек не кешируются никогда: движок обязан видеть правки маршрута
// между нажатиями пользователя.
type CatalogService struct {
	repo  *repository.CatalogRepository
	cache *cache.Cache
	log   *zap.Logger
}

// NewCatalogService создает сервис каталога.
func NewCatalogService(repo *repository.CatalogRepository, log *zap.Logger) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: cache.New(time.Minute, 5*time.Minute),
		log:   log,
	}
}

// --- Чтение (реализация контракта tour.Catalog) ---

// ListCities возвращает все города.
func (s *CatalogService) ListCities(ctx context.Context) ([]model.City, error) {
	return s.repo.ListCities(ctx)
}

// GetCity возвращает город по ID, подставляя закешированную карточку.
func (s *CatalogService) GetCity(ctx context.Context, id int) (*model.City, error) {
	key := fmt.Sprintf("city:%d", id)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*model.City), nil
	}
	city, err := s.repo.GetCity(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, city)
	return city, nil
}

// ListExcursions возвращает экскурсии города.
func (s *CatalogService) ListExcursions(ctx context.Context, cityID int) ([]model.Excursion, error) {
	return s.repo.ListExcursions(ctx, cityID)
}

// GetExcursion возвращает экскурсию по ID, подставляя закешированную карточку.
func (s *CatalogService) GetExcursion(ctx context.Context, id int) (*model.Excursion, error) {
	key := fmt.Sprintf("exc:%d", id)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*model.Excursion), nil
	}
	exc, err := s.repo.GetExcursion(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, exc)
	return exc, nil
}

// ListPoints возвращает точки экскурсии в порядке маршрута. Без кеша.
func (s *CatalogService) ListPoints(ctx context.Context, excursionID int) ([]model.Point, error) {
	return s.repo.ListPoints(ctx, excursionID)
}

// GetPoint возвращает точку по ID.
func (s *CatalogService) GetPoint(ctx context.Context, id int) (*model.Point, error) {
	return s.repo.GetPoint(ctx, id)
}

// --- CRUD для админки ---

// CreateCity валидирует и создает город.
func (s *CatalogService) CreateCity(ctx context.Context, city *model.City) (int, error) {
	if err := validateCity(city); err != nil {
		return 0, err
	}
	id, err := s.repo.CreateCity(ctx, city)
	if err != nil {
		return 0, err
	}
	s.log.Info("город создан", zap.Int("id", id), zap.String("name", city.Name))
	return id, nil
}

// UpdateCity валидирует и обновляет город.
func (s *CatalogService) UpdateCity(ctx context.Context, city *model.City) error {
	if err := validateCity(city); err != nil {
		return err
	}
	if err := s.repo.UpdateCity(ctx, city); err != nil {
		return err
	}
	s.cache.Delete(fmt.Sprintf("city:%d", city.ID))
	return nil
}

// DeleteCity удаляет город.
func (s *CatalogService) DeleteCity(ctx context.Context, id int) error {
	if err := s.repo.DeleteCity(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(fmt.Sprintf("city:%d", id))
	s.log.Info("город удален", zap.Int("id", id))
	return nil
}

// CreateExcursion валидирует и создает экскурсию.
func (s *CatalogService) CreateExcursion(ctx context.Context, exc *model.Excursion) (int, error) {
	if err := validateExcursion(exc); err != nil {
		return 0, err
	}
	id, err := s.repo.CreateExcursion(ctx, exc)
	if err != nil {
		return 0, err
	}
	s.log.Info("экскурсия создана", zap.Int("id", id), zap.String("title", exc.Title))
	return id, nil
}

// UpdateExcursion валидирует и обновляет экскурсию.
func (s *CatalogService) UpdateExcursion(ctx context.Context, exc *model.Excursion) error {
	if err := validateExcursion(exc); err != nil {
		return err
	}
	if err := s.repo.UpdateExcursion(ctx, exc); err != nil {
		return err
	}
	s.cache.Delete(fmt.Sprintf("exc:%d", exc.ID))
	return nil
}

// DeleteExcursion удаляет экскурсию. Живые сессии, идущие по ней, не
// трогаются: движок сбросит их мягко при следующем действии пользователя.
func (s *CatalogService) DeleteExcursion(ctx context.Context, id int) error {
	if err := s.repo.DeleteExcursion(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(fmt.Sprintf("exc:%d", id))
	s.log.Info("экскурсия удалена", zap.Int("id", id))
	return nil
}

// CreatePoint валидирует и создает точку маршрута.
func (s *CatalogService) CreatePoint(ctx context.Context, p *model.Point) (int, error) {
	if err := validatePoint(p); err != nil {
		return 0, err
	}
	id, err := s.repo.CreatePoint(ctx, p)
	if err != nil {
		return 0, err
	}
	s.log.Info("точка создана", zap.Int("id", id), zap.Int("excursion", p.ExcursionID))
	return id, nil
}

// UpdatePoint валидирует и обновляет точку.
func (s *CatalogService) UpdatePoint(ctx context.Context, p *model.Point) error {
	if err := validatePoint(p); err != nil {
		return err
	}
	return s.repo.UpdatePoint(ctx, p)
}

// DeletePoint удаляет точку маршрута.
func (s *CatalogService) DeletePoint(ctx context.Context, id int) error {
	if err := s.repo.DeletePoint(ctx, id); err != nil {
		return err
	}
	s.log.Info("точка удалена", zap.Int("id", id))
	return nil
}

// --- Валидация ---

func validateCity(city *model.City) error {
	return lengthBetween("name", city.Name, 2, 100)
}

func validateExcursion(exc *model.Excursion) error {
	if err := lengthBetween("title", exc.Title, 5, 200); err != nil {
		return err
	}
	return lengthBetween("description", exc.Description, 10, 2000)
}

func validatePoint(p *model.Point) error {
	if p.Order < 1 || p.Order > 100 {
		return fmt.Errorf("%w: order должен быть в диапазоне [1,100]", ErrValidation)
	}
	if err := lengthBetween("title", p.Title, 3, 200); err != nil {
		return err
	}
	if err := lengthBetween("text", p.Text, 10, 2000); err != nil {
		return err
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: lat должна быть в диапазоне [-90,90]", ErrValidation)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: lng должна быть в диапазоне [-180,180]", ErrValidation)
	}
	return nil
}

func lengthBetween(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		return fmt.Errorf("%w: длина %s должна быть от %d до %d символов", ErrValidation, field, min, max)
	}
	return nil
}
