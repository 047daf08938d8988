package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"pocketguide/internal/model"
	"pocketguide/internal/tour"
)

// CatalogRepository обеспечивает доступ к контенту экскурсий в базе данных:
// чтение для бота и CRUD для админки. Отсутствующая запись всюду
// возвращается как tour.ErrNotFound.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository создает новый репозиторий каталога.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return tour.ErrNotFound
	}
	return err
}

// --- Чтение (контракт каталога для движка) ---

// ListCities возвращает все города в порядке добавления.
func (r *CatalogRepository) ListCities(ctx context.Context) ([]model.City, error) {
	cities := []model.City{}
	err := r.db.SelectContext(ctx, &cities, "SELECT * FROM cities ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении списка городов: %w", err)
	}
	return cities, nil
}

// GetCity возвращает город по ID.
func (r *CatalogRepository) GetCity(ctx context.Context, id int) (*model.City, error) {
	var city model.City
	err := r.db.GetContext(ctx, &city, "SELECT * FROM cities WHERE id=$1", id)
	if err != nil {
		return nil, notFound(err)
	}
	return &city, nil
}

// ListExcursions возвращает экскурсии города. Пустой срез — не ошибка.
func (r *CatalogRepository) ListExcursions(ctx context.Context, cityID int) ([]model.Excursion, error) {
	excursions := []model.Excursion{}
	err := r.db.SelectContext(ctx, &excursions, "SELECT * FROM excursions WHERE city_id=$1 ORDER BY id", cityID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении экскурсий города %d: %w", cityID, err)
	}
	return excursions, nil
}

// GetExcursion возвращает экскурсию по ID.
func (r *CatalogRepository) GetExcursion(ctx context.Context, id int) (*model.Excursion, error) {
	var exc model.Excursion
	err := r.db.GetContext(ctx, &exc, "SELECT * FROM excursions WHERE id=$1", id)
	if err != nil {
		return nil, notFound(err)
	}
	return &exc, nil
}

// ListPoints возвращает точки экскурсии, отсортированные по позиции в маршруте.
func (r *CatalogRepository) ListPoints(ctx context.Context, excursionID int) ([]model.Point, error) {
	points := []model.Point{}
	err := r.db.SelectContext(ctx, &points,
		"SELECT * FROM points WHERE excursion_id=$1 ORDER BY order_index", excursionID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении точек экскурсии %d: %w", excursionID, err)
	}
	return points, nil
}

// GetPoint возвращает точку по ID.
func (r *CatalogRepository) GetPoint(ctx context.Context, id int) (*model.Point, error) {
	var p model.Point
	err := r.db.GetContext(ctx, &p, "SELECT * FROM points WHERE id=$1", id)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// --- CRUD для админки ---

// CreateCity добавляет город. Возвращает ID созданной записи.
func (r *CatalogRepository) CreateCity(ctx context.Context, city *model.City) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO cities (name, image) VALUES ($1, $2) RETURNING id",
		city.Name, city.Image).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("не удалось создать город: %w", err)
	}
	return id, nil
}

// UpdateCity обновляет город целиком.
func (r *CatalogRepository) UpdateCity(ctx context.Context, city *model.City) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE cities SET name=$1, image=$2 WHERE id=$3",
		city.Name, city.Image, city.ID)
	if err != nil {
		return fmt.Errorf("не удалось обновить город %d: %w", city.ID, err)
	}
	return checkAffected(res)
}

// DeleteCity удаляет город вместе с его экскурсиями и точками.
func (r *CatalogRepository) DeleteCity(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cities WHERE id=$1", id)
	if err != nil {
		return fmt.Errorf("не удалось удалить город %d: %w", id, err)
	}
	return checkAffected(res)
}

// CreateExcursion добавляет экскурсию. Возвращает ID созданной записи.
func (r *CatalogRepository) CreateExcursion(ctx context.Context, exc *model.Excursion) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO excursions (city_id, title, description, image, video)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		exc.CityID, exc.Title, exc.Description, exc.Image, exc.Video).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("не удалось создать экскурсию: %w", err)
	}
	return id, nil
}

// UpdateExcursion обновляет экскурсию целиком.
func (r *CatalogRepository) UpdateExcursion(ctx context.Context, exc *model.Excursion) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE excursions SET city_id=$1, title=$2, description=$3, image=$4, video=$5 WHERE id=$6",
		exc.CityID, exc.Title, exc.Description, exc.Image, exc.Video, exc.ID)
	if err != nil {
		return fmt.Errorf("не удалось обновить экскурсию %d: %w", exc.ID, err)
	}
	return checkAffected(res)
}

// DeleteExcursion удаляет экскурсию вместе с точками.
func (r *CatalogRepository) DeleteExcursion(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM excursions WHERE id=$1", id)
	if err != nil {
		return fmt.Errorf("не удалось удалить экскурсию %d: %w", id, err)
	}
	return checkAffected(res)
}

// CreatePoint добавляет точку маршрута. Возвращает ID созданной записи.
func (r *CatalogRepository) CreatePoint(ctx context.Context, p *model.Point) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO points (excursion_id, order_index, title, text, lat, lng, audio, image, video)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		p.ExcursionID, p.Order, p.Title, p.Text, p.Lat, p.Lng, p.Audio, p.Image, p.Video).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("не удалось создать точку: %w", err)
	}
	return id, nil
}

// UpdatePoint обновляет точку целиком.
func (r *CatalogRepository) UpdatePoint(ctx context.Context, p *model.Point) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE points SET excursion_id=$1, order_index=$2, title=$3, text=$4,
		        lat=$5, lng=$6, audio=$7, image=$8, video=$9 WHERE id=$10`,
		p.ExcursionID, p.Order, p.Title, p.Text, p.Lat, p.Lng, p.Audio, p.Image, p.Video, p.ID)
	if err != nil {
		return fmt.Errorf("не удалось обновить точку %d: %w", p.ID, err)
	}
	return checkAffected(res)
}

// DeletePoint удаляет точку маршрута.
func (r *CatalogRepository) DeletePoint(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM points WHERE id=$1", id)
	if err != nil {
		return fmt.Errorf("не удалось удалить точку %d: %w", id, err)
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return tour.ErrNotFound
	}
	return nil
}
