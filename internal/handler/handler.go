package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pocketguide/internal/media"
	"pocketguide/internal/model"
	"pocketguide/internal/service"
	"pocketguide/internal/tour"
)

// Handler структурирует зависимости для обработки HTTP-запросов админки.
type Handler struct {
	catalog *service.CatalogService
	media   *media.Store
	log     *zap.Logger
}

// NewHandler создает новый Handler с внедрением зависимостей.
func NewHandler(catalog *service.CatalogService, mediaStore *media.Store, log *zap.Logger) *Handler {
	return &Handler{catalog: catalog, media: mediaStore, log: log}
}

// fail переводит ошибку доменного слоя в HTTP-статус.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tour.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "запись не найдена"})
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, media.ErrBadExtension),
		errors.Is(err, media.ErrBadCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, media.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "внутренняя ошибка"})
	}
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный id"})
		return 0, false
	}
	return id, true
}

// --- Города ---

// ListCities обработчик GET /api/cities.
func (h *Handler) ListCities(c *gin.Context) {
	cities, err := h.catalog.ListCities(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cities)
}

// GetCity обработчик GET /api/cities/:id.
func (h *Handler) GetCity(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	city, err := h.catalog.GetCity(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, city)
}

// CreateCity обработчик POST /api/cities.
func (h *Handler) CreateCity(c *gin.Context) {
	var city model.City
	if err := c.ShouldBindJSON(&city); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса"})
		return
	}
	id, err := h.catalog.CreateCity(c.Request.Context(), &city)
	if err != nil {
		fail(c, err)
		return
	}
	city.ID = id
	c.JSON(http.StatusCreated, city)
}

// UpdateCity обработчик PUT /api/cities/:id. Отсутствующие в теле поля
// сохраняют прежние значения.
func (h *Handler) UpdateCity(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	city, err := h.catalog.GetCity(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	updated := *city
	if err := c.ShouldBindJSON(&updated); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса"})
		return
	}
	updated.ID = id
	if err := h.catalog.UpdateCity(c.Request.Context(), &updated); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteCity обработчик DELETE /api/cities/:id. Вместе с записями города
// удаляются их медиафайлы. Живые сессии по удаленным экскурсиям не
// трогаются: движок сбросит их мягко при следующем действии.
func (h *Handler) DeleteCity(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	city, err := h.catalog.GetCity(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	refs := []*string{city.Image}
	excursions, err := h.catalog.ListExcursions(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	for _, exc := range excursions {
		refs = append(refs, exc.Image, exc.Video)
		points, err := h.catalog.ListPoints(ctx, exc.ID)
		if err != nil {
			fail(c, err)
			return
		}
		for _, p := range points {
			refs = append(refs, p.Audio, p.Image, p.Video)
		}
	}
	if err := h.catalog.DeleteCity(ctx, id); err != nil {
		fail(c, err)
		return
	}
	h.removeMedia(refs)
	c.Status(http.StatusNoContent)
}

func (h *Handler) removeMedia(refs []*string) {
	for _, ref := range refs {
		if ref == nil || *ref == "" {
			continue
		}
		if err := h.media.Delete(*ref); err != nil && !errors.Is(err, tour.ErrNotFound) {
			h.log.Warn("не удалось удалить медиафайл", zap.String("path", *ref), zap.Error(err))
		}
	}
}

// --- Экскурсии ---

// ListExcursions обработчик GET /api/excursions?city_id=N.
func (h *Handler) ListExcursions(c *gin.Context) {
	cityID, err := strconv.Atoi(c.Query("city_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "требуется параметр city_id"})
		return
	}
	excursions, err := h.catalog.ListExcursions(c.Request.Context(), cityID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, excursions)
}

// GetExcursion обработчик GET /api/excursions/:id.
func (h *Handler) GetExcursion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	exc, err := h.catalog.GetExcursion(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, exc)
}

// CreateExcursion обработчик POST /api/excursions.
func (h *Handler) CreateExcursion(c *gin.Context) {
	var exc model.Excursion
	if err := c.ShouldBindJSON(&exc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса"})
		return
	}
	id, err := h.catalog.CreateExcursion(c.Request.Context(), &exc)
	if err != nil {
		fail(c, err)
		return
	}
	exc.ID = id
	c.JSON(http.StatusCreated, exc)
}

// UpdateExcursion обработчик PUT /api/excursions/:id.
func (h *Handler) UpdateExcursion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	exc, err := h.catalog.GetExcursion(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	updated := *exc
	if err := c.ShouldBindJSON(&updated); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса"})
		return
	}
	updated.ID = id
	if err := h.catalog.UpdateExcursion(c.Request.Context(), &updated); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteExcursion обработчик DELETE /api/excursions/:id.
func (h *Handler) DeleteExcursion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	exc, err := h.catalog.GetExcursion(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	refs := []*string{exc.Image, exc.Video}
	points, err := h.catalog.ListPoints(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	for _, p := range points {
		refs = append(refs, p.Audio, p.Image, p.Video)
	}
	if err := h.catalog.DeleteExcursion(ctx, id); err != nil {
		fail(c, err)
		return
	}
	h.removeMedia(refs)
	c.Status(http.StatusNoContent)
}

// --- Точки ---

// ListPoints обработчик GET /api/points?excursion_id=N.
func (h *Handler) ListPoints(c *gin.Context) {
	excursionID, err := strconv.Atoi(c.Query("excursion_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "требуется параметр excursion_id"})
		return
	}
	points, err := h.catalog.ListPoints(c.Request.Context(), excursionID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// GetPoint обработчик GET /api/points/:id.
func (h *Handler) GetPoint(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.catalog.GetPoint(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreatePoint обработчик POST /api/points.
func (h *Handler) CreatePoint(c *gin.Context) {
	var p model.Point
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса"})
		return
	}
	id, err := h.catalog.CreatePoint(c.Request.Context(), &p)
	if err != nil {
		fail(c, err)
		return
	}
	p.ID = id
	c.JSON(http.StatusCreated, p)
}

// UpdatePoint обработчик PUT /api/points/:id.
func (h *Handler) UpdatePoint(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.catalog.GetPoint(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	updated := *p
	if err := c.ShouldBindJSON(&updated); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса"})
		return
	}
	updated.ID = id
	if err := h.catalog.UpdatePoint(c.Request.Context(), &updated); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeletePoint обработчик DELETE /api/points/:id.
func (h *Handler) DeletePoint(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	p, err := h.catalog.GetPoint(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.catalog.DeletePoint(ctx, id); err != nil {
		fail(c, err)
		return
	}
	h.removeMedia([]*string{p.Audio, p.Image, p.Video})
	c.Status(http.StatusNoContent)
}

// --- Медиа ---

// UploadMedia обработчик POST /api/media/:category (multipart, поле file).
// Необязательное поле prefix добавляется к имени файла (city_, excursion_).
func (h *Handler) UploadMedia(c *gin.Context) {
	category := media.Category(c.Param("category"))
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "требуется файл в поле file"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()

	ref, err := h.media.Save(category, c.PostForm("prefix"), fileHeader.Filename, f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"path": ref, "url": h.media.URL(ref)})
}

// DeleteMedia обработчик DELETE /api/media?path=media/images/x.jpg.
func (h *Handler) DeleteMedia(c *gin.Context) {
	ref := c.Query("path")
	if ref == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "требуется параметр path"})
		return
	}
	if err := h.media.Delete(ref); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
