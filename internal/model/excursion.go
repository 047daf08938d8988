package model

// Excursion представляет экскурсию — упорядоченный маршрут по точкам города.
type Excursion struct {
	ID          int     `db:"id" json:"id"`
	CityID      int     `db:"city_id" json:"city_id"`
	Title       string  `db:"title" json:"title"`
	Description string  `db:"description" json:"description"`
	Image       *string `db:"image" json:"image,omitempty"` // путь: media/images/excursion_xxx.jpg
	Video       *string `db:"video" json:"video,omitempty"` // путь: media/videos/excursion_xxx.mp4
}
