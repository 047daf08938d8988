package model

// Point представляет точку экскурсионного маршрута с координатами и контентом.
// Поле Order задает позицию точки в маршруте; значения не обязаны идти подряд,
// движок сортирует точки по Order перед использованием.
type Point struct {
	ID          int     `db:"id" json:"id"`
	ExcursionID int     `db:"excursion_id" json:"excursion_id"`
	Order       int     `db:"order_index" json:"order"`
	Title       string  `db:"title" json:"title"`
	Text        string  `db:"text" json:"text"`
	Lat         float64 `db:"lat" json:"lat"`
	Lng         float64 `db:"lng" json:"lng"`
	Audio       *string `db:"audio" json:"audio,omitempty"` // путь: media/audio/xxx.mp3
	Image       *string `db:"image" json:"image,omitempty"` // путь: media/images/xxx.jpg
	Video       *string `db:"video" json:"video,omitempty"` // путь: media/videos/xxx.mp4
}
