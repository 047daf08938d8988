package model

// City представляет город, в котором доступны экскурсии.
type City struct {
	ID    int     `db:"id" json:"id"`
	Name  string  `db:"name" json:"name"`
	Image *string `db:"image" json:"image,omitempty"` // путь к обложке, например media/images/city_1.jpg
}
