package tour

// Event — инструкция показа контента, которую движок отдает адаптеру доставки.
// Закрытое множество реализаций: ShowText, ShowLocation, ShowMedia, ShowChoices.
type Event interface {
	isEvent()
}

// ShowText — показать текстовое сообщение.
type ShowText struct {
	Body string
}

// ShowLocation — показать точку на карте.
type ShowLocation struct {
	Lat float64
	Lng float64
}

// MediaKind — категория медиавложения.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
)

// ShowMedia — показать медиафайл. Ref — уже разрешенная резолвером ссылка или путь.
type ShowMedia struct {
	Kind MediaKind
	Ref  string
}

// Option — одна inline-кнопка: подпись и callback-токен.
type Option struct {
	Label string
	Token string
}

// ShowChoices — показать сообщение с inline-кнопками.
type ShowChoices struct {
	Prompt  string
	Options []Option
}

func (ShowText) isEvent()     {}
func (ShowLocation) isEvent() {}
func (ShowMedia) isEvent()    {}
func (ShowChoices) isEvent()  {}
