package tour

// Тексты сообщений бота.
const (
	msgMenu = "👋 Привет! Это телеграм бот: ГИД В КАРМАНЕ\n\n" +
		"🎧 Аудиогид по локациям\n" +
		"🗺 Маршрут на карте\n\n" +
		"Меню → /instruction\n" +
		"Выбрать экскурсию → /get_trips"

	msgNoCities          = "❌ Нет доступных городов. Добавьте города через админ панель."
	msgNoExcursions      = "❌ В этом городе пока нет экскурсий."
	msgNoPoints          = "❌ В экскурсии пока нет точек."
	msgChooseCity        = "🌍 Выберите город:"
	msgChooseExcursion   = "🎒 Выберите экскурсию:"
	msgInvalidSelection  = "❌ Неверный выбор, попробуйте ещё раз."
	msgWrongState        = "❌ Действие сейчас недоступно. Вернитесь в меню: /get_trips"
	msgItineraryChanged  = "⚠️ Маршрут был изменён. Пожалуйста, начните экскурсию заново: /get_trips"
	msgCompleted         = "🎉 Экскурсия завершена!"
	msgArrivalPromptTail = "Нажмите кнопку, когда будете на месте."

	labelStart  = "▶️ Начать экскурсию"
	labelImHere = "📍 Я на месте"
	labelNext   = "➡️ Готов двигаться дальше"
	labelGoHome = "🏠 В меню"
)
