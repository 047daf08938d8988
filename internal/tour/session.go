package tour

// Session — эфемерное состояние прохождения экскурсии одним диалогом.
// Все сведения о выборе пользователя (город, экскурсия, курсор) закодированы
// в фазе; отдельных «свободных» полей нет, чтобы несогласованные сочетания
// были непредставимы.
type Session struct {
	Phase Phase
}

// NewSession возвращает сессию в начальном состоянии.
func NewSession() Session {
	return Session{Phase: Idle()}
}
