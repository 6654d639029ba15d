package domain

// User: идентичность пользователя у внешнего провайдера. Учётные данные сервис не хранит.
type User struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// Session: результат регистрации или входа: сессионный токен провайдера и пользователь.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
