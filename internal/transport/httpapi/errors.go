package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

// Сообщения для пользователя; диагностика уходит в поле error и в лог.
const (
	msgDishesNotFound   = "Страви не знайдено"
	msgDishesFailed     = "Помилка при отриманні страв"
	msgUserMissing      = "Відсутні дані про користувача"
	msgBasketReadFailed = "Помилка при отриманні кошика"
	msgBasketMissing    = "Відсутні дані про користувача або корзину"
	msgBasketSaved      = "Кошик успішно збережено"
	msgBasketSaveFailed = "Помилка при збереженні кошика"
	msgOrdersFailed     = "Помилка при отриманні замовлень"
	msgItemCount        = "Кількість страв повинна бути в межах від 1 до 10"
	msgOrderSaved       = "Замовлення успішно збережено"
	msgOrderSaveFailed  = "Помилка при збереженні замовлення"
	msgRequiredMissing  = "Відсутні обов'язкові дані"
	msgOrderNotFound    = "Замовлення не знайдено"
	msgItemNotFound     = "Страва не знайдена в замовленні"
	msgGradeSet         = "Оцінка успішно встановлена"
	msgGradeFailed      = "Помилка при оновленні оцінки"
	msgFieldsMissing    = "Відсутні обов'язкові поля"
	msgUserCreated      = "Користувача успішно створено"
	msgEmailInUse       = "Обліковий запис з такою електронною поштою вже існує"
	msgSignUpFailed     = "Помилка при створенні користувача"
	msgLoggedIn         = "Успішний вхід"
	msgBadCredentials   = "Неправильний email або пароль"
	msgLogInFailed      = "Помилка при вході"
	msgLoggedOut        = "Успішний вихід"
	msgLogOutFailed     = "Помилка при виході"
	msgUserFailed       = "Помилка при отриманні даних користувача"
	msgUnauthorized     = "Неавторизований доступ"
	msgAuthFailed       = "Помилка перевірки авторизації"
	msgNotFound         = "Ресурс не знайдено"
	msgInternal         = "Внутрішня помилка сервера"
)

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// statusFor сопоставляет вид ошибки HTTP-статусу.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail пишет ответ об ошибке и логирует диагностику.
// Для 401 поле error не заполняется: причина отказа не раскрывается клиенту.
func (h *handler) fail(c *gin.Context, err error, message string) {
	status := statusFor(err)

	entry := requestEntry(c, h.logger).WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Error(message)
	} else {
		entry.Debug(message)
	}

	body := errorResponse{Message: message}
	if status != http.StatusUnauthorized {
		body.Error = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

func requestEntry(c *gin.Context, logger *log.Entry) *log.Entry {
	return logger.WithFields(log.Fields{
		"request_id": c.GetString(requestIDKey),
		"method":     c.Request.Method,
		"route":      routeOf(c),
	})
}
