package domain

import (
	"errors"
	"fmt"
)

// Базовые виды ошибок. Транспортный слой классифицирует ошибку через errors.Is
// и отображает вид в HTTP-статус.
var (
	// ErrInvalidArgument: некорректные или отсутствующие данные запроса.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthenticated: отсутствующий или недействительный токен/пароль.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrConflict: ресурс уже существует (например, аккаунт с таким email).
	ErrConflict = errors.New("conflict")
	// ErrNotFound: отсутствует каталог, заказ или позиция заказа.
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable: сбой чтения/записи во внешнем хранилище документов.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrAuthProvider: сбой внешнего провайдера идентификации.
	ErrAuthProvider = errors.New("auth provider error")
)

var (
	ErrUserIDRequired     = fmt.Errorf("%w: userId is required", ErrInvalidArgument)
	ErrBasketRequired     = fmt.Errorf("%w: basket is required", ErrInvalidArgument)
	ErrOrderRequired      = fmt.Errorf("%w: order is required", ErrInvalidArgument)
	ErrItemCountRange     = fmt.Errorf("%w: item count out of range", ErrInvalidArgument)
	ErrOrderIDInvalid     = fmt.Errorf("%w: orderId must be a positive integer", ErrInvalidArgument)
	ErrDishIDInvalid      = fmt.Errorf("%w: dishId must be a non-negative integer", ErrInvalidArgument)
	ErrGradeRequired      = fmt.Errorf("%w: grade is required", ErrInvalidArgument)
	ErrGradeOutOfRange    = fmt.Errorf("%w: grade must be between %d and %d", ErrInvalidArgument, MinGrade, MaxGrade)
	ErrCredentialsMissing = fmt.Errorf("%w: email and password are required", ErrInvalidArgument)

	// ErrCatalogEmpty возвращается, если в коллекции блюд нет ни одного документа.
	ErrCatalogEmpty = fmt.Errorf("%w: no dishes found", ErrNotFound)
	// ErrOrderNotFound: у пользователя нет заказа с указанным orderId (или нет документа заказов вовсе).
	ErrOrderNotFound = fmt.Errorf("%w: order not found", ErrNotFound)
	// ErrOrderItemNotFound: в заказе нет позиции с указанным orderDishId.
	ErrOrderItemNotFound = fmt.Errorf("%w: item not found in order", ErrNotFound)

	// ErrEmailInUse: провайдер уже содержит аккаунт с таким email.
	ErrEmailInUse = fmt.Errorf("%w: email already in use", ErrConflict)
	// ErrInvalidCredentials: неизвестный email или неверный пароль.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
	// ErrTokenMissing: запрос без Bearer-токена.
	ErrTokenMissing = fmt.Errorf("%w: bearer token is required", ErrUnauthenticated)
	// ErrTokenInvalid: токен не прошёл проверку (подпись, срок, отзыв).
	ErrTokenInvalid = fmt.Errorf("%w: invalid or revoked token", ErrUnauthenticated)

	// ErrOutboxPublish: ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// StoreError оборачивает ошибку драйвера хранилища видом ErrStoreUnavailable.
// Уже классифицированные ошибки домена возвращаются как есть.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if isClassified(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

// ProviderError оборачивает ошибку провайдера идентификации видом ErrAuthProvider.
func ProviderError(op string, err error) error {
	if err == nil {
		return nil
	}
	if isClassified(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrAuthProvider, op, err)
}

func isClassified(err error) bool {
	for _, kind := range []error{
		ErrInvalidArgument, ErrUnauthenticated, ErrConflict,
		ErrNotFound, ErrStoreUnavailable, ErrAuthProvider,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// IsNotFound проверяет, относится ли ошибка к виду ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
