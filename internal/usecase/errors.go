package usecase

import "errors"

// Таксономия ошибок real-time ядра и REST-слоя. Недоступность
// получателя (оффлайн) ошибкой не является - это обычное состояние,
// доставка молча пропускается.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")

	ErrUsernameTaken = errors.New("username already taken")
	ErrSelfContact   = errors.New("cannot add yourself as a contact")
	ErrContactExists = errors.New("contact already exists")
)
