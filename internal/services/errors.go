package services

import "errors"

// Common service errors
var (
	ErrNotFound        = errors.New("registro no encontrado")
	ErrInvalidState    = errors.New("transición de estado inválida")
	ErrInvalidAmount   = errors.New("monto inválido")
	ErrInvalidInput    = errors.New("datos inválidos")
	ErrDuplicate       = errors.New("registro duplicado")
	ErrUnauthorized    = errors.New("no autorizado")
	ErrInvalidPassword = errors.New("contraseña inválida")
)
