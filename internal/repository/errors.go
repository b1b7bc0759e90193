package repository

import "errors"

// ErrTokenAlreadyUsed indica que el marcado de uso perdio la carrera contra otro consumo.
var ErrTokenAlreadyUsed = errors.New("auth token already used")
