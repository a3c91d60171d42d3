package common

import "errors"

// Базовые категории ошибок хранилища. Доменные sentinel ошибки
// репозиториев оборачивают их через %w.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
)
