package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinTopicLength        = 3
	MaxTopicLength        = 200
	MaxInstructionsLength = 10000
	MinDisplayNameLength  = 2
	MaxDisplayNameLength  = 100
	MinPages              = 1
	MaxPages              = 1000
	MinDeadlineHours      = 1
	MaxDeadlineHours      = 24 * 90 // три месяца
	MaxAmount             = 1000000.0
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	emailRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !emailRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateDisplayName проверяет отображаемое имя.
func ValidateDisplayName(displayName string) error {
	if displayName == "" {
		return fmt.Errorf("отображаемое имя обязательно")
	}

	displayName = strings.TrimSpace(displayName)

	if err := ValidateLength("отображаемое имя", displayName, MinDisplayNameLength, MaxDisplayNameLength); err != nil {
		return err
	}

	displayNameRegex := regexp.MustCompile(`^[a-zA-Zа-яА-ЯёЁ0-9\s\-_.,!?()]+$`)
	if !displayNameRegex.MatchString(displayName) {
		return fmt.Errorf("отображаемое имя содержит недопустимые символы")
	}

	return nil
}

// ValidateTopic проверяет тему работы.
func ValidateTopic(topic string) error {
	if topic == "" {
		return fmt.Errorf("тема работы обязательна")
	}
	return ValidateLength("тема работы", strings.TrimSpace(topic), MinTopicLength, MaxTopicLength)
}

// ValidateInstructions проверяет инструкции к работе. Инструкции необязательны.
func ValidateInstructions(instructions string) error {
	return ValidateLength("инструкции", strings.TrimSpace(instructions), 0, MaxInstructionsLength)
}

// ValidatePages проверяет количество страниц.
func ValidatePages(pages int) error {
	if pages < MinPages {
		return fmt.Errorf("количество страниц должно быть не меньше %d", MinPages)
	}
	if pages > MaxPages {
		return fmt.Errorf("количество страниц не может превышать %d", MaxPages)
	}
	return nil
}

// ValidateDeadlineHours проверяет срок выполнения.
func ValidateDeadlineHours(hours int) error {
	if hours < MinDeadlineHours {
		return fmt.Errorf("срок выполнения должен быть не меньше %d часа", MinDeadlineHours)
	}
	if hours > MaxDeadlineHours {
		return fmt.Errorf("срок выполнения не может превышать %d часов", MaxDeadlineHours)
	}
	return nil
}

// ValidateAmount проверяет денежную сумму.
func ValidateAmount(fieldName string, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("%s должна быть положительной", fieldName)
	}
	if amount > MaxAmount {
		return fmt.Errorf("%s не может превышать %.0f", fieldName, MaxAmount)
	}
	return nil
}
