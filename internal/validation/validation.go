// Package validation содержит проверки пользовательского ввода, выполняемые до обращения к API.
package validation

import (
	"net/mail"
	"strings"
	"unicode"

	"github.com/mmeshcher/foodorder-client/internal/model"
)

const minPasswordLength = 8

// Error описывает ошибку проверки конкретного поля.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// IsValidQuantity проверяет количество позиции в корзине.
func IsValidQuantity(quantity int) bool {
	return quantity >= 1
}

// ValidateQuantity возвращает ошибку для количества меньше единицы.
func ValidateQuantity(quantity int) error {
	if !IsValidQuantity(quantity) {
		return &Error{Field: "quantity", Message: "Quantity must be at least 1"}
	}
	return nil
}

// ValidateEmail проверяет адрес электронной почты.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return &Error{Field: "email", Message: "Email is required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &Error{Field: "email", Message: "Invalid email address"}
	}
	return nil
}

// ValidatePassword проверяет длину и состав пароля и совпадение с подтверждением.
func ValidatePassword(password, confirm string) error {
	if password == "" {
		return &Error{Field: "password", Message: "Password is required"}
	}
	if len([]rune(password)) < minPasswordLength {
		return &Error{Field: "password", Message: "Password must be at least 8 characters"}
	}

	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !lower || !upper || !digit {
		return &Error{
			Field:   "password",
			Message: "Password must contain at least one uppercase letter, one lowercase letter, and one number",
		}
	}

	if confirm != password {
		return &Error{Field: "re_password", Message: "Passwords do not match"}
	}
	return nil
}

// ValidateRegisterData проверяет форму регистрации. Регион выбирается только
// из india и america: global назначается администраторам на сервере.
func ValidateRegisterData(data model.RegisterData) error {
	if err := ValidateEmail(data.Email); err != nil {
		return err
	}
	if strings.TrimSpace(data.FirstName) == "" {
		return &Error{Field: "first_name", Message: "First name is required"}
	}
	if strings.TrimSpace(data.LastName) == "" {
		return &Error{Field: "last_name", Message: "Last name is required"}
	}
	if data.Region != model.RegionIndia && data.Region != model.RegionAmerica {
		return &Error{Field: "region", Message: "Region must be india or america"}
	}
	return ValidatePassword(data.Password, data.RePassword)
}
