package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// PhonePattern определяет номер телефона в формате E.164
// Плюс, затем 8-15 цифр, первая цифра не ноль
var PhonePattern = regexp.MustCompile(`^\+[1-9][0-9]{7,14}$`)

// PinPattern определяет PIN-код: только цифры, 4-8 символов
var PinPattern = regexp.MustCompile(`^[0-9]{4,8}$`)

// DefaultCountryCode добавляется к 10-значным номерам без кода страны
const DefaultCountryCode = "+91"

const nationalNumberLen = 10

// NormalizePhone strips separators and prefixes a bare 10-digit national
// number with DefaultCountryCode. The result is not validated.
func NormalizePhone(phone string) string {
	phone = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))

	if len(phone) == nationalNumberLen && !strings.HasPrefix(phone, "+") {
		return DefaultCountryCode + phone
	}
	return phone
}

// ValidatePhone проверяет, что номер нормализован и соответствует E.164
func ValidatePhone(phone string) error {
	if phone == "" {
		return fmt.Errorf("phone number cannot be empty")
	}

	if !PhonePattern.MatchString(phone) {
		return fmt.Errorf("phone number must be in international format, e.g. +919876543210")
	}

	return nil
}

// ValidatePin проверяет PIN-код: 4-8 цифр
func ValidatePin(pin string) error {
	if pin == "" {
		return fmt.Errorf("pin cannot be empty")
	}

	if !PinPattern.MatchString(pin) {
		return fmt.Errorf("pin must contain 4 to 8 digits")
	}

	return nil
}
