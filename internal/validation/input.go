package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Константы валидации
const (
	MinFoodNameLength     = 2
	MaxFoodNameLength     = 200
	MaxDescriptionLength  = 2000
	MinDisplayNameLength  = 2
	MaxDisplayNameLength  = 100
	MaxAddressLength      = 300
	MaxZoneLength         = 64
	MaxDietaryNotesLength = 500
	MaxImageURLLength     = 500
	MaxQuantity           = 10000
	MaxFamilySize         = 50
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{5,19}$`)

// NormalizeText обрезает пробелы и приводит строку к форме NFC,
// чтобы одинаковые названия с разными комбинирующими символами совпадали.
func NormalizeText(value string) string {
	return norm.NFC.String(strings.TrimSpace(value))
}

// NormalizeOptional работает как NormalizeText, пустая строка превращается в nil.
func NormalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	normalized := NormalizeText(*value)
	if normalized == "" {
		return nil
	}
	return &normalized
}

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

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateFoodName проверяет название блюда. Ожидается уже нормализованная строка.
func ValidateFoodName(name string) error {
	if name == "" {
		return fmt.Errorf("название блюда обязательно")
	}
	return ValidateLength("название блюда", name, MinFoodNameLength, MaxFoodNameLength)
}

// ValidateDescription проверяет описание отчёта.
func ValidateDescription(description *string) error {
	if description == nil {
		return nil
	}
	return ValidateLength("описание", *description, 0, MaxDescriptionLength)
}

// ValidateQuantity проверяет количество порций.
func ValidateQuantity(quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("количество порций должно быть не меньше 1")
	}
	if quantity > MaxQuantity {
		return fmt.Errorf("количество порций не может превышать %d", MaxQuantity)
	}
	return nil
}

// ValidateDisplayName проверяет отображаемое имя курьера или название отеля.
func ValidateDisplayName(displayName string) error {
	if displayName == "" {
		return fmt.Errorf("имя обязательно")
	}
	return ValidateLength("имя", displayName, MinDisplayNameLength, MaxDisplayNameLength)
}

// ValidatePhone проверяет номер телефона, пустое значение допустимо.
func ValidatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("некорректный номер телефона")
	}
	return nil
}

// ValidateZone проверяет код зоны обслуживания.
func ValidateZone(zone string) error {
	return ValidateLength("зона", zone, 0, MaxZoneLength)
}

// ValidateImageURL проверяет ссылку на фотографию.
func ValidateImageURL(link *string) error {
	if link == nil || *link == "" {
		return nil
	}
	linkStr := strings.TrimSpace(*link)

	if err := ValidateLength("ссылка на фото", linkStr, 0, MaxImageURLLength); err != nil {
		return err
	}

	parsedURL, err := url.Parse(linkStr)
	if err != nil {
		return fmt.Errorf("некорректный формат URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("ссылка должна начинаться с http:// или https://")
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("ссылка должна содержать доменное имя")
	}
	return nil
}

// ValidateFamilySize проверяет размер семьи получателя.
func ValidateFamilySize(size int) error {
	if size < 1 || size > MaxFamilySize {
		return fmt.Errorf("размер семьи должен быть от 1 до %d", MaxFamilySize)
	}
	return nil
}
