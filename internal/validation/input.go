package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinUsernameLength     = 8
	MaxUsernameLength     = 150
	MaxNameLength         = 150
	MinListingTitleLength = 3
	MaxListingTitleLength = 200
	MaxListingDescLength  = 10000
	MaxSkillLength        = 50
	MaxSkillsCount        = 50
	MinMessageLength      = 1
	MaxMessageLength      = 5000
	MaxReviewTextLength   = 2000
	MaxExternalLinkLength = 500
	MaxCompanyNameLength  = 255
	MinRating             = 1.0
	MaxRating             = 5.0
	MaxSearchQueryLength  = 100
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.\-]+$`)
	emailLocal    = regexp.MustCompile(`^[a-z0-9._+\-]+$`)
	emailDomain   = regexp.MustCompile(`^[a-z0-9.\-]+\.[a-z]{2,}$`)
	spaces        = regexp.MustCompile(`\s+`)
)

// ValidateLength проверяет длину строки в рунах.
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

// ValidateUsername проверяет имя пользователя: не короче 8 символов,
// латиница, цифры и _ . -
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}
	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только латинские буквы, цифры и символы _ . -")
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return fmt.Errorf("некорректный формат email")
	}
	if len(local) == 0 || len(local) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domain) == 0 || len(domain) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}
	if !emailLocal.MatchString(local) || !emailDomain.MatchString(domain) {
		return fmt.Errorf("некорректный формат email")
	}
	return nil
}

// ValidatePersonName проверяет имя или фамилию. Пустое значение допустимо.
func ValidatePersonName(fieldName, value string) error {
	return ValidateLength(fieldName, strings.TrimSpace(value), 0, MaxNameLength)
}

// ValidateListingTitle проверяет заголовок заказа.
func ValidateListingTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("заголовок заказа обязателен")
	}
	return ValidateLength("заголовок заказа", title, MinListingTitleLength, MaxListingTitleLength)
}

// ValidateListingDescription проверяет описание заказа.
func ValidateListingDescription(description string) error {
	return ValidateLength("описание заказа", strings.TrimSpace(description), 0, MaxListingDescLength)
}

// NormalizeSkillName приводит название навыка к каноничному виду:
// без лишних пробелов и в нижнем регистре.
func NormalizeSkillName(name string) string {
	return strings.ToLower(spaces.ReplaceAllString(strings.TrimSpace(name), " "))
}

// ValidateSkillName проверяет одно название навыка.
func ValidateSkillName(name string) error {
	name = NormalizeSkillName(name)
	if name == "" {
		return fmt.Errorf("навык не может быть пустым")
	}
	if utf8.RuneCountInString(name) > MaxSkillLength {
		return fmt.Errorf("навык не может быть длиннее %d символов", MaxSkillLength)
	}
	return nil
}

// ValidateSkills проверяет массив навыков. Дубликаты допустимы: их
// схлопывает каталог навыков.
func ValidateSkills(skills []string) error {
	if len(skills) > MaxSkillsCount {
		return fmt.Errorf("количество навыков не может превышать %d", MaxSkillsCount)
	}
	for _, skill := range skills {
		if err := ValidateSkillName(skill); err != nil {
			return err
		}
	}
	return nil
}

// ValidateExternalLink проверяет ссылку на портфолио или сайт компании.
func ValidateExternalLink(fieldName, link string) error {
	link = strings.TrimSpace(link)
	if link == "" {
		return nil
	}
	if err := ValidateLength(fieldName, link, 0, MaxExternalLinkLength); err != nil {
		return err
	}

	parsedURL, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("%s: некорректный формат URL", fieldName)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s: ссылка должна начинаться с http:// или https://", fieldName)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s: ссылка должна содержать доменное имя", fieldName)
	}
	return nil
}

// ValidateMessageContent проверяет содержимое сообщения.
func ValidateMessageContent(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("сообщение не может быть пустым")
	}
	return ValidateLength("сообщение", content, MinMessageLength, MaxMessageLength)
}

// ValidateRating проверяет оценку отзыва.
func ValidateRating(rating float64) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("оценка должна быть от %.0f до %.0f", MinRating, MaxRating)
	}
	return nil
}

// ValidateReviewText проверяет текст отзыва.
func ValidateReviewText(text string) error {
	return ValidateLength("текст отзыва", strings.TrimSpace(text), 0, MaxReviewTextLength)
}
