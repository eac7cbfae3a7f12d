package middleware

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gofiber/fiber/v3"
)

// Request parameter limits.
const (
	MaxQueryLen       = 200
	MaxPageTokenLen   = 128
	MaxChannelIDLen   = 32
	MaxSearchResults  = 150
	DefaultSearchSize = 150
	MaxTrendingSize   = 50
	DefaultRegionCode = "KR"
)

var (
	// pageTokenRe matches continuation tokens: URL-safe base64 alphabet.
	pageTokenRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	// channelIDRe matches YouTube channel IDs: alphanumeric, dash, underscore.
	channelIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	// regionRe matches ISO 3166-1 alpha-2 codes.
	regionRe = regexp.MustCompile(`^[A-Z]{2}$`)
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateQuery trims a search query and checks it is present, bounded and
// free of control characters.
func ValidateQuery(q string) (string, string) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", "q is required"
	}
	if !utf8.ValidString(q) {
		return "", "q must be valid UTF-8"
	}
	if utf8.RuneCountInString(q) > MaxQueryLen {
		return "", "q must be at most 200 characters"
	}
	for _, r := range q {
		if unicode.IsControl(r) {
			return "", "q contains invalid characters"
		}
	}
	return q, ""
}

// ValidateMaxResults parses an optional max_results value in [1, limit].
// An empty value yields def.
func ValidateMaxResults(raw string, def, limit int) (int, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, ""
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, "max_results must be an integer"
	}
	if n < 1 || n > limit {
		return 0, "max_results must be between 1 and " + strconv.Itoa(limit)
	}
	return n, ""
}

// ValidatePageToken checks an optional continuation token. Empty is allowed.
func ValidatePageToken(token string) (string, string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ""
	}
	if len(token) > MaxPageTokenLen {
		return "", "page_token must be at most 128 characters"
	}
	if !pageTokenRe.MatchString(token) {
		return "", "page_token contains invalid characters"
	}
	return token, ""
}

// ValidateRegionCode normalizes an optional two-letter region code. Empty
// yields DefaultRegionCode.
func ValidateRegionCode(code string) (string, string) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultRegionCode, ""
	}
	if !regionRe.MatchString(code) {
		return "", "region must be a two-letter country code"
	}
	return code, ""
}

// ValidateChannelID checks that a channel ID is well-formed.
func ValidateChannelID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "channelId is required"
	}
	if len(id) > MaxChannelIDLen {
		return "", "channelId must be at most 32 characters"
	}
	if !channelIDRe.MatchString(id) {
		return "", "channelId contains invalid characters"
	}
	return id, ""
}
