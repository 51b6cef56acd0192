// Package config provides shared validation helpers for pipegrant commands.
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ValidateURL checks that a URL is non-empty, parseable and carries an
// http(s) scheme. fieldName is used in the error message.
func ValidateURL(rawURL string, fieldName string) error {
	if rawURL == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", fieldName, err)
	}

	if parsed.Scheme == "" {
		return fmt.Errorf("%s must include a scheme (http:// or https://)", fieldName)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use http or https scheme, got %q", fieldName, parsed.Scheme)
	}

	return nil
}

// ValidateToken checks that a token is non-empty and not obviously a
// placeholder left over from a copy-pasted example.
func ValidateToken(token string, fieldName string) error {
	if token == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return fmt.Errorf("%s cannot be only whitespace", fieldName)
	}

	if strings.HasPrefix(trimmed, "xxx") || trimmed == "<token>" {
		return fmt.Errorf("%s looks like a placeholder value", fieldName)
	}

	return nil
}

// ValidateRequired checks that a string flag value was provided.
func ValidateRequired(value string, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

// ParsePipelineID parses a pipeline identifier into the integer the API
// expects. Azure DevOps pipeline ids are positive integers; anything else
// is rejected here instead of being sent over the wire.
func ParsePipelineID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("pipeline id %q is not numeric", raw)
	}

	if id < 0 {
		return 0, fmt.Errorf("pipeline id must not be negative, got %d", id)
	}

	return id, nil
}
