package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	MaxURLLength  = 2048
	MaxPathLength = 1024
)

// SaveFormats are the output formats the assembly service renders.
var SaveFormats = []string{
	"docx", "doc", "docm", "dotx", "dot", "odt", "ott", "rtf", "txt",
	"pdf", "html", "mhtml", "md", "xps", "epub",
	"xlsx", "xls", "xlsm", "ods", "csv",
	"pptx", "ppt", "pptm", "odp",
	"msg", "eml", "png", "jpg", "bmp", "svg",
}

var (
	errParentSegment = errors.New("must not contain '..' segments")
	errControlChar   = errors.New("must not contain control characters")
)

// StoragePath is an ozzo rule for cloud storage paths: bounded length, no
// control characters and no parent-directory segments. Empty values pass;
// combine with ozzo.Required where a path is mandatory.
var StoragePath = ozzo.By(func(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if n := utf8.RuneCountInString(s); n > MaxPathLength {
		return fmt.Errorf("exceeds maximum length of %d characters (got %d)", MaxPathLength, n)
	}
	if strings.IndexFunc(s, unicode.IsControl) >= 0 {
		return errControlChar
	}
	for _, seg := range strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return errParentSegment
		}
	}
	return nil
})

// ValidateStoragePath checks a required storage path argument.
func ValidateStoragePath(field, path string) error {
	if err := ozzo.Validate(path, ozzo.Required, StoragePath); err != nil {
		return fmt.Errorf("invalid %s: %w", field, err)
	}
	return nil
}

// NormalizeStoragePath trims whitespace and leading slashes; storage paths
// are relative to the storage root.
func NormalizeStoragePath(path string) string {
	return strings.TrimLeft(strings.TrimSpace(path), "/")
}

// ValidateSaveFormat checks an output format name, case-insensitively.
func ValidateSaveFormat(format string) error {
	allowed := make([]any, len(SaveFormats))
	for i, f := range SaveFormats {
		allowed[i] = f
	}
	err := ozzo.Validate(strings.ToLower(strings.TrimSpace(format)), ozzo.Required, ozzo.In(allowed...))
	if err != nil {
		return fmt.Errorf("invalid format %q: %w", format, err)
	}
	return nil
}
