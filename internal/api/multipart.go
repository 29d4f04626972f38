package api

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
)

const defaultBinaryContentType = "application/octet-stream"

// FormField is one part of a multipart request: either a ScalarField or a
// BinaryField.
type FormField interface {
	fieldName() string
	writeTo(w *multipart.Writer) error
}

// ScalarField is a plain form value.
type ScalarField struct {
	Name  string
	Value string
}

func (f ScalarField) fieldName() string { return f.Name }

func (f ScalarField) writeTo(w *multipart.Writer) error {
	return w.WriteField(f.Name, f.Value)
}

// BinaryField is a file payload.
type BinaryField struct {
	Name        string
	FileName    string
	Content     []byte
	ContentType string
}

func (f BinaryField) fieldName() string { return f.Name }

func (f BinaryField) writeTo(w *multipart.Writer) error {
	fileName := f.FileName
	if fileName == "" {
		fileName = f.Name
	}
	contentType := f.ContentType
	if contentType == "" {
		contentType = defaultBinaryContentType
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(f.Name), escapeQuotes(fileName)))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(f.Content)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

var errMultipleBinaryFields = errors.New("at most one binary field is allowed")

// validateFormFields checks names are present and unique and that at most one
// binary payload is present.
func validateFormFields(fields []FormField) error {
	seen := make(map[string]struct{}, len(fields))
	binaries := 0
	for i, f := range fields {
		if f == nil {
			return fmt.Errorf("form field %d is nil", i)
		}
		name := f.fieldName()
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("form field %d has no name", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate form field %q", name)
		}
		seen[name] = struct{}{}
		if _, ok := f.(BinaryField); ok {
			binaries++
		}
	}
	if binaries > 1 {
		return errMultipleBinaryFields
	}
	return nil
}

// encodeMultipart serializes fields in order and returns the body together
// with its Content-Type (which carries the boundary).
func encodeMultipart(fields []FormField) ([]byte, string, error) {
	if err := validateFormFields(fields); err != nil {
		return nil, "", err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range fields {
		if err := f.writeTo(writer); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", f.fieldName(), err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return body.Bytes(), writer.FormDataContentType(), nil
}
