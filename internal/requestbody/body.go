package requestbody

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// File is a binary part of a request body.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Part is one named entry of a request body. Either Value or File is used.
type Part struct {
	Name  string
	Value string
	File  *File
}

// IsFile reports whether the part carries binary data.
func (p Part) IsFile() bool {
	return p.File != nil
}

// Body is an ordered multipart request body.
type Body struct {
	parts []Part
}

// AddValue appends a text part.
func (b *Body) AddValue(name, value string) {
	b.parts = append(b.parts, Part{Name: name, Value: value})
}

// AddFile appends a binary part.
func (b *Body) AddFile(name string, file File) {
	b.parts = append(b.parts, Part{Name: name, File: &file})
}

// Len returns the number of parts.
func (b *Body) Len() int {
	return len(b.parts)
}

// Names lists part names in insertion order.
func (b *Body) Names() []string {
	names := make([]string, 0, len(b.parts))
	for _, part := range b.parts {
		names = append(names, part.Name)
	}
	return names
}

// Value returns the first text part named name.
func (b *Body) Value(name string) (string, bool) {
	for _, part := range b.parts {
		if part.Name == name && !part.IsFile() {
			return part.Value, true
		}
	}
	return "", false
}

// File returns the first binary part named name.
func (b *Body) File(name string) (*File, bool) {
	for _, part := range b.parts {
		if part.Name == name && part.IsFile() {
			return part.File, true
		}
	}
	return nil, false
}

// Files returns the binary parts.
func (b *Body) Files() []Part {
	var out []Part
	for _, part := range b.parts {
		if part.IsFile() {
			out = append(out, part)
		}
	}
	return out
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Encode writes the body as multipart/form-data and returns the content type
// with its boundary.
func (b *Body) Encode() (string, []byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, part := range b.parts {
		if !part.IsFile() {
			if err := writer.WriteField(part.Name, part.Value); err != nil {
				return "", nil, fmt.Errorf("requestbody: write field %s: %w", part.Name, err)
			}
			continue
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(part.Name), quoteEscaper.Replace(part.File.Filename)))
		contentType := part.File.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		target, err := writer.CreatePart(header)
		if err != nil {
			return "", nil, fmt.Errorf("requestbody: create part %s: %w", part.Name, err)
		}
		if _, err := target.Write(part.File.Data); err != nil {
			return "", nil, fmt.Errorf("requestbody: write part %s: %w", part.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", nil, fmt.Errorf("requestbody: close writer: %w", err)
	}
	return writer.FormDataContentType(), buf.Bytes(), nil
}
