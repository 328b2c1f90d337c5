package client

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// FormField is one plain field of a multipart form. Fields keep their order
// on the wire.
type FormField struct {
	Name  string
	Value string
}

// FilePart is a file attached to a multipart form. The MIME type is inferred
// from the file extension ("/tmp/a.png" becomes image/png) and falls back to
// application/octet-stream.
type FilePart struct {
	Field string
	Path  string
}

func buildMultipart(fields []FormField, files ...FilePart) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := writer.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("write form field %q: %w", f.Name, err)
		}
	}

	for _, fp := range files {
		if err := writeFilePart(writer, fp); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize multipart body: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

func writeFilePart(writer *multipart.Writer, fp FilePart) error {
	file, err := os.Open(fp.Path)
	if err != nil {
		return fmt.Errorf("open file part %q: %w", fp.Path, err)
	}
	defer file.Close()

	filename := filepath.Base(fp.Path)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fp.Field, filename))
	header.Set("Content-Type", inferMIMEType(filename))

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create file part %q: %w", fp.Field, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy file part %q: %w", fp.Field, err)
	}
	return nil
}

func inferMIMEType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
