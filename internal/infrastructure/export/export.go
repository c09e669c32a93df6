package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"infinito/internal/core/apperror"
)

// Format is an export file format.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatPDF    Format = "pdf"
	FormatCSVZst Format = "csv.zst"
)

// ParseFormat validates a format query value. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatPDF, FormatCSVZst:
		return f, nil
	default:
		return "", apperror.NewValidation("unsupported export format").
			WithDetail("format", s).
			WithDetail("allowed", []string{string(FormatCSV), string(FormatPDF), string(FormatCSVZst)})
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatCSVZst:
		return "application/zstd"
	default:
		return "text/csv; charset=utf-8"
	}
}

// File is a rendered export.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Exporter renders tables in any supported format.
type Exporter struct {
	archiver *archiver
	now      func() time.Time
}

// NewExporter creates an Exporter.
func NewExporter() (*Exporter, error) {
	a, err := newArchiver()
	if err != nil {
		return nil, err
	}
	return &Exporter{archiver: a, now: time.Now}, nil
}

// Render produces the export file for t.
func (e *Exporter) Render(format Format, t Table, title string) (File, error) {
	now := e.now()

	switch format {
	case FormatPDF:
		data, name, err := PDF(t, title, now)
		if err != nil {
			return File{}, apperror.NewInternal(err)
		}
		return File{Name: name, ContentType: format.ContentType(), Data: data}, nil

	case FormatCSV, FormatCSVZst:
		var buf bytes.Buffer
		if err := CSV(&buf, t); err != nil {
			return File{}, apperror.NewInternal(err)
		}
		data := buf.Bytes()
		if format == FormatCSVZst {
			data = e.archiver.compress(data)
		}
		return File{Name: fileName(t, now, string(format)), ContentType: format.ContentType(), Data: data}, nil

	default:
		return File{}, apperror.NewValidation(fmt.Sprintf("unsupported export format %q", format))
	}
}

func fileName(t Table, now time.Time, ext string) string {
	name := t.Name
	if name == "" {
		name = "export"
	}
	return fmt.Sprintf("infinito-%s-%s.%s", name, now.UTC().Format("20060102-150405"), ext)
}
