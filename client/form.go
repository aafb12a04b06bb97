package client

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// File is an attachment uploaded as one multipart part.
type File struct {
	Name string
	Data io.Reader
}

type formFile struct {
	field string
	file  *File
}

// Form is an ordered multipart/form-data body.
type Form struct {
	fields [][2]string
	files  []formFile
}

func NewForm() *Form {
	return &Form{}
}

// Set appends a text field.
func (f *Form) Set(name, value string) *Form {
	f.fields = append(f.fields, [2]string{name, value})
	return f
}

// Attach appends a file part. A nil file is skipped.
func (f *Form) Attach(field string, file *File) *Form {
	if file != nil {
		f.files = append(f.files, formFile{field: field, file: file})
	}
	return f
}

// Encode renders the form, returning its content type with boundary.
func (f *Form) Encode() (string, []byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, kv := range f.fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return "", nil, err
		}
	}
	for _, ff := range f.files {
		part, err := w.CreateFormFile(ff.field, ff.file.Name)
		if err != nil {
			return "", nil, err
		}
		if ff.file.Data != nil {
			if _, err := io.Copy(part, ff.file.Data); err != nil {
				return "", nil, fmt.Errorf("copy %s: %w", ff.file.Name, err)
			}
		}
	}
	if err := w.Close(); err != nil {
		return "", nil, err
	}
	return w.FormDataContentType(), buf.Bytes(), nil
}
