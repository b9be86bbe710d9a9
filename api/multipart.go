package api

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/atelier-studio/atelier-backend/errs"
	"github.com/atelier-studio/atelier-backend/storage"
)

// defaultMaxRequestBytes bounds the whole multipart body: ten 5 MiB files
// plus form-field slack.
const defaultMaxRequestBytes = 64 * 1024 * 1024

const multipartParseMemory = 32 * 1024 * 1024

// projectForm wraps a parsed multipart request, keeping the present/absent
// distinction that partial updates depend on.
type projectForm struct {
	values map[string][]string
	files  []*multipart.FileHeader
}

func parseProjectForm(r *http.Request, maxBytes int64) (*projectForm, error) {
	if maxBytes <= 0 {
		maxBytes = defaultMaxRequestBytes
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	if err := r.ParseMultipartForm(multipartParseMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, errs.NewApiErr(http.StatusRequestEntityTooLarge, "request body too large")
		}
		return nil, errs.Malformed("multipart form")
	}

	return &projectForm{
		values: r.MultipartForm.Value,
		files:  r.MultipartForm.File["images"],
	}, nil
}

// has reports whether the key was sent at all, even with an empty value.
func (f *projectForm) has(key string) bool {
	_, ok := f.values[key]
	return ok
}

func (f *projectForm) value(key string) string {
	if vs, ok := f.values[key]; ok && len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}

// list returns every value sent under key, or nil when the key is absent.
// Repeated keys and a single value both come back as a list.
func (f *projectForm) list(key string) []string {
	vs, ok := f.values[key]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// boolValue coerces the form's string representation: only "true" is true.
func (f *projectForm) boolValue(key string) bool {
	return f.value(key) == "true"
}

func (f *projectForm) intValue(key string) (int, error) {
	return strconv.Atoi(f.value(key))
}

func (f *projectForm) stringPtr(key string) *string {
	if !f.has(key) {
		return nil
	}
	v := f.value(key)
	return &v
}

func (f *projectForm) boolPtr(key string) *bool {
	if !f.has(key) {
		return nil
	}
	v := f.boolValue(key)
	return &v
}

// uploads opens every file part in order. The returned closer must be called
// once the files have been consumed.
func (f *projectForm) uploads() ([]storage.Upload, func(), error) {
	opened := make([]multipart.File, 0, len(f.files))
	closeAll := func() {
		for _, file := range opened {
			file.Close()
		}
	}

	ups := make([]storage.Upload, 0, len(f.files))
	for _, fh := range f.files {
		file, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, nil, errs.Malformed("image upload")
		}
		opened = append(opened, file)
		ups = append(ups, storage.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Reader:      file,
		})
	}
	return ups, closeAll, nil
}
