package videos

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/princekumarofficial/videos-service/internal/types"
)

// maxFormMemory caps multipart bodies held in memory.
const maxFormMemory = 1 << 20

var validate = newValidator()

// newValidator reports fields by their form name so errors read "name: required".
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// parseID accepts the integer ids the /video/{id} route addresses.
func parseID(r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	if raw == "" || strings.TrimLeft(raw, "0123456789") != "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// postForm parses a urlencoded or multipart body and returns its values.
func postForm(r *http.Request) (url.Values, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, fmt.Errorf("invalid multipart form: %w", err)
		}
		return r.PostForm, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form: %w", err)
	}
	return r.PostForm, nil
}

type fieldError struct {
	field string
	msg   string
}

func (e *fieldError) Error() string {
	return e.field + ": " + e.msg
}

func formString(values url.Values, field string) *string {
	if _, ok := values[field]; !ok {
		return nil
	}
	v := values.Get(field)
	return &v
}

func formInt(values url.Values, field string) (*int64, error) {
	if _, ok := values[field]; !ok {
		return nil, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(values.Get(field)), 10, 64)
	if err != nil {
		return nil, &fieldError{field: field, msg: "must be an integer"}
	}
	return &n, nil
}

type videoFields struct {
	name  *string
	views *int64
	likes *int64
}

func decodeVideoFields(r *http.Request) (videoFields, error) {
	values, err := postForm(r)
	if err != nil {
		return videoFields{}, err
	}

	var f videoFields
	f.name = formString(values, "name")
	if f.views, err = formInt(values, "views"); err != nil {
		return videoFields{}, err
	}
	if f.likes, err = formInt(values, "likes"); err != nil {
		return videoFields{}, err
	}
	return f, nil
}

// decodePut returns an already validated create request.
func decodePut(r *http.Request) (types.VideoPutRequest, error) {
	f, err := decodeVideoFields(r)
	if err != nil {
		return types.VideoPutRequest{}, err
	}

	req := types.VideoPutRequest{Name: f.name, Views: f.views, Likes: f.likes}
	if err := validate.Struct(req); err != nil {
		return types.VideoPutRequest{}, err
	}
	return req, nil
}

// decodePatch returns an already validated update request.
func decodePatch(r *http.Request) (types.VideoPatchRequest, error) {
	f, err := decodeVideoFields(r)
	if err != nil {
		return types.VideoPatchRequest{}, err
	}

	req := types.VideoPatchRequest{Name: f.name, Views: f.views, Likes: f.likes}
	if err := validate.Struct(req); err != nil {
		return types.VideoPatchRequest{}, err
	}
	return req, nil
}

func isValidationError(err error) (validator.ValidationErrors, bool) {
	var ve validator.ValidationErrors
	ok := errors.As(err, &ve)
	return ve, ok
}
