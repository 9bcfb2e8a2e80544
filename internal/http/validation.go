package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate decodes the JSON body into dst and runs its validate tags.
// It writes the 400 response itself and reports whether the handler may go on.
func decodeAndValidate(ctx context.Context, w http.ResponseWriter, r *http.Request, rs responder, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	if err := dec.Decode(dst); err != nil {
		rs.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return false
	}

	err := validate.Struct(dst)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		rs.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return false
	}

	resp := errorResponse{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		msg := fieldMessage(fe)
		resp.Fields[fe.Field()] = msg
		if resp.Error == "" {
			resp.Error = msg
		}
	}
	rs.loggerFor(ctx).WarnContext(ctx, "request validation failed", "fields", resp.Fields)
	rs.writeJSON(ctx, w, http.StatusBadRequest, resp)
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Field() == "password" {
			return errPasswordRequired.Error()
		}
		return "Missing required fields"
	case "max":
		return fe.Field() + " is too long"
	default:
		return "Invalid " + fe.Field()
	}
}
