package handler

import (
    "errors"
    "fmt"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"

    "github.com/iliyamo/cinema-booking/internal/service"
)

// RequestValidator plugs go-playground/validator into echo.Echo.Validator.
// Failures wrap service.ErrValidation and name fields by their JSON keys.
type RequestValidator struct {
    v *validator.Validate
}

func NewRequestValidator() *RequestValidator {
    v := validator.New(validator.WithRequiredStructEnabled())
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
        if name == "-" {
            return ""
        }
        return name
    })
    return &RequestValidator{v: v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
    err := rv.v.Struct(i)
    if err == nil {
        return nil
    }
    var fields validator.ValidationErrors
    if !errors.As(err, &fields) {
        return fmt.Errorf("%w: %v", service.ErrValidation, err)
    }
    msgs := make([]string, len(fields))
    for i, fe := range fields {
        field := fe.Namespace()
        if _, rest, ok := strings.Cut(field, "."); ok {
            field = rest
        }
        if fe.Param() != "" {
            msgs[i] = fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
        } else {
            msgs[i] = fmt.Sprintf("%s failed %s", field, fe.Tag())
        }
    }
    return fmt.Errorf("%w: %s", service.ErrValidation, strings.Join(msgs, "; "))
}
