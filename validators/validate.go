// Package validators holds the helpers shared by the per-route validator
// middlewares.
package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"nextlevel/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("idkey", isIDKey)
	return v
}

// isIDKey accepts the decimal form of a positive id: digits only, no sign
// and no leading zero.
func isIDKey(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" || s[0] == '0' {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	_, err := strconv.ParseUint(s, 10, strconv.IntSize)
	return err == nil
}

// Check validates the struct tags of req and returns one message per
// failing field, or nil.
func Check(req interface{}) map[string]string {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"body": "Invalid request body!"}
	}

	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fieldPath(fe)] = message(fe)
	}
	return out
}

// Body parses the JSON body into req and validates it, writing the error
// response itself when either step fails.
func Body(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if errs := Check(req); errs != nil {
		return false, middleware.ValidationErrorResponse(c, errs)
	}
	return true, nil
}

// JSON returns a middleware that validates the body as a T, applies prepare
// when given, and stores the request in Locals under key.
func JSON[T any](key string, prepare func(*T)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if ok, err := Body(c, reqData); !ok {
			return err
		}
		if prepare != nil {
			prepare(reqData)
		}

		c.Locals(key, reqData)
		return c.Next()
	}
}

// Query parses the query string into req and validates it.
func Query(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.QueryParser(req); err != nil {
		return false, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
	}
	if errs := Check(req); errs != nil {
		return false, middleware.ValidationErrorResponse(c, errs)
	}
	return true, nil
}

type PageRequest struct {
	Page  int `query:"page" json:"page" validate:"gte=0"`
	Limit int `query:"limit" json:"limit" validate:"gte=0,lte=100"`
}

// ApplyDefaults fills a missing page with 1 and a missing limit with 10.
func (p *PageRequest) ApplyDefaults() {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = 10
	}
}

// ParamID parses the positive integer route parameter name.
func ParamID(c *fiber.Ctx, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Params(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// IDParams stores every listed route parameter in Locals under its own name,
// rejecting the request when one is not a positive integer.
func IDParams(names ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, name := range names {
			id, ok := ParamID(c, name)
			if !ok {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, fmt.Sprintf("Invalid %s!", name), nil)
			}
			c.Locals(name, id)
		}
		return c.Next()
	}
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required!"
	case "email":
		return "Invalid email!"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters long!", fe.Param())
		}
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map {
			return fmt.Sprintf("Must contain at least %s item(s)!", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s!", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters long!", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s!", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s!", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s!", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s!", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s!", fe.Param())
	case "url":
		return "Must be a valid URL!"
	case "eqfield":
		return "Does not match!"
	case "idkey":
		return "Must be a question id!"
	default:
		return fmt.Sprintf("Failed the %s check!", fe.Tag())
	}
}
