package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// Context carries the gin request context together with the
// context.Context that flows into repositories and services.
type Context struct {
	*gin.Context
	Ctx context.Context

	log         *log.Logger
	paramErrors []string
	queryErrors []string
}

func NewContext(gc *gin.Context, log *log.Logger) *Context {
	return &Context{
		Context: gc,
		Ctx:     gc.Request.Context(),
		log:     log,
	}
}

// Respond sends data as JSON with the given status code.
func (c *Context) Respond(data interface{}, status int) error {
	if status == http.StatusNoContent {
		c.Status(status)
		return nil
	}

	c.JSON(status, data)
	return nil
}

// RespondError converts err into the API error body. Errors carrying a
// status code keep their message; anything else is logged and hidden
// behind a generic 500.
func (c *Context) RespondError(err error) error {
	status, message := StatusOf(err)
	if status >= http.StatusInternalServerError && c.log != nil {
		c.log.Printf("%s %s : %+v", c.Request.Method, c.Request.URL.Path, err)
	}

	body := map[string]interface{}{
		"error":  message,
		"status": false,
	}

	var fields interface{ Fields() []string }
	if errors.As(err, &fields) && len(fields.Fields()) > 0 {
		body["errors"] = fields.Fields()
	}

	c.AbortWithStatusJSON(status, body)
	return nil
}

// GetParam reads a path parameter converted to kind. Conversion failures are
// collected and reported by ValidParam.
func (c *Context) GetParam(kind reflect.Kind, name string) interface{} {
	raw := strings.TrimSpace(c.Param(name))

	switch kind {
	case reflect.Int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.paramErrors = append(c.paramErrors, fmt.Sprintf("%s: must be an integer", name))
			return 0
		}
		return v
	default:
		if raw == "" {
			c.paramErrors = append(c.paramErrors, fmt.Sprintf("%s: is required", name))
		}
		return raw
	}
}

// ValidParam reports the errors collected by GetParam.
func (c *Context) ValidParam() error {
	if len(c.paramErrors) == 0 {
		return nil
	}

	return NewRequestError(errors.New(strings.Join(c.paramErrors, "; ")), http.StatusBadRequest)
}

// GetQueryFunc reads an optional query value. It returns a pointer of the
// requested kind or nil when the value is absent.
func (c *Context) GetQueryFunc(kind reflect.Kind, name string) interface{} {
	raw, ok := c.GetQuery(name)
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return nil
	}

	switch kind {
	case reflect.Int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.queryErrors = append(c.queryErrors, fmt.Sprintf("%s: must be an integer", name))
			return nil
		}
		return &v
	case reflect.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.queryErrors = append(c.queryErrors, fmt.Sprintf("%s: must be a boolean", name))
			return nil
		}
		return &v
	default:
		return &raw
	}
}

// ValidQuery reports the errors collected by GetQueryFunc.
func (c *Context) ValidQuery() error {
	if len(c.queryErrors) == 0 {
		return nil
	}

	return NewRequestError(errors.New(strings.Join(c.queryErrors, "; ")), http.StatusBadRequest)
}

// BindFunc binds the request body (JSON or form) into v and checks that the
// named fields are set.
func (c *Context) BindFunc(v interface{}, required ...string) error {
	if err := c.ShouldBind(v); err != nil {
		return NewRequestError(errors.Wrap(err, "binding request"), http.StatusBadRequest)
	}

	return ValidateRequired(v, required...)
}

// ValidateRequired returns a 400 RequestError naming every listed field of
// the struct pointed to by v that holds its zero value (nil pointers and
// blank strings included).
func ValidateRequired(v interface{}, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}

	value := reflect.Indirect(reflect.ValueOf(v))
	if value.Kind() != reflect.Struct {
		return errors.Errorf("validate: expected struct, got %s", value.Kind())
	}

	var missing []string
	for _, name := range fields {
		field := value.FieldByName(name)
		if !field.IsValid() {
			return errors.Errorf("validate: unknown field %q", name)
		}

		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				missing = append(missing, name)
				continue
			}
			field = field.Elem()
		}

		if field.Kind() == reflect.String && strings.TrimSpace(field.String()) == "" {
			missing = append(missing, name)
			continue
		}
		if field.IsZero() {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return NewRequestError(errors.Errorf("required fields are missing: %s", strings.Join(missing, ", ")), http.StatusBadRequest)
	}

	return nil
}
