package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/flagkeep/flagkeep/pkg/apierr"
	"github.com/flagkeep/flagkeep/pkg/audit"
	"github.com/flagkeep/flagkeep/pkg/config"
	"github.com/flagkeep/flagkeep/pkg/identity"
)

// ConfigSource returns the live configuration. It is called per request so
// that reloaded flags and limits apply immediately.
type ConfigSource func() *config.FlagkeepConfig

func (c ConfigSource) get() *config.FlagkeepConfig {
	if c == nil {
		return config.Get()
	}
	return c()
}

// Auditor records audit events.
type Auditor interface {
	Log(ctx context.Context, event audit.Event)
}

type nopAuditor struct{}

func (nopAuditor) Log(context.Context, audit.Event) {}

func orNop(a Auditor) Auditor {
	if a == nil {
		return nopAuditor{}
	}
	return a
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateInput checks struct tags and turns failures into a BadDataError
// with one detail per field.
func validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	details := make([]apierr.Detail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, apierr.Detail{
			Message:     fieldMessage(fe),
			Description: fe.Tag(),
			Path:        "/" + strings.ReplaceAll(fieldPath(fe), ".", "/"),
		})
	}
	return apierr.NewBadData("Request validation failed: %s", details[0].Message).WithDetails(details...)
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	ns = strings.NewReplacer("[", ".", "]", "").Replace(ns)
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed on the %s rule", fe.Field(), fe.Tag())
	}
}

// actor returns the username and client IP recorded in audit events.
func actor(ctx context.Context) (string, string) {
	id, ok := identity.Get(ctx)
	if !ok {
		return identity.Username(ctx), ""
	}
	ip := ""
	if id.RemoteIP != nil {
		ip = id.RemoteIP.String()
	}
	return identity.Username(ctx), ip
}
