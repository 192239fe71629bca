// File: internal/services/tools/input.go
package tools

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their JSON names, the names the model used.
func newValidator() *validator.Validate {
    v := validator.New(validator.WithRequiredStructEnabled())
    v.RegisterTagNameFunc(func(fld reflect.StructField) string {
        name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
        if name == "-" {
            return ""
        }
        return name
    })
    return v
}

// typedTool decodes and validates arguments into In before run sees them,
// so a bad call is rejected without side effects.
type typedTool[In any] struct {
    name        string
    description string
    parameters  map[string]interface{}
    defaults    func(*In)
    run         func(ctx context.Context, in In) (interface{}, error)
}

func (t *typedTool[In]) Name() string                       { return t.name }
func (t *typedTool[In]) Description() string                { return t.description }
func (t *typedTool[In]) Parameters() map[string]interface{} { return t.parameters }

func (t *typedTool[In]) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
    var in In
    if len(bytes.TrimSpace(args)) > 0 {
        if err := json.Unmarshal(args, &in); err != nil {
            return nil, &InputError{Tool: t.name, Message: "arguments are not valid JSON for this tool", Cause: err}
        }
    }
    if t.defaults != nil {
        t.defaults(&in)
    }
    if err := validate.Struct(in); err != nil {
        return nil, &InputError{Tool: t.name, Message: describeValidation(err), Cause: err}
    }
    return t.run(ctx, in)
}

func describeValidation(err error) string {
    var verrs validator.ValidationErrors
    if !errors.As(err, &verrs) {
        return err.Error()
    }
    msgs := make([]string, 0, len(verrs))
    for _, fe := range verrs {
        field := fe.Field()
        switch fe.Tag() {
        case "required":
            msgs = append(msgs, field+" is required")
        case "min":
            msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
        case "max":
            msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
        case "url":
            msgs = append(msgs, field+" must be a valid URL")
        default:
            msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
        }
    }
    return strings.Join(msgs, "; ")
}
