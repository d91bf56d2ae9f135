package service

import (
	"bytes"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"agent-falcon/internal/apperror"
	"agent-falcon/internal/dto"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const msgInputRequired = "must contain a user request"

// SchemaValidator turns a raw /analyze body into a typed request, collecting
// every violation instead of stopping at the first one.
type SchemaValidator struct {
	validate *validator.Validate
}

func NewSchemaValidator() *SchemaValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &SchemaValidator{validate: v}
}

// Validate checks JSON types first, then field constraints. Unknown fields
// are dropped. A failure is always an *apperror.Error of the validation kind.
func (v *SchemaValidator) Validate(body []byte) (*dto.AnalyzeRequest, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperror.Validation(map[string][]string{
			"body": {"malformed JSON: " + err.Error()},
		})
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, apperror.Validation(map[string][]string{
			"body": {"expected object"},
		})
	}

	issues := make(issueSet)
	req := decodeRequest(obj, issues)
	typed := issues.paths()

	if err := v.validate.Struct(req); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, apperror.Internal(fmt.Errorf("failed to validate request: %w", err))
		}
		for _, fe := range verrs {
			path := fieldPath(fe.Namespace())
			if coveredBy(path, typed) {
				continue
			}
			issues.add(path, constraintMessage(path, fe))
		}
	}

	if len(issues) > 0 {
		return nil, apperror.Validation(issues)
	}
	return req, nil
}

type issueSet map[string][]string

func (s issueSet) add(path, msg string) {
	s[path] = append(s[path], msg)
}

func (s issueSet) paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// decodeRequest copies the well-typed parts of obj into a request and
// records a type issue for everything else.
func decodeRequest(obj map[string]any, issues issueSet) *dto.AnalyzeRequest {
	req := &dto.AnalyzeRequest{}

	if val, ok := obj["input"]; ok {
		if s, ok := val.(string); ok {
			req.Input = s
		} else {
			issues.add("input", "must be a string")
		}
	}

	if val, ok := obj["transactions"]; ok {
		if list, ok := val.([]any); ok {
			req.Transactions = make([]dto.Transaction, len(list))
			for i, item := range list {
				path := fmt.Sprintf("transactions[%d]", i)
				txObj, ok := item.(map[string]any)
				if !ok {
					issues.add(path, "must be an object")
					continue
				}
				req.Transactions[i] = decodeTransaction(path, txObj, issues)
			}
		} else {
			issues.add("transactions", "must be an array")
		}
	}

	if val, ok := obj["metadata"]; ok {
		if m, ok := val.(map[string]any); ok {
			req.Metadata = m
		} else {
			issues.add("metadata", "must be an object")
		}
	}

	return req
}

func decodeTransaction(path string, obj map[string]any, issues issueSet) dto.Transaction {
	var tx dto.Transaction

	if val, ok := obj["amount"]; ok {
		if f, ok := val.(float64); ok {
			tx.Amount = &f
		} else {
			issues.add(path+".amount", "must be a number")
		}
	}

	tx.Date = optionalString(path+".date", obj, "date", issues)
	tx.Vendor = optionalString(path+".vendor", obj, "vendor", issues)
	tx.Category = optionalString(path+".category", obj, "category", issues)
	tx.Note = optionalString(path+".note", obj, "note", issues)

	return tx
}

func optionalString(path string, obj map[string]any, key string, issues issueSet) *string {
	val, ok := obj[key]
	if !ok {
		return nil
	}
	s, ok := val.(string)
	if !ok {
		issues.add(path, "must be a string")
		return nil
	}
	return &s
}

// fieldPath drops the struct name validator puts in front of the namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// coveredBy reports whether path or one of its parents already has a type
// issue.
func coveredBy(path string, typed []string) bool {
	for _, p := range typed {
		if path == p || strings.HasPrefix(path, p+".") || strings.HasPrefix(path, p+"[") {
			return true
		}
	}
	return false
}

func constraintMessage(path string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if path == "input" {
			return msgInputRequired
		}
		return "is required"
	case "max":
		return fmt.Sprintf("must contain at most %s items", fe.Param())
	case "min":
		if fe.Param() == "1" {
			return "must not be empty"
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
