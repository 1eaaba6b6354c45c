package config

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/Tiliavir/worklog-report/internal/apperr"
	"github.com/Tiliavir/worklog-report/internal/model"
)

// Scope selects which sections a command needs.
type Scope uint8

const (
	// ScopeReport checks everything a full report run needs.
	ScopeReport Scope = iota
	// ScopeResolve checks relay and credentials only.
	ScopeResolve
	// ScopeQuery checks the query section only.
	ScopeQuery
)

type validatorSvc struct {
	validate *validator.Validate
	trans    ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *validatorSvc
)

func getValidator() *validatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		// prefer config key names in messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("mapstructure")
			if tag == "" || tag == "-" {
				return fld.Name
			}
			return tag
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		_ = v.RegisterValidation("jirahost", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return strings.Contains(s, ".") && !strings.ContainsAny(s, "/ ")
		})
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(model.DateLayout, fl.Field().String())
			return err == nil
		})
		registerMessage(v, trans, "jirahost", `{0} has an invalid Jira domain format, should be something like "your-domain.atlassian.net"`)
		registerMessage(v, trans, "isodate", "{0} must be a date in YYYY-MM-DD format")
		registerMessage(v, trans, "min", "{0} must be at least {1}")
		registerMessage(v, trans, "max", "{0} must be at most {1}")

		vSvc = &validatorSvc{validate: v, trans: trans}
	})
	return vSvc
}

func registerMessage(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

type section struct {
	prefix string
	value  any
}

// Validate checks the sections required by scope and returns an
// *apperr.ValidationError naming every offending key.
func (c *Config) Validate(scope Scope) error {
	var sections []section
	switch scope {
	case ScopeResolve:
		sections = []section{{"relay", c.Relay}, {"jira", c.Jira}}
	case ScopeQuery:
		sections = []section{{"query", c.Query}}
	default:
		sections = []section{{"relay", c.Relay}, {"jira", c.Jira}, {"query", c.Query}, {"log", c.Log}}
	}

	svc := getValidator()
	var missing, problems []string
	for _, s := range sections {
		err := svc.validate.Struct(s.value)
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			if err != nil {
				problems = append(problems, err.Error())
			}
			continue
		}
		for _, fe := range verrs {
			key := s.prefix + "." + fe.Field()
			if fe.Tag() == "required" {
				missing = append(missing, key)
				continue
			}
			problems = append(problems, key+strings.TrimPrefix(fe.Translate(svc.trans), fe.Field()))
		}
	}

	if scope != ScopeResolve && len(problems) == 0 && c.Query.Start != "" && c.Query.End != "" && c.Query.Start > c.Query.End {
		problems = append(problems, "Start date cannot be after end date")
	}

	if len(missing) == 0 && len(problems) == 0 {
		return nil
	}

	verr := &apperr.ValidationError{}
	if len(missing) > 0 {
		verr.Message = "Missing required fields: " + strings.Join(missing, ", ")
		for _, k := range missing {
			verr.Fields = append(verr.Fields, k+" is required")
		}
	} else {
		verr.Message = problems[0]
	}
	verr.Fields = append(verr.Fields, problems...)
	return verr
}
