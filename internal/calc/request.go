package calc

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/xtding233/dropcalc/internal/drop"
	"github.com/xtding233/dropcalc/internal/quality"
	"github.com/xtding233/dropcalc/internal/tc"
)

var ErrInvalidRequest = errors.New("invalid request")

// Request selects a root (a treasure class by name, or a monster) and the
// runtime modifiers of one evaluation.
type Request struct {
	TreasureClass string `json:"treasure_class,omitempty" validate:"required_without=Monster,excluded_with=Monster,max=128"`
	Monster       string `json:"monster,omitempty" validate:"max=128"`
	Difficulty    string `json:"difficulty,omitempty" validate:"difficulty"`
	// Level is the monster (area) level. For a monster it overrides the
	// configured level; for a treasure class it enables the tier upgrade.
	Level         int    `json:"level,omitempty" validate:"min=0,max=255"`
	Players       int    `json:"players,omitempty" validate:"min=0,max=8"` // 0 means 1
	PartySize     int    `json:"party,omitempty" validate:"min=0,max=8"`   // 0 means 1
	Mode          string `json:"mode,omitempty" validate:"mode"`
	Filter        string `json:"filter,omitempty" validate:"max=128"`
	AlwaysUpgrade bool   `json:"upgrade,omitempty"`
	MagicFind     int    `json:"mf,omitempty" validate:"min=0,max=10000"`
	Quality       string `json:"quality,omitempty" validate:"quality"`
}

// ValidationError maps request fields to what is wrong with them.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
		_, err := tc.ParseDifficulty(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("mode", func(fl validator.FieldLevel) bool {
		_, err := drop.ParseMode(strings.ToLower(fl.Field().String()))
		return err == nil
	})
	_ = v.RegisterValidation("quality", func(fl validator.FieldLevel) bool {
		_, err := quality.Parse(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks field ranges and names. Whether the named treasure class,
// monster or filter exist is only known at evaluation.
func (r Request) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required_without":
			fields[e.Field()] = "treasure_class or monster is required"
		case "excluded_with":
			fields[e.Field()] = "treasure_class and monster are exclusive"
		case "min":
			fields[e.Field()] = "must be at least " + e.Param()
		case "max":
			fields[e.Field()] = "must be at most " + e.Param()
		case "difficulty":
			fields[e.Field()] = "must be normal, nightmare or hell"
		case "mode":
			fields[e.Field()] = "must be defined or virtual"
		case "quality":
			fields[e.Field()] = "must be unique, set, rare or magic"
		default:
			fields[e.Field()] = "invalid value"
		}
	}
	return &ValidationError{Fields: fields}
}

// normalized applies defaults and canonical spelling so that equal requests
// share a cache key.
func (r Request) normalized() Request {
	if r.Players == 0 {
		r.Players = 1
	}
	if r.PartySize == 0 {
		r.PartySize = 1
	}
	if d, err := tc.ParseDifficulty(r.Difficulty); err == nil {
		r.Difficulty = d.String()
	}
	if m, err := drop.ParseMode(strings.ToLower(r.Mode)); err == nil {
		r.Mode = m.String()
	}
	if q, err := quality.Parse(r.Quality); err == nil {
		r.Quality = ""
		if q != 0 {
			r.Quality = q.String()
		}
	}
	return r
}

func (r Request) rootKind() string {
	if r.Monster != "" {
		return "monster"
	}
	return "tc"
}

func (r Request) cacheKey(gen uint64) string {
	return fmt.Sprintf("%d|%s|%s|%s|%d|%d|%d|%s|%s|%t|%d|%s",
		gen, r.TreasureClass, r.Monster, r.Difficulty, r.Level, r.Players, r.PartySize,
		r.Mode, r.Filter, r.AlwaysUpgrade, r.MagicFind, r.Quality)
}
