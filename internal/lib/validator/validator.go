package validator

import (
	"errors"
	"fmt"
	"moviecatalog/proj/internal/domain/fields"
	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

// Policy holds the tunable bounds for query validation.
type Policy struct {
	MinQueryLen  int
	MaxQueryLen  int
	QueryPattern *regexp.Regexp

	MinYear    int
	YearsAhead int

	MaxPage      int
	MaxLimit     int
	DefaultLimit int

	MediaIDPattern *regexp.Regexp

	Now func() time.Time
}

func DefaultPolicy() Policy {
	return Policy{
		MinQueryLen: 2,
		MaxQueryLen: 100,
		// letters, digits, punctuation, symbols and spaces; no control characters
		QueryPattern:   regexp.MustCompile(`^[\p{L}\p{M}\p{N}\p{P}\p{S}\p{Zs}]+$`),
		MinYear:        1888,
		YearsAhead:     10,
		MaxPage:        100,
		MaxLimit:       50,
		DefaultLimit:   filters.DefaultPageSize,
		MediaIDPattern: regexp.MustCompile(`^tt\d{7,8}$`),
		Now:            time.Now,
	}
}

func (p Policy) maxYear() int {
	return p.Now().Year() + p.YearsAhead
}

type Validator struct {
	validate *govalidator.Validate
	decoder  *schema.Decoder
	policy   Policy
	messages map[string]func() string
}

func New(policy Policy) *Validator {
	if policy.Now == nil {
		policy.Now = time.Now
	}
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	v := &Validator{
		validate: govalidator.New(govalidator.WithRequiredStructEnabled()),
		decoder:  decoder,
		policy:   policy,
	}
	v.registerCustomValidators()
	return v
}

func (v *Validator) Policy() Policy {
	return v.policy
}

// Struct validates a request body against its `validate` tags.
func (v *Validator) Struct(obj any) Violations {
	err := v.validate.Struct(obj)
	if err == nil {
		return nil
	}
	var errs govalidator.ValidationErrors
	if !errors.As(err, &errs) {
		return Violations{{Field: "body", Message: err.Error()}}
	}
	return v.processValidationErrors(obj, errs)
}

// decodeQuery fills dst from the query string and validates it. Values that
// cannot be converted (page=abc) are reported as violations of their field.
func (v *Validator) decodeQuery(dst any, values url.Values) Violations {
	var violations Violations
	if err := v.decoder.Decode(dst, values); err != nil {
		var multi schema.MultiError
		if !errors.As(err, &multi) {
			return Violations{{Field: "query", Message: err.Error()}}
		}
		for key := range multi {
			violations = append(violations, Violation{Field: key, Message: "Value must be an integer"})
		}
	}
	if n, ok := dst.(interface{ normalize() }); ok {
		n.normalize()
	}
	violations = append(violations, v.Struct(dst)...)
	sortByFieldOrder(dst, violations)
	return violations
}

func sortByFieldOrder(obj any, violations Violations) {
	t := structType(obj)
	order := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		order[getFieldName(t, t.Field(i).Name)] = i
	}
	sort.SliceStable(violations, func(i, j int) bool {
		return order[violations[i].Field] < order[violations[j].Field]
	})
}

type searchInput struct {
	Query string `schema:"q" validate:"required,searchlen,searchchars"`
	Year  string `schema:"year" validate:"omitempty,releaseyear"`
	Type  string `schema:"type" validate:"omitempty,oneof=movie series episode"`
	Page  *int   `schema:"page" validate:"omitempty,pagerange"`
	Limit *int   `schema:"limit" validate:"omitempty,limitrange"`
}

func (in *searchInput) normalize() {
	in.Query = strings.TrimSpace(in.Query)
	in.Year = strings.TrimSpace(in.Year)
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
}

// Search turns raw query parameters into a normalised search request.
func (v *Validator) Search(values url.Values) (models.SearchQuery, Violations) {
	var in searchInput
	if violations := v.decodeQuery(&in, values); !violations.Empty() {
		return models.SearchQuery{}, violations
	}
	q := models.SearchQuery{
		Text:  in.Query,
		Year:  in.Year,
		Type:  fields.MediaType(in.Type),
		Page:  1,
		Limit: v.policy.DefaultLimit,
	}
	if in.Page != nil {
		q.Page = *in.Page
	}
	if in.Limit != nil {
		q.Limit = *in.Limit
	}
	return q, nil
}

// MediaID checks the shape of a provider identifier.
func (v *Validator) MediaID(id string) Violations {
	err := v.validate.Var(id, "required,mediaid")
	if err == nil {
		return nil
	}
	var errs govalidator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		return Violations{{Field: "id", Message: v.getErrorMsgForField(nil, errs[0])}}
	}
	return Violations{{Field: "id", Message: err.Error()}}
}

type limitInput struct {
	Limit *int `schema:"limit" validate:"omitempty,limitrange"`
}

// Limit reads an optional limit parameter, defaulting to the policy default.
func (v *Validator) Limit(values url.Values) (int, Violations) {
	var in limitInput
	if violations := v.decodeQuery(&in, values); !violations.Empty() {
		return 0, violations
	}
	if in.Limit == nil {
		return v.policy.DefaultLimit, nil
	}
	return *in.Limit, nil
}

type userListInput struct {
	Page   *int   `schema:"page" validate:"omitempty,pagerange"`
	Limit  *int   `schema:"limit" validate:"omitempty,limitrange"`
	Search string `schema:"search" validate:"max=100"`
}

func (in *userListInput) normalize() {
	in.Search = strings.TrimSpace(in.Search)
}

// UserList reads paging and search parameters for user listings.
func (v *Validator) UserList(values url.Values) (filters.Filters, string, Violations) {
	var in userListInput
	if violations := v.decodeQuery(&in, values); !violations.Empty() {
		return filters.Filters{}, "", violations
	}
	f := filters.Filters{Page: 1, PageSize: v.policy.DefaultLimit}
	if in.Page != nil {
		f.Page = *in.Page
	}
	if in.Limit != nil {
		f.PageSize = *in.Limit
	}
	return f, in.Search, nil
}

// CUSTOM VALIDATORS

func (v *Validator) registerCustomValidators() {
	p := v.policy
	fixed := func(format string, args ...any) func() string {
		msg := fmt.Sprintf(format, args...)
		return func() string { return msg }
	}
	v.messages = map[string]func() string{
		"searchlen":   fixed("Search text must contain at least %d characters and at most %d", p.MinQueryLen, p.MaxQueryLen),
		"searchchars": fixed("Search text contains characters that are not allowed"),
		// the upper bound moves with the clock
		"releaseyear": func() string {
			return fmt.Sprintf("Year must be a 4-digit year between %d and %d", p.MinYear, p.maxYear())
		},
		"pagerange":  fixed("Page must be between 1 and %d", p.MaxPage),
		"limitrange": fixed("Limit must be between 1 and %d", p.MaxLimit),
		"mediaid":    fixed("Invalid IMDb ID (expected format: tt1234567)"),
	}
	must := func(tag string, fn govalidator.Func) {
		if err := v.validate.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	must("searchlen", func(fl govalidator.FieldLevel) bool {
		n := utf8.RuneCountInString(fl.Field().String())
		return n >= p.MinQueryLen && n <= p.MaxQueryLen
	})
	must("searchchars", func(fl govalidator.FieldLevel) bool {
		s := fl.Field().String()
		return utf8.ValidString(s) && (p.QueryPattern == nil || p.QueryPattern.MatchString(s))
	})
	must("releaseyear", func(fl govalidator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) != 4 {
			return false
		}
		year, err := strconv.Atoi(s)
		if err != nil {
			return false
		}
		return year >= p.MinYear && year <= p.maxYear()
	})
	must("pagerange", intRange(1, p.MaxPage))
	must("limitrange", intRange(1, p.MaxLimit))
	must("mediaid", func(fl govalidator.FieldLevel) bool {
		return p.MediaIDPattern.MatchString(fl.Field().String())
	})
}

func intRange(min, max int) govalidator.Func {
	return func(fl govalidator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() == reflect.Pointer {
			if f.IsNil() {
				return true
			}
			f = f.Elem()
		}
		n := int(f.Int())
		return n >= min && n <= max
	}
}
