package profile

import (
	stderrors "errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"github.com/agentstation/quorum/pkg/errors"
)

// Load reads a YAML overlay from path and applies it on top of Default.
// Keys absent from the file keep their default values; lists present in the
// file replace the default list. The result is validated before it is returned.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("profile", path)
		}
		return nil, errors.WrapIO("read", path, err)
	}
	return Parse(data, path)
}

// Parse applies a YAML overlay held in memory. The name is used in errors only.
func Parse(data []byte, name string) (*Profile, error) {
	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, errors.NewConfigError("profile", fmt.Sprintf("cannot parse %s", name), err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the profile for structural problems: missing labels,
// thresholds out of range, titles that do not carry their heading marker and
// alias patterns that do not compile.
func (p *Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			field := strings.TrimPrefix(first.Namespace(), "Profile.")
			return errors.NewValidationError(field, first.Value(),
				fmt.Sprintf("failed %q constraint", first.Tag()))
		}
		return errors.WrapValidation("profile", err)
	}

	sections := []struct {
		name string
		s    Section
	}{
		{"sections.categories", p.Sections.Categories},
		{"sections.items", p.Sections.Items},
		{"sections.themes", p.Sections.Themes},
	}
	for _, sec := range sections {
		if !strings.Contains(sec.s.Title, sec.s.Heading) {
			return errors.NewValidationError(sec.name+".title", sec.s.Title, "must contain the section heading")
		}
	}
	if !strings.Contains(p.Sections.Highlights.Title, p.Sections.Highlights.Heading) {
		return errors.NewValidationError("sections.highlights.title", p.Sections.Highlights.Title,
			"must contain the section heading")
	}

	for i, rules := range []Rules{p.Normalize.Theme, p.Normalize.Item} {
		for _, a := range rules.Aliases {
			if _, err := regexp.Compile(a.Pattern); err != nil {
				kind := []string{"theme", "item"}[i]
				return errors.NewValidationError("normalize."+kind+".aliases", a.Pattern, err.Error())
			}
		}
	}
	return nil
}
