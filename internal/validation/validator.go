package validation

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// versionIDPattern matches names that are safe as a single directory name.
var versionIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._+ -]{0,63}$`)

// New returns a validator with the project's custom tags registered:
//
//	version_id      a game version or install name usable as a directory name
//	loader_version  a loader version string
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("version_id", validateVersionID)
	_ = v.RegisterValidation("loader_version", validateLoaderVersion)
	return v
}

var validate = New()

// Struct validates a request struct with the shared validator.
func Struct(s any) error {
	return validate.Struct(s)
}

// VersionID checks a single version or install name.
func VersionID(id string) error {
	if err := validate.Var(id, "required,version_id"); err != nil {
		return fmt.Errorf("invalid version id %q: %w", id, err)
	}
	return nil
}

func validateVersionID(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "." || s == ".." {
		return false
	}
	return versionIDPattern.MatchString(s)
}

func validateLoaderVersion(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || versionIDPattern.MatchString(s)
}
