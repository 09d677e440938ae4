package errors

import "errors"

// Structural failures. They are never retried and halt the stage that hit them.
var (
	ErrConfigNotFound       = errors.New("configuration file not found")
	ErrManifestUnavailable  = errors.New("version manifest unavailable")
	ErrVersionNotFound      = errors.New("version not found in manifest")
	ErrMissingField         = errors.New("descriptor is missing a required field")
	ErrUnsupportedLoader    = errors.New("unsupported loader")
	ErrNoVersionFeed        = errors.New("loader has no version feed")
	ErrNoLoaderVersions     = errors.New("no loader versions available")
	ErrNoProfileInInstaller = errors.New("no version profile found in installer")
	ErrUnknownSource        = errors.New("unknown download source")
	ErrJobNotFound          = errors.New("job not found")
)
