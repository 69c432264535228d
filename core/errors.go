package core

import (
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes surfaced to callers, mirroring spec §7's error kinds.
const (
	ErrorConfigMissing        = "LOW_CONFIG_MISSING"
	ErrorTransport            = "LOW_TRANSPORT_ERROR"
	ErrorHTTP                 = "LOW_HTTP_ERROR"
	ErrorDigestMismatch       = "LOW_DIGEST_MISMATCH"
	ErrorAllMirrorsFailed     = "LOW_ALL_MIRRORS_FAILED"
	ErrorMissingRequires      = "LOW_MISSING_REQUIRES"
	ErrorConflictsInstalled   = "LOW_CONFLICTS_INSTALLED"
	ErrorConflictsPeer        = "LOW_CONFLICTS_PEER"
	ErrorDatabase             = "LOW_DATABASE_ERROR"
)

// serviceErrorConvertible lets any resolver-level error type declare its own
// mapping to a goerrors.Error without the core package importing resolver.
type serviceErrorConvertible interface {
	ToServiceError() *goerrors.Error
}

// ConfigMissingError signals a repository database that could not be found.
type ConfigMissingError struct {
	RepoID string
	Detail string
}

func (e *ConfigMissingError) Error() string {
	if e == nil {
		return "core: config missing"
	}
	return fmt.Sprintf("core: repository %q metadata database missing: %s", e.RepoID, e.Detail)
}

func (e *ConfigMissingError) ToServiceError() *goerrors.Error {
	return goerrors.New(e.Error(), goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(ErrorConfigMissing)
}

// DatabaseError wraps a query failure against an installed or available
// repository database.
type DatabaseError struct {
	RepoID string
	Detail string
	Cause  error
}

func (e *DatabaseError) Error() string {
	if e == nil {
		return "core: database error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("core: repository %q database error: %s: %v", e.RepoID, e.Detail, e.Cause)
	}
	return fmt.Sprintf("core: repository %q database error: %s", e.RepoID, e.Detail)
}

func (e *DatabaseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func (e *DatabaseError) ToServiceError() *goerrors.Error {
	return goerrors.New(e.Error(), goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ErrorDatabase)
}

// MissingRequiresError records a requirement the resolver could not satisfy
// from any installed package, peer, or available repository.
type MissingRequiresError struct {
	Package    *Package
	Requirement PackageDependency
}

func (e *MissingRequiresError) Error() string {
	if e == nil {
		return "core: missing requires"
	}
	return fmt.Sprintf("nothing provides %s needed by %s", e.Requirement.String(), e.Package.String())
}

func (e *MissingRequiresError) ToServiceError() *goerrors.Error {
	return goerrors.New(e.Error(), goerrors.CategoryBadInput).
		WithCode(http.StatusConflict).
		WithTextCode(ErrorMissingRequires)
}

// ConflictsInstalledError records a package whose provide or conflict
// collides with an already-installed package not slated for removal.
type ConflictsInstalledError struct {
	Package  *Package
	Other    *Package
}

func (e *ConflictsInstalledError) Error() string {
	if e == nil {
		return "core: conflicts with installed package"
	}
	return fmt.Sprintf("%s conflicts with installed package %s", e.Package.String(), e.Other.String())
}

func (e *ConflictsInstalledError) ToServiceError() *goerrors.Error {
	return goerrors.New(e.Error(), goerrors.CategoryConflict).
		WithCode(http.StatusConflict).
		WithTextCode(ErrorConflictsInstalled)
}

// ConflictsPeerError records two members of install/update that conflict
// with each other.
type ConflictsPeerError struct {
	Package *Package
	Peer    *Package
}

func (e *ConflictsPeerError) Error() string {
	if e == nil {
		return "core: conflicts with peer package"
	}
	return fmt.Sprintf("%s conflicts with %s", e.Package.String(), e.Peer.String())
}

func (e *ConflictsPeerError) ToServiceError() *goerrors.Error {
	return goerrors.New(e.Error(), goerrors.CategoryConflict).
		WithCode(http.StatusConflict).
		WithTextCode(ErrorConflictsPeer)
}

// TransportError records a single mirror's transport-level failure.
type TransportError struct {
	URL   string
	Cause error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "core: transport error"
	}
	return fmt.Sprintf("core: transport error fetching %s: %v", e.URL, e.Cause)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func (e *TransportError) ToServiceError() *goerrors.Error {
	return goerrors.New(e.Error(), goerrors.CategoryExternal).
		WithCode(http.StatusBadGateway).
		WithTextCode(ErrorTransport)
}

// HTTPError records a single mirror's non-success HTTP response.
type HTTPError struct {
	URL  string
	Code int
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "core: http error"
	}
	return fmt.Sprintf("core: http %d fetching %s", e.Code, e.URL)
}

func (e *HTTPError) ToServiceError() *goerrors.Error {
	return goerrors.New(e.Error(), goerrors.CategoryExternal).
		WithCode(http.StatusBadGateway).
		WithTextCode(ErrorHTTP)
}

// DigestMismatchError records a verified download whose digest did not
// match the expected value.
type DigestMismatchError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *DigestMismatchError) Error() string {
	if e == nil {
		return "core: digest mismatch"
	}
	return fmt.Sprintf("core: digest mismatch for %s: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

func (e *DigestMismatchError) ToServiceError() *goerrors.Error {
	return goerrors.New(e.Error(), goerrors.CategoryBadInput).
		WithCode(http.StatusUnprocessableEntity).
		WithTextCode(ErrorDigestMismatch)
}

// AllMirrorsFailedError is fatal for the package being downloaded.
type AllMirrorsFailedError struct {
	RepoID string
}

func (e *AllMirrorsFailedError) Error() string {
	if e == nil {
		return "core: all mirrors failed"
	}
	return fmt.Sprintf("core: all mirrors failed for repository %q", e.RepoID)
}

func (e *AllMirrorsFailedError) ToServiceError() *goerrors.Error {
	return goerrors.New(e.Error(), goerrors.CategoryExternal).
		WithCode(http.StatusBadGateway).
		WithTextCode(ErrorAllMirrorsFailed)
}

// MapError converts any of the above into a *goerrors.Error for a caller
// that wants a uniform envelope; unrecognized errors pass through wrapped
// as internal errors.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if convertible, ok := err.(serviceErrorConvertible); ok {
		if mapped := convertible.ToServiceError(); mapped != nil {
			return mapped
		}
	}
	return goerrors.New(err.Error(), goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError)
}
