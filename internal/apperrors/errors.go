package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks or that
// a requested mutation would leave the system misconfigured (e.g. two base
// currencies, a non-positive rate, a malformed tax id). Validation errors
// are rejected synchronously, before any persistent mutation.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrProviderUnavailable indicates a transient failure of an external rate
// source (network error, timeout, unparseable page). The fallback manager
// absorbs it and moves on to the next provider.
var ErrProviderUnavailable = errors.New("rate provider unavailable")

// ErrCurrencyUnsupported indicates that a provider does not serve a given
// currency pair. Permanent for that provider/pair; not worth retrying.
var ErrCurrencyUnsupported = errors.New("currency not supported by provider")

// ErrNoApplicableRate indicates that no provider in the fallback chain could
// resolve a rate for the requested pair. This is the only provider-side
// failure that is ever surfaced to a caller.
var ErrNoApplicableRate = errors.New("no exchange rate available")
