package domain

import "errors"

// Terminal request errors. Structuring failures are deliberately absent:
// they are absorbed by the fallback document and never surfaced to callers.
var (
	// ErrAdmissionDenied means the caller exceeded its token budget and
	// must back off for the advertised retry-after duration.
	ErrAdmissionDenied = errors.New("admission denied")

	// ErrAuthenticationRequired means no valid caller identity was presented.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrUnsupportedInput means the declared content type cannot be
	// extracted; rejected before any AI usage is attempted.
	ErrUnsupportedInput = errors.New("unsupported input type")

	// ErrExtractionFailed means the input could not be turned into text.
	// No fallback exists in this case; the caller must supply different input.
	ErrExtractionFailed = errors.New("text extraction failed")
)
