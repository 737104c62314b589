package enhance

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyInput     = errors.New("page content cannot be empty")
	ErrParse          = errors.New("failed to parse page")
	ErrInvalidOption  = errors.New("invalid option")
	ErrStyleNotFound  = errors.New("style not found")
	ErrPageClosed     = errors.New("page is closed")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
)
