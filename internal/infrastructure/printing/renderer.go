package printing

import (
	"context"
	"time"
)

// RenderRequest contains the parameters for rendering HTML to PDF
type RenderRequest struct {
	// HTML content to render
	HTML string
	// PaperWidthMM is the page width; thermal rolls are 58 or 80
	PaperWidthMM float64
	// PaperHeightMM is the page height; zero means continuous roll paper
	PaperHeightMM float64
	// MarginMM applies to every side
	MarginMM float64
	// Title for the PDF document metadata
	Title string
	// Timeout overrides the default rendering timeout
	Timeout time.Duration
}

// IsContinuous reports whether the request targets roll paper
func (r *RenderRequest) IsContinuous() bool {
	return r.PaperHeightMM <= 0
}

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer renders HTML to PDF
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	// Close releases any resources held by the renderer
	Close() error
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout   = "RENDER_TIMEOUT"
	ErrCodeRenderFailed    = "RENDER_FAILED"
	ErrCodeInvalidHTML     = "INVALID_HTML"
	ErrCodeInvalidPaper    = "INVALID_PAPER_SIZE"
	ErrCodeTemplateMissing = "TEMPLATE_NOT_FOUND"
	ErrCodeRenderDisabled  = "RENDER_DISABLED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// DisabledRenderer stands in when PDF output is switched off
type DisabledRenderer struct{}

// Render always fails with ErrCodeRenderDisabled
func (DisabledRenderer) Render(context.Context, *RenderRequest) (*RenderResult, error) {
	return nil, NewRenderError(ErrCodeRenderDisabled, "document rendering is disabled", nil)
}

// Close is a no-op
func (DisabledRenderer) Close() error {
	return nil
}
