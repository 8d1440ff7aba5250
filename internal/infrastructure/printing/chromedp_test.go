package printing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrintParams_ContinuousRoll(t *testing.T) {
	r := &ChromedpRenderer{config: ChromedpConfig{Scale: 1.0}}

	params := r.buildPrintParams(&RenderRequest{HTML: "<p>x</p>", PaperWidthMM: 80, MarginMM: 3})

	assert.InDelta(t, 80/25.4, params.paperWidth, 0.001)
	assert.InDelta(t, float64(continuousHeightMM)/25.4, params.paperHeight, 0.001)
	assert.InDelta(t, 3/25.4, params.margin, 0.001)
	assert.True(t, params.preferCSSPageSize)
	assert.Equal(t, 1.0, params.scale)
}

func TestBuildPrintParams_FixedPage(t *testing.T) {
	r := &ChromedpRenderer{config: ChromedpConfig{Scale: 0.9}}

	params := r.buildPrintParams(&RenderRequest{HTML: "<p>x</p>", PaperWidthMM: 210, PaperHeightMM: 297})

	assert.InDelta(t, 297/25.4, params.paperHeight, 0.001)
	assert.False(t, params.preferCSSPageSize)
	assert.Equal(t, 0.9, params.scale)
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name string
		req  *RenderRequest
		code string
	}{
		{"nil request", nil, ErrCodeInvalidHTML},
		{"blank html", &RenderRequest{HTML: "  ", PaperWidthMM: 80}, ErrCodeInvalidHTML},
		{"too narrow", &RenderRequest{HTML: "<p/>", PaperWidthMM: 20}, ErrCodeInvalidPaper},
		{"too wide", &RenderRequest{HTML: "<p/>", PaperWidthMM: 500}, ErrCodeInvalidPaper},
		{"margins eat the page", &RenderRequest{HTML: "<p/>", PaperWidthMM: 58, MarginMM: 29}, ErrCodeInvalidPaper},
		{"valid 58mm roll", &RenderRequest{HTML: "<p/>", PaperWidthMM: 58, MarginMM: 2}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequest(tt.req)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			var renderErr *RenderError
			require.ErrorAs(t, err, &renderErr)
			assert.Equal(t, tt.code, renderErr.Code)
		})
	}
}

func TestBuildCompleteHTML(t *testing.T) {
	full := "<!DOCTYPE html><html><body>hi</body></html>"
	assert.Equal(t, full, buildCompleteHTML(&RenderRequest{HTML: full}))

	wrapped := buildCompleteHTML(&RenderRequest{HTML: "<p>hi</p>", Title: "A & B"})
	assert.Contains(t, wrapped, "<!DOCTYPE html>")
	assert.Contains(t, wrapped, "<title>A &amp; B</title>")
	assert.Contains(t, wrapped, "<body><p>hi</p></body>")
}

func TestEstimatePageCount(t *testing.T) {
	pdf := []byte("/Type /Pages /Type /Page /Type /Page")
	assert.Equal(t, 2, estimatePageCount(pdf))
	assert.Equal(t, 1, estimatePageCount([]byte("garbage")))
}

func TestChromedpRenderer_RejectsBeforeLaunchingBrowser(t *testing.T) {
	r := NewChromedpRenderer(ChromedpConfig{})
	defer r.Close()

	_, err := r.Render(context.Background(), &RenderRequest{HTML: "", PaperWidthMM: 80})
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)
}

func TestRenderError(t *testing.T) {
	cause := context.DeadlineExceeded
	err := NewRenderError(ErrCodeRenderTimeout, "timed out", cause)
	assert.Equal(t, "timed out: context deadline exceeded", err.Error())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "plain", NewRenderError(ErrCodeRenderFailed, "plain", nil).Error())
}

func TestDisabledRenderer(t *testing.T) {
	var r PDFRenderer = DisabledRenderer{}
	_, err := r.Render(context.Background(), &RenderRequest{HTML: "<p>x</p>"})

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeRenderDisabled, renderErr.Code)
	assert.NoError(t, r.Close())
}
