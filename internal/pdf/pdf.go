// Package pdf renders label documents to PDF through headless Chrome.
package pdf

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/lubritrack/label-engine/pkg/labelformat"
)

// Paper dimensions in inches for page.PrintToPDF.
const (
	thermalWidthIn  = 2.28 // 58mm
	thermalHeightIn = 3.5
	a4WidthIn       = 8.27
	a4HeightIn      = 11.69
)

const renderSettle = 300 * time.Millisecond

// Renderer drives a headless Chrome instance to print HTML documents.
type Renderer struct {
	// ChromePath overrides the browser binary location. Empty uses
	// whatever chromedp finds on PATH.
	ChromePath string
}

func NewRenderer(chromePath string) *Renderer {
	return &Renderer{ChromePath: chromePath}
}

// Render loads the HTML in a fresh browser context and returns the
// printed PDF bytes. Paper size selects the page geometry; thermal
// pages print without margins.
func (r *Renderer) Render(ctx context.Context, html string, paper labelformat.PaperSize) ([]byte, error) {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
	)
	if r.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	cdpCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var pdfBytes []byte

	err := chromedp.Run(cdpCtx,
		chromedp.Navigate("data:text/html,"+urlEncode(html)),
		chromedp.Sleep(renderSettle),
		chromedp.ActionFunc(func(ctx context.Context) error {
			printer := page.PrintToPDF().WithPrintBackground(true)

			if paper == labelformat.PaperA4 {
				printer = printer.
					WithPaperWidth(a4WidthIn).
					WithPaperHeight(a4HeightIn)
			} else {
				printer = printer.
					WithPaperWidth(thermalWidthIn).
					WithPaperHeight(thermalHeightIn).
					WithMarginTop(0).
					WithMarginBottom(0).
					WithMarginLeft(0).
					WithMarginRight(0)
			}

			buf, _, err := printer.Do(ctx)
			if err != nil {
				return err
			}
			pdfBytes = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}

	return pdfBytes, nil
}

// urlEncode escapes HTML for use in a data URL. QueryEscape encodes
// spaces as "+", which data URLs render literally.
func urlEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
