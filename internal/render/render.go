// Package render drives headless Chrome to capture post-hydration DOM,
// visible text, and computed style/responsiveness signals for pages served as
// pre-hydration SPA shells.
package render

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"

	"github.com/webangle/teardown-cli/internal/model"
)

// Rendered is the output of one headless render.
type Rendered struct {
	HTML       string
	Text       string
	Style      model.StyleSignals
	Responsive model.ResponsiveSignals
}

// Renderer renders a URL with a bounded timeout.
type Renderer interface {
	Render(ctx context.Context, url string) (*Rendered, error)
}

// ChromeRenderer implements Renderer with chromedp.
type ChromeRenderer struct {
	timeout  time.Duration
	execPath string
}

// Option configures a ChromeRenderer.
type Option func(*ChromeRenderer)

// WithTimeout sets the render wall-clock limit.
func WithTimeout(d time.Duration) Option {
	return func(r *ChromeRenderer) {
		r.timeout = d
	}
}

// WithChromePath sets an explicit Chrome binary path.
func WithChromePath(path string) Option {
	return func(r *ChromeRenderer) {
		r.execPath = path
	}
}

// NewChromeRenderer creates a ChromeRenderer with a 15s default timeout.
func NewChromeRenderer(opts ...Option) *ChromeRenderer {
	r := &ChromeRenderer{timeout: 15 * time.Second}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// styleSignalsJS collects computed-CSS signals from the rendered DOM. Cross-
// origin stylesheets throw on cssRules access and are skipped.
const styleSignalsJS = `(() => {
	const fonts = new Set();
	const colors = new Set();
	document.querySelectorAll("*").forEach((el) => {
		const cs = getComputedStyle(el);
		if (cs.fontFamily) fonts.add(cs.fontFamily);
		if (cs.color) colors.add(cs.color);
		if (cs.backgroundColor && cs.backgroundColor !== "rgba(0, 0, 0, 0)") {
			colors.add(cs.backgroundColor);
		}
	});
	const body = document.body;
	const bodyStyle = body ? getComputedStyle(body) : {};
	let usesCssVariables = false;
	try {
		for (const sheet of document.styleSheets) {
			try {
				for (const rule of sheet.cssRules) {
					if (rule.cssText.includes("--")) { usesCssVariables = true; break; }
				}
			} catch (e) {}
			if (usesCssVariables) break;
		}
	} catch (e) {}
	const baseFontSize = parseFloat(bodyStyle.fontSize || "16");
	const lineHeight = parseFloat(bodyStyle.lineHeight || "1.2");
	return {
		fontCount: fonts.size,
		colorCount: colors.size,
		baseFontSize: isNaN(baseFontSize) ? 16 : baseFontSize,
		lineHeight: isNaN(lineHeight) ? 1.2 : lineHeight,
		usesCssVariables: usesCssVariables,
		maxContentWidth: body ? body.scrollWidth : 0,
	};
})()`

const responsiveSignalsJS = `(() => {
	const hasViewportMeta = !!document.querySelector('meta[name="viewport"]');
	const overflow = document.body.scrollWidth - window.innerWidth;
	return { hasViewportMeta: hasViewportMeta, hasHorizontalOverflow: overflow > 20 };
})()`

const bodyTextJS = `document.body ? document.body.innerText : ""`

// Render navigates to url in headless Chrome and extracts the hydrated DOM
// plus style and responsiveness signals. The renderer's timeout bounds the
// whole operation in addition to any deadline already on ctx.
func (r *ChromeRenderer) Render(ctx context.Context, url string) (*Rendered, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(1280, 800),
	)
	if r.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(r.execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()

	tctx, tcancel := context.WithTimeout(allocCtx, r.timeout)
	defer tcancel()

	cctx, ccancel := chromedp.NewContext(tctx)
	defer ccancel()

	var out Rendered
	err := chromedp.Run(cctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &out.HTML, chromedp.ByQuery),
		chromedp.Evaluate(bodyTextJS, &out.Text),
		chromedp.Evaluate(styleSignalsJS, &out.Style),
		chromedp.Evaluate(responsiveSignalsJS, &out.Responsive),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "render: %s", url)
	}

	return &out, nil
}
