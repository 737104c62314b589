package enhance

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/alnah/go-enhance/internal/dom"
	"github.com/alnah/go-enhance/internal/fileutil"
	"github.com/alnah/go-enhance/internal/process"
)

// Printer renders an HTML snapshot to PDF.
type Printer interface {
	PrintPDF(ctx context.Context, html string) ([]byte, error)
	Close() error
}

// Compile-time interface check.
var _ Printer = (*rodPrinter)(nil)

// PDF page dimensions in inches (A4).
const (
	paperWidthInches  = 8.27
	paperHeightInches = 11.69
	marginInches      = 0.5
)

// rodPrinter prints with headless Chrome through go-rod.
// Rod downloads Chromium on first use if no browser is found.
type rodPrinter struct {
	timeout time.Duration
	log     *zap.Logger

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func newRodPrinter(timeout time.Duration, log *zap.Logger) *rodPrinter {
	return &rodPrinter{timeout: timeout, log: log.Named("printer")}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodPrinter) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New()
	// Pre-installed browser (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		r.kill(l)
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.log.Debug("browser started", zap.Int("pid", l.PID()))

	r.launcher = l
	r.browser = browser
	return browser, nil
}

// PrintPDF writes html to a temporary file, opens it and prints it.
func (r *rodPrinter) PrintPDF(ctx context.Context, html string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, cleanup, err := fileutil.WriteTempFile(html, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + path})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.PDF(&proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return data, nil
}

// Close closes the browser and kills what is left of its process tree.
func (r *rodPrinter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.kill(r.launcher)
	r.browser = nil
	r.launcher = nil
	return err
}

func (r *rodPrinter) kill(l *launcher.Launcher) {
	if pid := l.PID(); pid > 0 {
		process.KillProcessGroup(pid)
	}
	l.Kill()
}

func floatPtr(v float64) *float64 {
	return &v
}

// withBaseHref points the relative URLs of page at dir, since the printed
// copy lives in the temp directory. A page with its own <base> is kept.
func withBaseHref(page, dir string) (string, error) {
	if dir == "" {
		return page, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving base dir: %w", err)
	}

	doc, err := dom.ParseString(page)
	if err != nil {
		return "", err
	}
	if doc.Find("base[href]").Length() > 0 {
		return page, nil
	}
	head := doc.Find("head")
	if head.Length() == 0 {
		return page, nil
	}

	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: strings.TrimSuffix(p, "/") + "/"}

	base := dom.NewElement("base")
	dom.SetAttr(base, "href", u.String())
	h := head.Nodes[0]
	h.InsertBefore(base, h.FirstChild)
	return dom.Render(doc)
}
