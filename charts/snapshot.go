package charts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"bikeshare-dashboard/config"
	"bikeshare-dashboard/models"
	"bikeshare-dashboard/utils"
)

const (
	viewportWidth  = 1280
	viewportHeight = 900
	captureTimeout = 60 * time.Second
)

// Snapshotter renders chart pages to PNG with headless Chrome.
type Snapshotter struct {
	cfg    *config.Config
	logger *utils.Logger
	pool   *utils.WorkerPool
	seen   *utils.KeySet
	retry  *utils.RetryConfig
}

// NewSnapshotter creates a Snapshotter bounded by cfg's concurrency and rate
// limit.
func NewSnapshotter(cfg *config.Config, logger *utils.Logger) *Snapshotter {
	return &Snapshotter{
		cfg:    cfg,
		logger: logger,
		pool:   utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		seen:   utils.NewKeySet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   time.Second,
			Logger:      logger,
		},
	}
}

// Export writes <dir>/<view>.png for every dashboard. Dashboards without a
// view, or whose view was already exported, are skipped. It returns the
// written paths and the joined errors of failed views.
func (s *Snapshotter) Export(ctx context.Context, dashboards []*models.Dashboard, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("charts: create export dir: %w", err)
	}

	chromeBin := s.cfg.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	s.logger.Info("[snapshot] Using browser binary: %q", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("allow-file-access-from-files", true),
		chromedp.WindowSize(viewportWidth, viewportHeight),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()
	if err := chromedp.Run(browserCtx); err != nil {
		return nil, fmt.Errorf("charts: start browser: %w", err)
	}

	var (
		mu      sync.Mutex
		written []string
		errs    []error
	)

	for _, d := range dashboards {
		d := d
		if d == nil || d.View == nil {
			continue
		}
		kind := string(d.View.Kind)
		if !s.seen.Add(kind) {
			s.logger.Debug("[snapshot] View %s already exported, skipping", kind)
			continue
		}

		s.pool.Submit(func() {
			out := filepath.Join(dir, kind+".png")
			err := s.retry.Do(ctx, "snapshot-"+kind, func() error {
				return s.capture(browserCtx, d, out)
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Error("[snapshot] %s: %v", kind, err)
				errs = append(errs, err)
				return
			}
			s.logger.Info("[snapshot] Wrote %s", out)
			written = append(written, out)
		})
	}

	s.pool.Wait()
	return written, errors.Join(errs...)
}

// capture renders d to a temporary HTML file, loads it in a new tab and saves
// a full-page screenshot to out.
func (s *Snapshotter) capture(browserCtx context.Context, d *models.Dashboard, out string) error {
	page, err := os.CreateTemp("", "bikeshare-*.html")
	if err != nil {
		return fmt.Errorf("create temp page: %w", err)
	}
	defer os.Remove(page.Name())

	if err := RenderPage(page, d); err != nil {
		page.Close()
		return err
	}
	if err := page.Close(); err != nil {
		return fmt.Errorf("write temp page: %w", err)
	}

	ctx, cancel := chromedp.NewContext(browserCtx)
	defer cancel()

	ctx, cancelTimeout := context.WithTimeout(ctx, captureTimeout)
	defer cancelTimeout()

	var png []byte
	err = chromedp.Run(ctx,
		chromedp.EmulateViewport(viewportWidth, viewportHeight),
		chromedp.Navigate("file://"+page.Name()),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// echarts animates the first draw
		chromedp.Sleep(time.Duration(s.cfg.RenderWaitMs)*time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	)
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	if len(png) == 0 {
		return errors.New("screenshot: empty image")
	}
	return os.WriteFile(out, png, 0o644)
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
