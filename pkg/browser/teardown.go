package browser

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// teardownSession closes a detached session: pages, then the browser, then
// the OS process with TERM-then-KILL escalation. Every step is bounded and
// best-effort; nothing is returned because teardown runs on error paths.
func (m *SessionManager) teardownSession(ctx context.Context, s *Session) {
	if s == nil {
		return
	}
	m.logger.Infof("tearing down session %s (strategy %q)", s.ID, s.Strategy)
	defer m.metrics.tornDown()

	// Pages and browser close must run even if the caller's context is done.
	ctx = context.WithoutCancel(ctx)

	if s.Browser != nil {
		pages, err := Race(ctx, m.cfg.PagesListTimeout, "list pages", s.Browser.Pages)
		if err != nil {
			m.logger.Warnf("listing pages for session %s: %v", s.ID, err)
		}

		var g errgroup.Group
		for _, page := range pages {
			g.Go(func() error {
				if err := RaceErr(ctx, m.cfg.PageCloseTimeout, "close page", page.Close); err != nil {
					return fmt.Errorf("closing page %s: %w", page.URL(), err)
				}
				return nil
			})
		}
		// Wait reports only the first page-close error.
		if err := g.Wait(); err != nil {
			m.logger.Warnf("session %s: %v", s.ID, err)
		}

		if err := RaceErr(ctx, m.cfg.BrowserCloseTimeout, "close browser", s.Browser.Close); err != nil {
			m.logger.Warnf("closing browser for session %s: %v", s.ID, err)
		}
	}

	m.stopProcess(ctx, s.Process)
}

// stopProcess terminates a still-running browser process, escalating to a
// kill when it outlives the grace period.
func (m *SessionManager) stopProcess(ctx context.Context, p ProcessHandle) {
	if p == nil || !p.Alive() {
		return
	}
	m.logger.Infof("browser process %d still alive after close, terminating", p.Pid())
	if err := p.Terminate(); err != nil {
		m.logger.Debugf("terminate %d: %v", p.Pid(), err)
	}

	_ = m.sleep(ctx, m.cfg.TerminateGrace)
	if !p.Alive() {
		return
	}

	m.logger.Warnf("browser process %d ignored terminate after %s, killing", p.Pid(), m.cfg.TerminateGrace.Round(time.Millisecond))
	if err := p.Kill(); err != nil {
		m.logger.Warnf("kill %d: %v", p.Pid(), err)
	}
}
