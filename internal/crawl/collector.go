package crawl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	colly "github.com/gocolly/colly/v2"

	"github.com/CyborPunk-2077/article-scraper/internal/logs"
)

// retryCountKey is the request context key for the per-URL retry count.
const retryCountKey = "retry_count"

// buildCollector configures the async collector from the crawler settings.
func (s *Scheduler) buildCollector(ctx context.Context) (*colly.Collector, error) {
	opts := []colly.CollectorOption{
		colly.StdlibContext(ctx),
		colly.MaxDepth(s.cfg.MaxDepth),
		colly.Async(true),
		colly.ParseHTTPErrorResponse(),
		colly.IgnoreRobotsTxt(),
		colly.DetectCharset(),
	}
	if s.cfg.UserAgent != "" {
		opts = append(opts, colly.UserAgent(s.cfg.UserAgent))
	}
	if s.cfg.MaxBodySize > 0 {
		opts = append(opts, colly.MaxBodySize(s.cfg.MaxBodySize))
	}

	c := colly.NewCollector(opts...)
	c.SetRequestTimeout(s.cfg.RequestTimeout)

	parallelism := s.cfg.MaxConcurrency
	if parallelism < 1 {
		parallelism = 1
	}
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: parallelism,
		Delay:       s.cfg.Delay,
		RandomDelay: s.cfg.RandomDelay,
	}); err != nil {
		return nil, fmt.Errorf("set limit rule: %w", err)
	}

	return c, nil
}

// setupCallbacks wires the collector's request, response, link and error
// handling for this session.
func (s *Scheduler) setupCallbacks(ctx context.Context) {
	// Abort queued requests once a stop or the target is observed.
	// In-flight fetches are unaffected and record their outcomes.
	s.collector.OnRequest(func(r *colly.Request) {
		select {
		case <-ctx.Done():
			r.Abort()
		case <-s.signals.AbortChannel():
			r.Abort()
		default:
			s.log.Debug("Visiting URL", "url", r.URL.String())
		}
	})

	// Only HTML bodies are worth downloading.
	s.collector.OnResponseHeaders(func(r *colly.Response) {
		if r.StatusCode >= http.StatusBadRequest {
			// Error statuses flow through to processPage regardless of body type.
			return
		}
		contentType := strings.ToLower(strings.TrimSpace(r.Headers.Get("Content-Type")))
		if contentType != "" && !isHTMLContentType(contentType) {
			s.log.Debug("Skipping non-HTML response",
				"url", r.Request.URL.String(),
				"content_type", contentType,
			)
			r.Request.Abort()
		}
	})

	s.collector.OnResponse(func(r *colly.Response) {
		s.processPage(ctx, r)
	})

	s.collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		select {
		case <-ctx.Done():
		case <-s.signals.AbortChannel():
		default:
			s.handleLink(e)
		}
	})

	s.collector.OnError(s.handleCrawlError)
}

// handleCrawlError handles network-level fetch errors. HTTP error statuses
// never reach here because the collector parses them into responses.
func (s *Scheduler) handleCrawlError(r *colly.Response, visitErr error) {
	pageURL := r.Request.URL.String()

	if isExpectedCrawlError(visitErr) {
		s.log.Debug("Expected error while crawling",
			"url", pageURL,
			"error", visitErr.Error(),
		)
		return
	}

	if isTransientCrawlError(visitErr) && s.tryRetry(r) {
		return
	}

	s.sess.IncFailed()
	s.deps.Recorder.Warn(logs.StageScrape, "Fetch failed",
		"session_id", s.sess.ID(),
		"url", pageURL,
		"error", visitErr.Error(),
	)
}

// tryRetry re-enqueues the request unless its retry budget is spent. The
// backoff sleep runs on the fetching goroutine, holding its limit-rule slot.
func (s *Scheduler) tryRetry(r *colly.Response) bool {
	if s.cfg.MaxRetries <= 0 {
		return false
	}

	count := 0
	if v := r.Request.Ctx.GetAny(retryCountKey); v != nil {
		if n, ok := v.(int); ok {
			count = n
		}
	}
	if count >= s.cfg.MaxRetries {
		return false
	}

	r.Request.Ctx.Put(retryCountKey, count+1)
	s.log.Debug("Retrying fetch",
		"url", r.Request.URL.String(),
		"attempt", count+1,
		"max_retries", s.cfg.MaxRetries,
	)
	time.Sleep(s.cfg.RetryBackoff)

	if retryErr := r.Request.Retry(); retryErr != nil {
		s.log.Debug("Retry failed",
			"url", r.Request.URL.String(),
			"error", retryErr.Error(),
		)
		return false
	}
	return true
}

// isExpectedCrawlError returns true for errors that are part of normal
// collector operation and carry no signal about the page.
func isExpectedCrawlError(err error) bool {
	var alreadyVisited *colly.AlreadyVisitedError
	if errors.As(err, &alreadyVisited) ||
		errors.Is(err, colly.ErrMaxDepth) ||
		errors.Is(err, colly.ErrForbiddenDomain) ||
		errors.Is(err, colly.ErrAbortedAfterHeaders) ||
		errors.Is(err, colly.ErrRobotsTxtBlocked) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already visited") ||
		strings.Contains(msg, "max depth") ||
		strings.Contains(msg, "forbidden domain") ||
		strings.Contains(msg, "context canceled")
}

// isTransientCrawlError returns true if the error looks retryable.
func isTransientCrawlError(err error) bool {
	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection refused", "connection reset", "connection reset by peer",
		"temporary failure", "eof", "broken pipe", "no such host",
		"i/o timeout", "connection timed out", "timeout",
		"deadline exceeded",
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// isRetryableStatus reports whether an HTTP error status is worth retrying.
func isRetryableStatus(status int) bool {
	return status >= http.StatusInternalServerError && status < 600
}

func isHTMLContentType(contentType string) bool {
	return strings.HasPrefix(contentType, "text/html") ||
		strings.HasPrefix(contentType, "application/xhtml+xml") ||
		strings.Contains(contentType, "text/html")
}
