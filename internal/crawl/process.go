package crawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	colly "github.com/gocolly/colly/v2"

	"github.com/CyborPunk-2077/article-scraper/internal/domain"
	"github.com/CyborPunk-2077/article-scraper/internal/extract"
	"github.com/CyborPunk-2077/article-scraper/internal/frontier"
	"github.com/CyborPunk-2077/article-scraper/internal/logs"
	"github.com/CyborPunk-2077/article-scraper/internal/storage"
)

// processPage runs the accept path for one fetched page: classify, extract,
// persist, resolve the image. Rejections and per-URL failures touch counters
// only; a blob-store failure fails the session.
func (s *Scheduler) processPage(ctx context.Context, r *colly.Response) {
	if r.StatusCode >= http.StatusBadRequest {
		s.handleHTTPFailure(r)
		return
	}

	// Request.URL is the final URL after redirects.
	pageURL := r.Request.URL
	s.sess.IncDiscovered()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
	if err != nil {
		s.sess.IncFailed()
		s.deps.Recorder.Warn(logs.StageScrape, "Failed to parse page",
			"session_id", s.sess.ID(),
			"url", pageURL.String(),
			"error", err.Error(),
		)
		return
	}

	decision := s.classifier.Classify(pageURL.String(), doc)
	if !decision.Accept {
		s.sess.IncRejected()
		s.log.Debug("Page rejected",
			"url", pageURL.String(),
			"reason", decision.Reason,
			"words", decision.Stats.Words,
			"paragraphs", decision.Stats.Paragraphs,
		)
		return
	}

	result, err := s.deps.Extractor.Extract(pageURL, string(r.Body))
	if err != nil {
		s.sess.IncFailed()
		s.deps.Recorder.Warn(logs.StageScrape, "Extraction failed",
			"session_id", s.sess.ID(),
			"url", pageURL.String(),
			"error", err.Error(),
		)
		return
	}

	article, err := s.buildArticle(pageURL, r.StatusCode, result)
	if err != nil {
		s.sess.IncFailed()
		s.log.Debug("Skipping unidentifiable page",
			"url", pageURL.String(),
			"error", err.Error(),
		)
		return
	}

	if err := s.putArticle(ctx, article); err != nil {
		s.fail(fmt.Errorf("store article record: %w", err))
		return
	}
	pageKey := storage.Key(s.sess.ID(), article.ID, storage.ArtifactPage)
	if err := s.deps.Store.Put(ctx, storage.RoleRaw, pageKey, r.Body, storage.ContentTypeHTML); err != nil {
		s.fail(fmt.Errorf("store page html: %w", err))
		return
	}

	// The insert is the authoritative dedup; a concurrent loser records a
	// duplicate reject and leaves the winner's record alone.
	if !s.accepted.Add(article.NormalizedURL) {
		s.sess.IncRejected()
		s.log.Debug("Duplicate article",
			"url", pageURL.String(),
			"normalized", article.NormalizedURL,
		)
		return
	}

	count := s.sess.IncAccepted()
	s.deps.Recorder.Info(logs.StageScrape, "Article accepted",
		"session_id", s.sess.ID(),
		"article_id", article.ID,
		"url", pageURL.String(),
		"reason", decision.Reason,
		"strategy", result.Strategy,
		"words", result.WordCount,
		"accepted", count,
	)

	if target := s.sess.Target(); target > 0 && count >= target {
		s.deps.Recorder.Info(logs.StageScrape, "Target reached",
			"session_id", s.sess.ID(),
			"accepted", count,
			"target", target,
		)
		s.signals.SignalAbort()
	}

	s.resolveImage(ctx, article, pageURL, doc, result.LeadImage)
}

// handleHTTPFailure records an HTTP error status, retrying server errors.
func (s *Scheduler) handleHTTPFailure(r *colly.Response) {
	if isRetryableStatus(r.StatusCode) && s.tryRetry(r) {
		return
	}

	s.sess.IncFailed()
	s.deps.Recorder.Warn(logs.StageScrape, "Fetch failed",
		"session_id", s.sess.ID(),
		"url", r.Request.URL.String(),
		"status", r.StatusCode,
		"error", fmt.Errorf("%w: status %d", domain.ErrFetchFailed, r.StatusCode).Error(),
	)
}

// buildArticle assembles the image-pending record for an accepted page.
func (s *Scheduler) buildArticle(pageURL *url.URL, status int, result *extract.Result) (*domain.Article, error) {
	normalized, err := frontier.Normalize(pageURL.String())
	if err != nil {
		return nil, err
	}
	articleID, err := frontier.ArticleID(pageURL.String())
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &domain.Article{
		ID:            articleID,
		SessionID:     s.sess.ID(),
		URL:           pageURL.String(),
		NormalizedURL: normalized,
		Title:         result.Title,
		Author:        result.Author,
		PublishedAt:   result.PublishedAt,
		PublishedRaw:  result.PublishedRaw,
		Body:          result.Body,
		WordCount:     result.WordCount,
		ExtractedBy:   result.Strategy,
		Status:        domain.ArticleStatusImagePending,
		HTTPStatus:    status,
		FetchedAt:     now,
		CreatedAt:     now,
	}, nil
}

// resolveImage runs the image cascade for an accepted article and rewrites
// the record with the outcome. Resolution failure is per-article.
func (s *Scheduler) resolveImage(ctx context.Context, article *domain.Article, pageURL *url.URL, doc *goquery.Document, leadImage string) {
	ref, jpeg, err := s.deps.Resolver.Resolve(ctx, pageURL, doc, leadImage)
	if err != nil {
		article.Status = domain.ArticleStatusImageFailed
		s.deps.Recorder.Info(logs.StageScrape, "No image resolved",
			"session_id", s.sess.ID(),
			"article_id", article.ID,
			"url", article.URL,
			"error", err.Error(),
		)
	} else {
		imageKey := storage.Key(s.sess.ID(), article.ID, storage.ArtifactImage)
		if putErr := s.deps.Store.Put(ctx, storage.RoleRaw, imageKey, jpeg, storage.ContentTypeJPEG); putErr != nil {
			s.fail(fmt.Errorf("store image: %w", putErr))
			return
		}
		ref.Key = imageKey
		article.Image = ref
		article.Status = domain.ArticleStatusComplete
		s.sess.IncImagesResolved()
		s.log.Debug("Image resolved",
			"article_id", article.ID,
			"source", ref.SourceURL,
			"strategy", ref.Strategy,
			"score", ref.Score,
		)
	}

	if err := s.putArticle(ctx, article); err != nil {
		s.fail(fmt.Errorf("update article record: %w", err))
	}
}

// putArticle writes the article record under its raw-role key.
func (s *Scheduler) putArticle(ctx context.Context, article *domain.Article) error {
	data, err := json.Marshal(article)
	if err != nil {
		return fmt.Errorf("marshal article %s: %w", article.ID, err)
	}
	key := storage.Key(s.sess.ID(), article.ID, storage.ArtifactArticle)
	return s.deps.Store.Put(ctx, storage.RoleRaw, key, data, storage.ContentTypeJSON)
}
