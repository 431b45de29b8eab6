package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/CyborPunk-2077/article-scraper/internal/domain"
	"github.com/CyborPunk-2077/article-scraper/internal/logs"
	"github.com/CyborPunk-2077/article-scraper/internal/session"
	"github.com/CyborPunk-2077/article-scraper/internal/storage"
)

// Summarize runs the inference stage for the session: each converted text
// artifact is summarized and each stored article image is captioned, with
// the results written as summary-role artifacts. One model failure never
// blocks the remaining articles. It blocks until the stage finishes.
func (p *Pipeline) Summarize(ctx context.Context, sessionID string) error {
	sess, keys, err := p.stageInputs(ctx, sessionID, storage.RoleText, storage.ArtifactText)
	if err != nil {
		return err
	}
	if !sess.BeginSummarize() {
		return fmt.Errorf("summarize session %q: %w", sessionID, domain.ErrStageInProgress)
	}
	return p.runSummarize(ctx, sess, keys)
}

// StartSummarize checks the stage preconditions synchronously, then runs
// the summarization in the background.
func (p *Pipeline) StartSummarize(ctx context.Context, sessionID string) error {
	sess, keys, err := p.stageInputs(ctx, sessionID, storage.RoleText, storage.ArtifactText)
	if err != nil {
		return err
	}
	if !sess.BeginSummarize() {
		return fmt.Errorf("summarize session %q: %w", sessionID, domain.ErrStageInProgress)
	}

	// The stage outlives the request that triggered it.
	go func() {
		if err := p.runSummarize(context.Background(), sess, keys); err != nil {
			p.log.Error("Summarize stage failed", "session_id", sessionID, "error", err)
		}
	}()
	return nil
}

func (p *Pipeline) runSummarize(ctx context.Context, sess *session.Session, keys []string) error {
	p.recorder.Info(logs.StageSummarize, "Summarization started",
		"session_id", sess.ID(),
		"articles", len(keys),
	)

	processed, failed, err := p.runStage(ctx, p.cfg.Stages.SummarizeWorkers, keys, func(taskCtx context.Context, key string) error {
		return p.summarizeOne(taskCtx, sess.ID(), key)
	})
	sess.FinishSummarize(processed, failed, err)

	if err != nil {
		p.recorder.Error(logs.StageSummarize, "Summarization failed",
			"session_id", sess.ID(),
			"error", err.Error(),
		)
		return err
	}
	p.recorder.Info(logs.StageSummarize, "Summarization finished",
		"session_id", sess.ID(),
		"summarized", processed,
		"failed", failed,
	)
	return nil
}

// summarizeOne handles both halves for one article. The caption is still
// attempted when the text summary fails; the first failure is reported.
func (p *Pipeline) summarizeOne(ctx context.Context, sessionID, key string) error {
	articleID, err := articleIDFromKey(key)
	if err != nil {
		return err
	}

	textErr := p.summarizeText(ctx, sessionID, articleID, key)
	imageErr := p.captionImage(ctx, sessionID, articleID)
	if textErr != nil {
		return textErr
	}
	return imageErr
}

// summarizeText sends the text artifact through the summarizer and stores
// the result. Text below the configured minimum is skipped.
func (p *Pipeline) summarizeText(ctx context.Context, sessionID, articleID, key string) error {
	data, err := p.deps.Store.Get(ctx, storage.RoleText, key)
	if err != nil {
		p.recorder.Error(logs.StageSummarize, "Text read failed", "key", key, "error", err.Error())
		return fmt.Errorf("read %s: %w", key, err)
	}

	text := string(data)
	if len(text) < p.cfg.Inference.MinSummaryChars {
		p.recorder.Info(logs.StageSummarize, "Text below summary minimum",
			"session_id", sessionID,
			"article_id", articleID,
			"chars", len(text),
		)
		return nil
	}

	summary, err := p.deps.Inference.Summarize(ctx, clip(text, p.cfg.Inference.MaxSummaryChars))
	if err != nil {
		p.recorder.Error(logs.StageSummarize, "Summarization failed",
			"session_id", sessionID,
			"article_id", articleID,
			"error", err.Error(),
		)
		return fmt.Errorf("summarize %s: %w", articleID, err)
	}

	if err := p.putSummary(ctx, domain.Summary{
		ArticleID: articleID,
		SessionID: sessionID,
		Kind:      domain.SummaryKindText,
		Summary:   summary,
		CreatedAt: time.Now().UTC(),
	}, storage.ArtifactTextSummary); err != nil {
		return err
	}

	p.recorder.Info(logs.StageSummarize, "Text summary stored",
		"session_id", sessionID,
		"article_id", articleID,
	)
	return nil
}

// captionImage captions the article's stored image when one exists.
func (p *Pipeline) captionImage(ctx context.Context, sessionID, articleID string) error {
	imageKey := storage.Key(sessionID, articleID, storage.ArtifactImage)
	exists, err := p.deps.Store.Exists(ctx, storage.RoleRaw, imageKey)
	if err != nil {
		return fmt.Errorf("check image %s: %w", imageKey, err)
	}
	if !exists {
		return nil
	}

	img, err := p.deps.Store.Get(ctx, storage.RoleRaw, imageKey)
	if err != nil {
		p.recorder.Error(logs.StageSummarize, "Image read failed", "key", imageKey, "error", err.Error())
		return fmt.Errorf("read %s: %w", imageKey, err)
	}

	caption, err := p.deps.Inference.Caption(ctx, img)
	if err != nil {
		p.recorder.Error(logs.StageSummarize, "Captioning failed",
			"session_id", sessionID,
			"article_id", articleID,
			"error", err.Error(),
		)
		return fmt.Errorf("caption %s: %w", articleID, err)
	}

	if err := p.putSummary(ctx, domain.Summary{
		ArticleID: articleID,
		SessionID: sessionID,
		Kind:      domain.SummaryKindImage,
		Summary:   caption,
		CreatedAt: time.Now().UTC(),
	}, storage.ArtifactImageSummary); err != nil {
		return err
	}

	p.recorder.Info(logs.StageSummarize, "Image caption stored",
		"session_id", sessionID,
		"article_id", articleID,
	)
	return nil
}

// putSummary marshals and stores one summary record.
func (p *Pipeline) putSummary(ctx context.Context, record domain.Summary, artifact string) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal summary %s: %w", record.ArticleID, err)
	}
	key := storage.Key(record.SessionID, record.ArticleID, artifact)
	if err := p.deps.Store.Put(ctx, storage.RoleSummary, key, data, storage.ContentTypeJSON); err != nil {
		p.recorder.Error(logs.StageSummarize, "Summary write failed", "key", key, "error", err.Error())
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// clip truncates s to at most limit bytes without splitting a rune.
func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
