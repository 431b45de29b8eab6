package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/CyborPunk-2077/article-scraper/internal/domain"
	"github.com/CyborPunk-2077/article-scraper/internal/logs"
	"github.com/CyborPunk-2077/article-scraper/internal/session"
	"github.com/CyborPunk-2077/article-scraper/internal/storage"
)

// ConvertToText renders every stored article record of the session into the
// plain-text layout the summarizer consumes and writes it as a text-role
// artifact. Per-record failures are counted and logged but never abort the
// stage. It blocks until the stage finishes.
func (p *Pipeline) ConvertToText(ctx context.Context, sessionID string) error {
	sess, keys, err := p.stageInputs(ctx, sessionID, storage.RoleRaw, storage.ArtifactArticle)
	if err != nil {
		return err
	}
	if !sess.BeginConvert() {
		return fmt.Errorf("convert session %q: %w", sessionID, domain.ErrStageInProgress)
	}
	return p.runConvert(ctx, sess, keys)
}

// StartConvert checks the stage preconditions synchronously, then runs the
// conversion in the background.
func (p *Pipeline) StartConvert(ctx context.Context, sessionID string) error {
	sess, keys, err := p.stageInputs(ctx, sessionID, storage.RoleRaw, storage.ArtifactArticle)
	if err != nil {
		return err
	}
	if !sess.BeginConvert() {
		return fmt.Errorf("convert session %q: %w", sessionID, domain.ErrStageInProgress)
	}

	// The stage outlives the request that triggered it.
	go func() {
		if err := p.runConvert(context.Background(), sess, keys); err != nil {
			p.log.Error("Convert stage failed", "session_id", sessionID, "error", err)
		}
	}()
	return nil
}

func (p *Pipeline) runConvert(ctx context.Context, sess *session.Session, keys []string) error {
	p.recorder.Info(logs.StageConvert, "Conversion started",
		"session_id", sess.ID(),
		"records", len(keys),
	)

	processed, failed, err := p.runStage(ctx, p.cfg.Stages.ConvertWorkers, keys, func(taskCtx context.Context, key string) error {
		return p.convertOne(taskCtx, sess.ID(), key)
	})
	sess.FinishConvert(processed, failed, err)

	if err != nil {
		p.recorder.Error(logs.StageConvert, "Conversion failed",
			"session_id", sess.ID(),
			"error", err.Error(),
		)
		return err
	}
	p.recorder.Info(logs.StageConvert, "Conversion finished",
		"session_id", sess.ID(),
		"converted", processed,
		"failed", failed,
	)
	return nil
}

// convertOne reads one article record and writes its text artifact under
// the same session/article prefix.
func (p *Pipeline) convertOne(ctx context.Context, sessionID, key string) error {
	data, err := p.deps.Store.Get(ctx, storage.RoleRaw, key)
	if err != nil {
		p.recorder.Error(logs.StageConvert, "Record read failed", "key", key, "error", err.Error())
		return fmt.Errorf("read %s: %w", key, err)
	}

	var article domain.Article
	if err := json.Unmarshal(data, &article); err != nil {
		p.recorder.Error(logs.StageConvert, "Record decode failed", "key", key, "error", err.Error())
		return fmt.Errorf("decode %s: %w", key, err)
	}
	if strings.TrimSpace(article.Body) == "" {
		p.recorder.Warn(logs.StageConvert, "Record has no body text", "key", key)
		return fmt.Errorf("article %s has no body text", article.ID)
	}

	textKey := strings.TrimSuffix(key, storage.ArtifactArticle) + storage.ArtifactText
	if err := p.deps.Store.Put(ctx, storage.RoleText, textKey, []byte(renderText(&article)), storage.ContentTypeText); err != nil {
		p.recorder.Error(logs.StageConvert, "Text write failed", "key", textKey, "error", err.Error())
		return fmt.Errorf("write %s: %w", textKey, err)
	}

	p.recorder.Info(logs.StageConvert, "Record converted",
		"session_id", sessionID,
		"article_id", article.ID,
	)
	return nil
}

// renderText flattens an article record into the Title/Author/Date/Content
// plain-text layout.
func renderText(a *domain.Article) string {
	title := a.Title
	if title == "" {
		title = "No Title"
	}
	author := a.Author
	if author == "" {
		author = "Unknown"
	}
	date := a.PublishedRaw
	if !a.PublishedAt.IsZero() {
		date = a.PublishedAt.Format("2006-01-02")
	}
	if date == "" {
		date = "Unknown"
	}

	var b strings.Builder
	b.WriteString("Title: " + title + "\n")
	b.WriteString("Author: " + author + "\n")
	b.WriteString("Date: " + date + "\n\n")
	b.WriteString("Content:\n")
	b.WriteString(a.Body)
	return b.String()
}
