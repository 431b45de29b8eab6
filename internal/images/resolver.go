// Package images resolves one representative image per article. Candidate
// producers run as a cascade (page metadata, then the readability lead
// image, then a bounded scan of content images); every candidate is fetched
// and validated, the best validated candidate wins on a weighted quality
// score, and the winner is re-encoded to JPEG so stored images are uniform.
package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/CyborPunk-2077/article-scraper/internal/config"
	"github.com/CyborPunk-2077/article-scraper/internal/domain"
	"github.com/CyborPunk-2077/article-scraper/internal/logger"
)

// Producer strategy names, in cascade order.
const (
	StrategyMeta        = "meta"
	StrategyReadability = "readability"
	StrategyDOMScan     = "dom-scan"
)

// Scoring weights. Resolution dominates so a large image from a weak
// strategy can outrank a small one from a strong strategy.
const (
	weightArea     = 0.6
	weightStrategy = 0.25
	weightAspect   = 0.15

	// areaCap is the pixel area past which resolution stops adding score
	areaCap = 1920 * 1080

	// offAspectScore is the aspect component for ratios outside the
	// preferred range
	offAspectScore = 0.3
)

// strategyPriority orders producers for the score's strategy component.
var strategyPriority = map[string]float64{
	StrategyMeta:        1.0,
	StrategyReadability: 0.75,
	StrategyDOMScan:     0.5,
}

// Candidate is one image URL produced by a strategy, before validation.
type Candidate struct {
	URL      string
	Strategy string
}

// validated is a candidate that fetched and decoded successfully.
type validated struct {
	Candidate
	img      image.Image
	width    int
	height   int
	byteSize int
	score    float64
}

// Resolver runs the candidate cascade for one article page.
type Resolver struct {
	cfg    config.ImagesConfig
	client *http.Client
	log    logger.Interface
}

// New creates a resolver. The HTTP client carries the configured fetch
// timeout; everything else is per-call.
func New(cfg config.ImagesConfig, log logger.Interface) *Resolver {
	return &Resolver{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.FetchTimeout},
		log:    log.WithComponent("images"),
	}
}

// Resolve finds the best image for the page. leadImage is the readability
// hint from extraction, empty when that pass found none. A stage's
// candidates are only consulted when every earlier stage validated zero
// candidates. The returned record carries normalized JPEG bytes; when no
// candidate validates the error wraps ErrImageUnresolved.
func (r *Resolver) Resolve(ctx context.Context, pageURL *url.URL, doc *goquery.Document, leadImage string) (*domain.ImageRef, []byte, error) {
	stages := [][]Candidate{
		metaCandidates(doc, pageURL),
		readabilityCandidates(leadImage, pageURL),
		r.domScanCandidates(doc, pageURL),
	}

	for _, candidates := range stages {
		winner := r.pickBest(ctx, candidates)
		if winner == nil {
			continue
		}

		data, err := r.encodeJPEG(winner.img)
		if err != nil {
			r.log.Warn("winner re-encode failed", "url", winner.URL, "error", err)
			continue
		}

		return &domain.ImageRef{
			SourceURL: winner.URL,
			Strategy:  winner.Strategy,
			Width:     winner.width,
			Height:    winner.height,
			ByteSize:  winner.byteSize,
			Score:     winner.score,
		}, data, nil
	}

	return nil, nil, fmt.Errorf("resolve image for %s: %w", pageURL.String(), domain.ErrImageUnresolved)
}

// pickBest validates every candidate in the stage and returns the highest
// scoring one, nil when none validate.
func (r *Resolver) pickBest(ctx context.Context, candidates []Candidate) *validated {
	var best *validated
	for _, c := range candidates {
		v, err := r.validate(ctx, c)
		if err != nil {
			r.log.Debug("candidate rejected", "url", c.URL, "strategy", c.Strategy, "error", err)
			continue
		}

		v.score = r.score(v.width, v.height, v.Strategy)
		if best == nil || v.score > best.score {
			best = v
		}
	}
	return best
}

// score is the weighted sum of capped pixel area, strategy priority and
// aspect-ratio closeness to the preferred range.
func (r *Resolver) score(width, height int, strategy string) float64 {
	area := float64(width * height)
	areaScore := area / float64(areaCap)
	if areaScore > 1 {
		areaScore = 1
	}

	aspectScore := offAspectScore
	if height > 0 {
		aspect := float64(width) / float64(height)
		if aspect >= r.cfg.MinAspect && aspect <= r.cfg.MaxAspect {
			aspectScore = 1
		}
	}

	return weightArea*areaScore +
		weightStrategy*strategyPriority[strategy] +
		weightAspect*aspectScore
}

// encodeJPEG re-encodes the decoded winner at the configured quality.
// Already-JPEG winners go through the same path so output is uniform.
func (r *Resolver) encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: r.cfg.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
