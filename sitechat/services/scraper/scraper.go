// Package scraper turns a URL into the flat page text the chat is grounded on.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sitechat/sitechat/utils/logging"

	"github.com/PuerkitoBio/goquery"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/textsplitter"
	"go.uber.org/zap"
)

// ErrorPrefix starts the text stored in place of page content when a fetch fails.
const ErrorPrefix = "Error loading content from the URL: "

// ErrNoText is the fetch error for pages that load but hold no readable text.
var ErrNoText = errors.New("the page has no readable text")

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

// Cache stores extracted text per URL.
type Cache interface {
	Lookup(ctx context.Context, url string) (title, text string, ok bool, err error)
	Store(ctx context.Context, url, title, text string) error
}

// Result is the outcome of Fetch. Text is always usable as page content: on
// failure it holds the ErrorPrefix message and Err holds the cause.
type Result struct {
	URL    string
	Title  string
	Text   string
	Cached bool
	Err    error
}

func (r Result) Failed() bool {
	return r.Err != nil
}

type Scraper struct {
	loader   Loader
	splitter textsplitter.TextSplitter
	cache    Cache
}

type Option func(*Scraper)

func WithCache(c Cache) Option {
	return func(s *Scraper) {
		s.cache = c
	}
}

func NewScraper(loader Loader, chunkSize, chunkOverlap int, opts ...Option) *Scraper {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = DefaultChunkOverlap
	}
	s := &Scraper{
		loader: loader,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch never fails outward; see Result.
func (s *Scraper) Fetch(ctx context.Context, targetURL string) Result {
	defer logging.LogDuration(ctx, "scraper_fetch")()

	if s.cache != nil {
		title, text, ok, err := s.cache.Lookup(ctx, targetURL)
		if err != nil {
			logging.AppLogger.Warn("scrape cache lookup failed", zap.String("url", targetURL), zap.Error(err))
		}
		if ok {
			return Result{URL: targetURL, Title: title, Text: text, Cached: true}
		}
	}

	title, text, err := s.extract(ctx, targetURL)
	if err != nil {
		logging.ErrorLogger.Error("content fetch failed", zap.String("url", targetURL), zap.Error(err))
		return Result{URL: targetURL, Text: ErrorPrefix + err.Error(), Err: err}
	}

	if s.cache != nil {
		if err := s.cache.Store(ctx, targetURL, title, text); err != nil {
			logging.AppLogger.Warn("scrape cache store failed", zap.String("url", targetURL), zap.Error(err))
		}
	}
	logging.AppLogger.Info("content fetched",
		zap.String("url", targetURL),
		zap.Int("chars", len(text)),
	)
	return Result{URL: targetURL, Title: title, Text: text}
}

func (s *Scraper) extract(ctx context.Context, targetURL string) (title, text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	raw, err := s.loader.Load(ctx, targetURL)
	if err != nil {
		return "", "", err
	}
	title, cleaned, err := cleanHTML(raw)
	if err != nil {
		return "", "", err
	}

	docs, err := documentloaders.NewHTML(strings.NewReader(cleaned)).LoadAndSplit(ctx, s.splitter)
	if err != nil {
		return "", "", err
	}
	chunks := make([]string, 0, len(docs))
	for _, d := range docs {
		chunks = append(chunks, d.PageContent)
	}
	text = strings.Join(chunks, "\n")
	if strings.TrimSpace(text) == "" {
		return "", "", ErrNoText
	}
	return title, text, nil
}

// cleanHTML drops nodes that never hold readable text and pulls out the title.
func cleanHTML(raw string) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", "", err
	}
	title := strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
	doc.Find("script, style, noscript, template, svg").Remove()
	cleaned, err := doc.Html()
	if err != nil {
		return "", "", err
	}
	return title, cleaned, nil
}
