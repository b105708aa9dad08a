package ingest

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/tendersight/tender-cli/internal/model"
	"github.com/tendersight/tender-cli/internal/resilience"
)

// maxRefBytes caps the size of a fetched reference document.
const maxRefBytes = 25 << 20

// RefFetcher retrieves externally referenced tender documents over HTTP.
type RefFetcher struct {
	client    *http.Client
	extractor Extractor
}

// NewRefFetcher builds a fetcher with the given request timeout. PDFs in
// the responses are run through extractor.
func NewRefFetcher(extractor Extractor, timeout time.Duration) *RefFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RefFetcher{
		client:    &http.Client{Timeout: timeout},
		extractor: extractor,
	}
}

// FetchAll retrieves every reference it can. A failing reference is logged
// and skipped; linked attachments are best-effort supplements, never a
// reason to abort the run.
func (f *RefFetcher) FetchAll(ctx context.Context, refs []string) []model.Document {
	var docs []model.Document
	for _, ref := range refs {
		doc, err := f.fetchOne(ctx, ref)
		if err != nil {
			zap.L().Warn("ingest: reference fetch failed",
				zap.String("url", ref),
				zap.Error(err),
			)
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

func (f *RefFetcher) fetchOne(ctx context.Context, ref string) (model.Document, error) {
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = 3
	cfg.OnRetry = resilience.RetryLogger("ingest", "fetch_ref")

	res, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (fetchResult, error) {
		return f.get(ctx, ref)
	})
	if err != nil {
		return model.Document{}, err
	}

	name := refName(ref)
	text := string(res.data)
	if res.isPDF() {
		text, err = f.extractPDF(ctx, name, res.data)
		if err != nil {
			return model.Document{}, err
		}
	}

	return model.Document{Name: name, Text: text}, nil
}

type fetchResult struct {
	data        []byte
	contentType string
}

func (r fetchResult) isPDF() bool {
	if strings.Contains(r.contentType, "application/pdf") {
		return true
	}
	return len(r.data) >= 4 && string(r.data[:4]) == "%PDF"
}

func (f *RefFetcher) get(ctx context.Context, ref string) (fetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return fetchResult{}, eris.Wrapf(err, "ingest: build request for %s", ref)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fetchResult{}, resilience.NewTransientError(err, 0)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("ingest: fetch %s: status %d", ref, resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return fetchResult{}, resilience.NewTransientError(err, resp.StatusCode)
		}
		return fetchResult{}, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRefBytes))
	if err != nil {
		return fetchResult{}, resilience.NewTransientError(err, 0)
	}
	return fetchResult{data: data, contentType: resp.Header.Get("Content-Type")}, nil
}

// extractPDF spools the bytes to a temp file for the pdftotext-style
// extractor, which works on paths.
func (f *RefFetcher) extractPDF(ctx context.Context, name string, data []byte) (string, error) {
	if f.extractor == nil {
		return "", eris.Errorf("ingest: no PDF extractor for fetched reference %s", name)
	}

	tmp, err := os.CreateTemp("", "tender-ref-*.pdf")
	if err != nil {
		return "", eris.Wrap(err, "ingest: temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", eris.Wrap(err, "ingest: write temp file")
	}
	if err := tmp.Close(); err != nil {
		return "", eris.Wrap(err, "ingest: close temp file")
	}

	return f.extractor.ExtractText(ctx, tmp.Name())
}

// refName derives a document name from the reference URL.
func refName(ref string) string {
	u, err := url.Parse(ref)
	if err != nil || path.Base(u.Path) == "/" || path.Base(u.Path) == "." {
		return ref
	}
	return path.Base(u.Path)
}
