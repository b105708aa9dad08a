package ingest

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/tendersight/tender-cli/internal/model"
)

// refPattern finds links to further tender documents (corrigenda, BOQ
// sheets, ATC annexures) embedded in a notice.
var refPattern = regexp.MustCompile(`https?://[^\s"'<>)\]]+\.(?i:pdf)`)

// Loader decodes input files into pipeline documents.
type Loader struct {
	extractor Extractor
	fetcher   *RefFetcher
}

// NewLoader builds a Loader. fetcher may be nil, which disables external
// reference retrieval.
func NewLoader(extractor Extractor, fetcher *RefFetcher) *Loader {
	return &Loader{extractor: extractor, fetcher: fetcher}
}

// Load decodes every input path into a document. PDFs go through the
// extractor; anything else is read as text. Document references found in
// the first file are fetched and appended as additional documents — later
// files are assumed to already be the linked attachments.
func (l *Loader) Load(ctx context.Context, paths []string) ([]model.Document, error) {
	if len(paths) == 0 {
		return nil, eris.New("ingest: no input files")
	}

	docs := make([]model.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := l.loadOne(ctx, path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if l.fetcher != nil && len(docs[0].Refs) > 0 {
		fetched := l.fetcher.FetchAll(ctx, docs[0].Refs)
		docs = append(docs, fetched...)
	}

	return docs, nil
}

func (l *Loader) loadOne(ctx context.Context, path string) (model.Document, error) {
	var text string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		if l.extractor == nil {
			return model.Document{}, eris.Errorf("ingest: no PDF extractor configured for %s", path)
		}
		out, err := l.extractor.ExtractText(ctx, path)
		if err != nil {
			return model.Document{}, err
		}
		text = out
	default:
		raw, err := os.ReadFile(path)
		if err != nil {
			return model.Document{}, eris.Wrapf(err, "ingest: read %s", path)
		}
		text = string(raw)
	}

	doc := model.Document{
		Name: filepath.Base(path),
		Text: text,
		Refs: DiscoverRefs(text),
	}
	zap.L().Debug("ingest: loaded document",
		zap.String("file", doc.Name),
		zap.Int("chars", len(doc.Text)),
		zap.Int("refs", len(doc.Refs)),
	)
	return doc, nil
}

// DiscoverRefs returns the distinct external document links found in text,
// in first-appearance order.
func DiscoverRefs(text string) []string {
	var refs []string
	seen := make(map[string]struct{})
	for _, m := range refPattern.FindAllString(text, -1) {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		refs = append(refs, m)
	}
	return refs
}
