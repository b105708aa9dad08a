package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendersight/tender-cli/internal/config"
)

func TestNewExtractor_Local(t *testing.T) {
	ext, err := NewExtractor(config.IngestConfig{OCRProvider: "local", PdfToTextPath: "/usr/bin/pdftotext"})
	require.NoError(t, err)
	assert.IsType(t, &PdfToText{}, ext)
}

func TestNewExtractor_DefaultProvider(t *testing.T) {
	ext, err := NewExtractor(config.IngestConfig{})
	require.NoError(t, err)
	assert.IsType(t, &PdfToText{}, ext)
}

func TestNewExtractor_UnknownProvider(t *testing.T) {
	_, err := NewExtractor(config.IngestConfig{OCRProvider: "cloudocr"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown ocr provider "cloudocr"`)
}

func TestPdfToText_BinPath(t *testing.T) {
	p := NewPdfToText("")
	assert.Equal(t, "pdftotext", p.binPath)

	p = NewPdfToText("/custom/pdftotext")
	assert.Equal(t, "/custom/pdftotext", p.binPath)
}

func TestPdfToText_ExtractText_BinaryNotFound(t *testing.T) {
	p := NewPdfToText("/nonexistent/pdftotext")
	_, err := p.ExtractText(context.Background(), "/tmp/test.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext failed")
}

func TestPdfToText_ExtractText_Success(t *testing.T) {
	// Fake pdftotext that echoes fixed content
	tmpDir := t.TempDir()
	fakeBin := filepath.Join(tmpDir, "pdftotext")
	script := "#!/bin/sh\necho 'Bid End Date: 15-09-2025'\n"
	require.NoError(t, os.WriteFile(fakeBin, []byte(script), 0755))

	p := NewPdfToText(fakeBin)
	text, err := p.ExtractText(context.Background(), "/tmp/dummy.pdf")
	require.NoError(t, err)
	assert.Contains(t, text, "Bid End Date: 15-09-2025")
}

func TestDiscoverRefs(t *testing.T) {
	text := `See the detailed BOQ at https://gem.gov.in/docs/boq_12345.pdf and the
ATC annexure at https://gem.gov.in/docs/atc_12345.PDF.
The same BOQ link appears twice: https://gem.gov.in/docs/boq_12345.pdf
Portal home: https://gem.gov.in/ (not a document).`

	refs := DiscoverRefs(text)
	require.Len(t, refs, 2)
	assert.Equal(t, "https://gem.gov.in/docs/boq_12345.pdf", refs[0])
	assert.Equal(t, "https://gem.gov.in/docs/atc_12345.PDF", refs[1])
}

func TestDiscoverRefs_None(t *testing.T) {
	assert.Empty(t, DiscoverRefs("plain tender text without links"))
}

func TestLoader_LoadTextFiles(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "notice.txt")
	p2 := filepath.Join(dir, "atc.txt")
	require.NoError(t, os.WriteFile(p1, []byte("tender notice body"), 0644))
	require.NoError(t, os.WriteFile(p2, []byte("additional terms"), 0644))

	l := NewLoader(nil, nil)
	docs, err := l.Load(context.Background(), []string{p1, p2})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "notice.txt", docs[0].Name)
	assert.Equal(t, "tender notice body", docs[0].Text)
	assert.Equal(t, "atc.txt", docs[1].Name)
}

func TestLoader_NoFiles(t *testing.T) {
	l := NewLoader(nil, nil)
	_, err := l.Load(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input files")
}

func TestLoader_PDFWithoutExtractor(t *testing.T) {
	l := NewLoader(nil, nil)
	_, err := l.Load(context.Background(), []string{"/tmp/bid.pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no PDF extractor")
}

func TestLoader_FetchesFirstDocumentRefs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("linked corrigendum body"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	p1 := filepath.Join(dir, "notice.txt")
	p2 := filepath.Join(dir, "second.txt")
	require.NoError(t, os.WriteFile(p1,
		[]byte("see corrigendum at "+srv.URL+"/docs/corrigendum.pdf"), 0644))
	// Refs in later files must be ignored.
	require.NoError(t, os.WriteFile(p2,
		[]byte("ignored link "+srv.URL+"/docs/other.pdf"), 0644))

	l := NewLoader(nil, NewRefFetcher(nil, time.Second))
	docs, err := l.Load(context.Background(), []string{p1, p2})
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "corrigendum.pdf", docs[2].Name)
	assert.Equal(t, "linked corrigendum body", docs[2].Text)
}

func TestRefFetcher_SkipsFailedRefs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/good.pdf" {
			_, _ = w.Write([]byte("good content"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewRefFetcher(nil, time.Second)
	docs := f.FetchAll(context.Background(), []string{
		srv.URL + "/missing.pdf",
		srv.URL + "/good.pdf",
	})
	require.Len(t, docs, 1)
	assert.Equal(t, "good.pdf", docs[0].Name)
	assert.Equal(t, "good content", docs[0].Text)
}

func TestRefFetcher_ExtractsPDFBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 fake body"))
	}))
	defer srv.Close()

	tmpDir := t.TempDir()
	fakeBin := filepath.Join(tmpDir, "pdftotext")
	script := "#!/bin/sh\necho 'extracted pdf text'\n"
	require.NoError(t, os.WriteFile(fakeBin, []byte(script), 0755))

	f := NewRefFetcher(NewPdfToText(fakeBin), time.Second)
	docs := f.FetchAll(context.Background(), []string{srv.URL + "/boq.pdf"})
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Text, "extracted pdf text")
}

func TestRefFetcher_PDFWithoutExtractorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("%PDF-1.4 body"))
	}))
	defer srv.Close()

	f := NewRefFetcher(nil, time.Second)
	docs := f.FetchAll(context.Background(), []string{srv.URL + "/boq.pdf"})
	assert.Empty(t, docs)
}
