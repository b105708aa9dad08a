package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tendersight/tender-cli/internal/model"
)

func docsFrom(texts ...string) []model.Document {
	docs := make([]model.Document, len(texts))
	for i, t := range texts {
		docs[i] = model.Document{Name: "doc", Text: t}
	}
	return docs
}

func TestClassify_GeM(t *testing.T) {
	c := Classify(docsFrom(
		"Bid Document downloaded from the Government e-Marketplace. " +
			"ePBG Detail: required. See https://gem.gov.in for details.",
	))
	assert.Equal(t, model.PortalGeM, c.Portal)
	assert.GreaterOrEqual(t, c.Scores[model.PortalGeM], 2)
}

func TestClassify_CPPP(t *testing.T) {
	c := Classify(docsFrom(
		"NOTICE INVITING TENDER published on the Central Public Procurement Portal " +
			"(https://eprocure.gov.in). NIT No: ABC/2025/17. Envelope 1: Technical Bid.",
	))
	assert.Equal(t, model.PortalCPPP, c.Portal)
}

func TestClassify_GenericWhenNoSignals(t *testing.T) {
	c := Classify(docsFrom("Request for proposal for office furniture supply."))
	assert.Equal(t, model.PortalGeneric, c.Portal)
}

func TestClassify_GenericBelowThreshold(t *testing.T) {
	// A single weight-1 indicator is below the decision threshold.
	c := Classify(docsFrom("The e-procurement process will follow standard rules."))
	assert.Equal(t, model.PortalGeneric, c.Portal)
}

func TestClassify_CaseInsensitive(t *testing.T) {
	c := Classify(docsFrom("GOVERNMENT E-MARKETPLACE BID DOCUMENT, GEM PORTAL"))
	assert.Equal(t, model.PortalGeM, c.Portal)
}

func TestClassify_ScoresFullText(t *testing.T) {
	// Indicators buried deep in a boilerplate-first bundle still count.
	padding := strings.Repeat("lorem ipsum filler text ", 2000)
	c := Classify(docsFrom(padding + " Government e-Marketplace gem.gov.in"))
	assert.Equal(t, model.PortalGeM, c.Portal)
}
