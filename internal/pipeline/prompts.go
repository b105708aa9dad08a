package pipeline

import "github.com/tendersight/tender-cli/internal/model"

const microSummaryPrompt = `You are a tender analyst. Summarize the following document chunk.
Focus on: Eligibility, Financials, Dates, Scope of Work, and Specific Clauses.
Keep it dense and structured.

CHUNK:
%s
`

const finalMergePrompt = `You are a tender analyst. Below are micro-summaries of various parts of a tender document along with some pre-extracted structured fields.
Your task is to create a SINGLE, COMPLETE, and ACCURATE JSON summary following the EXACT schema provided.

%s

OUTPUT SCHEMA:
%s

DIRECTIONS:
1. Merge all information into a single coherent summary.
2. If there are conflicting values, prefer the most recent or specific one.
3. If information is missing, use empty strings/lists as per schema.
4. Output ONLY valid JSON.
`

const singlePassPrompt = `You are a tender analyst for %s documents. Analyze the tender context below and produce a SINGLE, COMPLETE JSON summary following the EXACT schema provided.

OUTPUT SCHEMA:
%s

PRE-EXTRACTED DATA (high confidence, prefer these values):
%s

TENDER CONTEXT:
%s

DIRECTIONS:
1. Fill every field you can support from the context.
2. If there are conflicting values, prefer the most recent or specific one.
3. If information is missing, use empty strings/lists as per schema.
4. Output ONLY valid JSON.
`

const gapFillPrompt = `You are a tender analyst. We have some missing fields from a previous extraction pass.
Please search the document text below and extract EXACT values for these specific paths.

MISSING FIELDS:
%s

DOCUMENT CONTEXT (Truncated):
%s

INSTRUCTIONS:
1. Search specifically for these fields by path.
2. If found, provide the exact corresponding value.
3. If still not found, use "Not mentioned".
4. Output valid JSON matching the path structure.
`

// portalLabel names the prompt variant for the single-pass call. The
// schema is shared; the label nudges the capability toward portal-specific
// vocabulary (ePBG, envelopes, ATC clauses).
func portalLabel(portal string) string {
	switch portal {
	case model.PortalGeM:
		return "GeM (Government e-Marketplace)"
	case model.PortalCPPP:
		return "CPPP (Central Public Procurement Portal)"
	default:
		return "procurement"
	}
}
