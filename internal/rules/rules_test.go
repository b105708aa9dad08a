package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTender = `Tender No: ABC/2024/0042
EMD: Rs. 50,000
Tender Fee: Rs. 1,180
Bid Submission End Date: 15/02/2024 15:00
Bid Submission Start Date: 01/02/2024 10:00
Bid Offer Validity: 90
Annual Turnover: Rs. 25,00,000 Lakhs
Experience of 3 years in similar works
2 similar projects completed
MSMEs are exempted from EMD
`

func TestExtractStructuredFields_Generic(t *testing.T) {
	f := ExtractStructuredFields(sampleTender)

	assert.Equal(t, "ABC/2024/0042", f["tender_id"])
	assert.Equal(t, "₹50,000", f["emd"])
	assert.Equal(t, "₹1,180", f["tender_fee"])
	assert.Equal(t, "15/02/2024 15:00", f["bid_end"])
	assert.Equal(t, "01/02/2024 10:00", f["bid_start"])
	assert.Equal(t, "90 days", f["bid_validity"])
	assert.Equal(t, "3 years / 2 projects", f["experience_required"])
	assert.Equal(t, "Yes", f["msme_exemption"])
}

func TestExtractStructuredFields_RejectsDateAsTenderID(t *testing.T) {
	f := ExtractStructuredFields("Tender No: 15/02/2024\n")
	_, ok := f["tender_id"]
	assert.False(t, ok)
}

func TestExtractStructuredFields_GeMTenderID(t *testing.T) {
	f := ExtractStructuredFields("Bid Number GEM/2024/B/12345 issued\n")
	assert.Equal(t, "GEM/2024/B/12345", f["tender_id"])
}

func TestExtractCriticalSections(t *testing.T) {
	text := `1. Introduction
Some intro text.
Eligibility Criteria
Bidders must have 3 years experience.
Minimum turnover of 25 Lakhs.
2. Financial Requirements
EMD of Rs 50,000 applies.
`
	sections := ExtractCriticalSections(text)
	require.Contains(t, sections, SectionEligibility)
	assert.Contains(t, sections[SectionEligibility], "3 years experience")
}

func TestExtractGeMFields_PreQualificationTable(t *testing.T) {
	text := `Item Category: Desktop Computers
Total Quantity: 120
Two Packet Bid
ePBG: 5%
Minimum Average Annual Turnover of the bidder (For 3 Years)
25,00,000 Lakh (s)
OEM Average Turnover (Last 3 Years)
50,00,000 Lakh (s)
Years of Past Experience Required for same/similar service
3 Year (s)
MSE Relaxation for Years of Experience and Turnover
Yes | Complete
Document required from seller
Experience Certificate, OEM Authorization, PAN Card
* Terms apply
`
	f := ExtractGeMFields(text)
	assert.Equal(t, "Desktop Computers", f["item_category"])
	assert.Equal(t, "120", f["total_quantity"])
	assert.Equal(t, "Two Packet Bid", f["type_of_bid"])
	assert.Equal(t, "Percentage: 5%", f["epbg_details"])
	assert.Equal(t, "₹25,00,000 Lakh(s)", f["turnover_requirement"])
	assert.Equal(t, "₹50,00,000 Lakh(s)", f["oem_turnover_requirement"])
	assert.Equal(t, "3 Year(s)", f["experience_required"])
	assert.Equal(t, "Yes | Complete", f["mse_relaxation"])

	docs, ok := f["documents_required"].([]string)
	require.True(t, ok)
	assert.Contains(t, docs, "OEM Authorization")
}

func TestExtractCPPPFields(t *testing.T) {
	text := `Date & Time of Issue: 01-02-2024 10:00
Due Date & Time of Submission: 20-02-2024 15:00
Envelope 1 - Technical Bid
- Signed tender document
- Experience certificates
1. EMD receipt
Envelope 2 - Financial Bid
- BOQ sheet
Digital Signature Certificate: Class III required
Bids may be rejected without assigning reason.
Splitting of Work among qualified bidders is reserved.
`
	f := ExtractCPPPFields(text)
	assert.Equal(t, "01-02-2024 10:00", f["date_and_time_of_issue"])
	assert.Equal(t, "20-02-2024 15:00", f["due_date_and_time_of_submission"])
	assert.Equal(t, "Yes", f["rejection_of_bid"])
	assert.Equal(t, "Yes", f["splitting_of_work"])
	assert.Contains(t, f["bidder_technical_infrastructure"], "Class III")

	online, ok := f["online_submission_documents"].([]string)
	require.True(t, ok)
	assert.Contains(t, online, "Signed tender document")
	assert.Contains(t, online, "EMD receipt")
}

func TestPortals_TableLoads(t *testing.T) {
	table := Portals()
	assert.Equal(t, 2, table.Threshold)
	require.Contains(t, table.Portals, "GeM")
	require.Contains(t, table.Portals, "CPPP")
	assert.NotEmpty(t, table.Portals["GeM"])
}

func TestPortalFields_GeMOverlaysGeneric(t *testing.T) {
	text := sampleTender + "\nItem Category: Laptops\n"
	f := PortalFields("GeM", text)
	assert.Equal(t, "GeM", f["portal"])
	assert.Equal(t, "Laptops", f["item_category"])
	assert.Equal(t, "₹50,000", f["emd"])
}

func TestPortalFields_GenericHasNoPortalKey(t *testing.T) {
	f := PortalFields("Generic", sampleTender)
	_, ok := f["portal"]
	assert.False(t, ok)
}
