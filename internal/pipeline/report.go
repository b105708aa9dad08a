package pipeline

import (
	"fmt"

	"github.com/tendersight/tender-cli/internal/model"
)

// Per-portal required paths. GeM and CPPP publish these on every notice,
// so their absence after extraction and refill is a hard validation
// failure. Recommended paths only produce warnings.
var (
	gemRequiredPaths = []string{
		"tender_meta.tender_id",
		"tender_meta.boq_title",
		"tender_meta.item_category",
		"key_dates.bid_end",
		"financial_requirements.emd",
	}
	gemRecommendedPaths = []string{
		"tender_meta.total_quantity",
		"tender_meta.type_of_bid",
		"financial_requirements.epbg_details",
		"eligibility_snapshot.turnover_requirement",
		"pre_qualification_requirement",
	}

	cpppRequiredPaths = []string{
		"tender_meta.tender_id",
		"tender_meta.issuing_authority",
		"key_dates.bid_end",
		"key_dates.due_date_and_time_of_submission",
	}
	cpppRecommendedPaths = []string{
		"key_dates.date_and_time_of_issue",
		"financial_requirements.emd",
		"financial_requirements.tender_fee",
		"documents_required.online_submission_documents",
	}

	genericRequiredPaths = []string{
		"tender_meta.tender_id",
		"key_dates.bid_end",
	}
	genericRecommendedPaths = []string{
		"financial_requirements.emd",
		"eligibility_snapshot.turnover_requirement",
		"scope_of_work.description",
	}
)

// Validate checks the cleaned record against the portal's required-field
// table. IsValid means every required path holds a non-empty value.
func Validate(record model.Record, portal string) model.ValidationSummary {
	required, recommended := validationPaths(portal)

	summary := model.ValidationSummary{IsValid: true}
	for _, path := range required {
		if isPathEmpty(record, path) {
			summary.IsValid = false
			summary.MissingFields = append(summary.MissingFields, path)
		}
	}
	for _, path := range recommended {
		if isPathEmpty(record, path) {
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("recommended field %s is empty", path))
		}
	}
	return summary
}

func validationPaths(portal string) (required, recommended []string) {
	switch portal {
	case model.PortalGeM:
		return gemRequiredPaths, gemRecommendedPaths
	case model.PortalCPPP:
		return cpppRequiredPaths, cpppRecommendedPaths
	default:
		return genericRequiredPaths, genericRecommendedPaths
	}
}

func isPathEmpty(record model.Record, path string) bool {
	value, ok := record.Get(path)
	if !ok {
		return true
	}
	return model.IsEmptyValue(value)
}
