package model

import "encoding/json"

// SchemaTemplate returns the canonical tender summary shape. Every
// capability response is canonicalized against this template before it
// enters the pipeline. Do not change field names without updating the
// critical-field registry and portal validation tables.
func SchemaTemplate() Record {
	return Record{
		"tender_meta": Section(Record{
			"tender_id":            String(""),
			"tender_title":         String(""),
			"portal":               String(""),
			"department":           String(""),
			"issuing_authority":    String(""),
			"country":              String(""),
			"state":                String(""),
			"organization_address": String(""),
			"tender_document_date": String(""),
			"boq_title":            String(""),
			"type_of_bid":          String(""),
			"item_category":        String(""),
			"total_quantity":       String(""),
			"funded_project":       String(""),
			"funding_agency":       String(""),
		}),
		"scope_of_work": Section(Record{
			"description":              String(""),
			"deliverables":             String(""),
			"quantity":                 String(""),
			"technical_specifications": String(""),
			"location":                 String(""),
			"duration":                 String(""),
		}),
		"key_dates": Section(Record{
			"publication_date":                String(""),
			"bid_start":                       String(""),
			"bid_end":                         String(""),
			"pre_bid_meeting_date":            String(""),
			"pre_bid_meeting_location":        String(""),
			"technical_bid_opening":           String(""),
			"financial_bid_opening":           String(""),
			"contract_start":                  String(""),
			"bid_validity":                    String(""),
			"project_duration":                String(""),
			"date_and_time_of_issue":          String(""),
			"due_date_and_time_of_submission": String(""),
		}),
		"eligibility_snapshot": Section(Record{
			"who_can_bid":                         String(""),
			"experience_required":                 String(""),
			"turnover_requirement":                String(""),
			"oem_turnover_requirement":            String(""),
			"minimum_years_in_business":           String(""),
			"local_content_requirement":           String(""),
			"mse_relaxation":                      String(""),
			"startup_relaxation":                  String(""),
			"consortium_or_jv_allowed":            String(""),
			"international_bidders_allowed":       String(""),
			"specific_licenses_required":          String(""),
			"past_performance_requirement":        String(""),
			"bidder_technical_infrastructure":     String(""),
			"detailed_pre_qualification_criteria": String(""),
		}),
		"financial_requirements": Section(Record{
			"emd":                  String(""),
			"emd_exemption":        String(""),
			"tender_fee":           String(""),
			"performance_security": String(""),
			"epbg_details":         String(""),
			"retention_money":      String(""),
			"payment_terms":        String(""),
			"advance_payment":      String(""),
			"mobilization_advance": String(""),
		}),
		"documents_required": Section(Record{
			"documents_required":           List(),
			"online_submission_documents":  List(),
			"offline_submission_documents": List(),
		}),
		"legal_and_risk_clauses": Section(Record{
			"rejection_of_bid":     String(""),
			"splitting_of_work":    String(""),
			"blacklisting_clause":  String(""),
			"arbitration_clause":   String(""),
			"liquidated_damages":   String(""),
			"force_majeure":        String(""),
			"termination_clause":   String(""),
			"warranty_period":      String(""),
			"special_restrictions": String(""),
		}),
		"vendor_decision_hint": Section(Record{
			"eligible_if":              String(""),
			"not_eligible_if":          String(""),
			"key_risks":                String(""),
			"competitive_advantage_if": String(""),
		}),
		"additional_important_information": Section(Record{
			"detailed_evaluation_scoring_criteria": String(""),
			"evaluation_method":                    String(""),
			"bid_to_ra_enabled":                    String(""),
			"technical_clarification_time":         String(""),
			"buyer_added_atc":                      String(""),
			"price_preference":                     String(""),
			"special_conditions":                   String(""),
			"contact_information":                  String(""),
			"clarification_process":                String(""),
			"other_critical_info":                  String(""),
		}),
		"executive_summary":             String(""),
		"pre_qualification_requirement": String(""),
	}
}

// SchemaJSON renders the schema template as indented JSON for prompt
// injection.
func SchemaJSON() string {
	b, err := json.MarshalIndent(SchemaTemplate().ToMap(), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
