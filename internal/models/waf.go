package models

import "time"

// WAFFinding is one entry from the external WAF fingerprinter's report.
type WAFFinding struct {
	Detected     bool   `json:"detected"`
	Firewall     string `json:"firewall"`
	Manufacturer string `json:"manufacturer"`
	URL          string `json:"url"`
	TriggerURL   string `json:"trigger_url,omitempty"`
}

// WAFReport is a persisted history row of one WAF scan finding for a domain.
type WAFReport struct {
	ID           string    `json:"id" badgerhold:"unique"`
	Domain       string    `json:"domain"`
	Detected     bool      `json:"detected"`
	Firewall     string    `json:"firewall"`
	Manufacturer string    `json:"manufacturer"`
	URL          string    `json:"url"`
	TriggerURL   string    `json:"trigger_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// PageLink is an anchor extracted from a page, fed to the ToS discovery
// collaborator.
type PageLink struct {
	Href string `json:"href"`
	Text string `json:"visible_text"`
}

// TermsDiscovery is the ToS-discovery collaborator response.
type TermsDiscovery struct {
	TermsOfServiceURL string  `json:"terms_of_service_url"`
	ConfidenceScore   float64 `json:"confidence_score"`
	Notes             string  `json:"notes,omitempty"`
}

// TermsEvaluation is the ToS-evaluation collaborator response.
type TermsEvaluation struct {
	Permissions           []ActivityPermission `json:"permissions"`
	TerritorialExceptions string               `json:"territorial_exceptions,omitempty"`
	ArbitrationClauses    string               `json:"arbitration_clauses,omitempty"`
	DocumentType          string               `json:"document_type,omitempty"`
	ConfidenceScore       float64              `json:"confidence_score"`
}
