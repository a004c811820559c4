package common

import (
	"github.com/google/uuid"
)

// NewJobID generates an opaque job identifier.
func NewJobID() string {
	return uuid.New().String()
}

// NewArticleID generates a unique article-metadata row ID with the
// "article_" prefix.
func NewArticleID() string {
	return "article_" + uuid.New().String()
}

// NewReportID generates a unique WAF report row ID with the "waf_" prefix.
func NewReportID() string {
	return "waf_" + uuid.New().String()
}
