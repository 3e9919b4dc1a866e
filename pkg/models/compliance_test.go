package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseComplianceStatus(t *testing.T) {
	tests := []struct {
		in   string
		want ComplianceStatus
	}{
		{"Complete", StatusComplete},
		{"Needs Review", StatusNeedsReview},
		{"Missing", StatusMissing},
		{"complete", StatusUnknown}, // case-sensitive by contract
		{"MISSING", StatusUnknown},
		{"Partially Done", StatusUnknown},
		{"", StatusUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseComplianceStatus(tt.in), "input %q", tt.in)
	}
}
