package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "chronoledger/pkg/domain-errors"
)

// TestParseRecordID_Invariants validates that ids accepted at a trust boundary
// are positive decimal integers.
func TestParseRecordID_Invariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Empty string", "", true},
		{"Zero", "0", true},
		{"Negative", "-1", true},
		{"Hex", "0x1f", true},
		{"Leading whitespace", " 7", true},
		{"Trailing newline", "7\n", true},
		{"SQL injection attempt", "1; DROP TABLE timelines;--", true},
		{"Path traversal", "../../etc/passwd", true},
		{"Oversized input", strings.Repeat("9", 100), true},
		{"Overflow", "18446744073709551616", true},

		{"One", "1", false},
		{"Leading zeros", "007", false},
		{"Max uint64", "18446744073709551615", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTimelineID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// TestAllIDTypes_ConsistentBehavior ensures every record id type parses identically.
func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	for _, input := range []string{"", "abc", "0", "42"} {
		t.Run("input: "+input, func(t *testing.T) {
			tl, errTimeline := ParseTimelineID(input)
			an, errAnomaly := ParseAnomalyID(input)
			rs, errResolution := ParseResolutionID(input)

			assert.Equal(t, errTimeline == nil, errAnomaly == nil)
			assert.Equal(t, errTimeline == nil, errResolution == nil)
			assert.Equal(t, uint64(tl), uint64(an))
			assert.Equal(t, uint64(tl), uint64(rs))
		})
	}
}

func TestIDString(t *testing.T) {
	assert.Equal(t, "12", TimelineID(12).String())
	assert.Equal(t, "3", AnomalyID(3).String())
	assert.Equal(t, "4", ResolutionID(4).String())
	assert.True(t, TimelineID(0).IsNil())
	assert.True(t, Principal("").IsNil())
	assert.False(t, Principal("alice").IsNil())
}
