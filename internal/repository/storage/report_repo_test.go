package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateReportPath(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 5, 7, 0, time.FixedZone("AEST", 10*3600))

	p := GenerateReportPath(7, "outstanding", at, ".csv")

	assert.True(t, strings.HasPrefix(p, "7/outstanding/20260301-230507_"), p)
	assert.True(t, strings.HasSuffix(p, ".csv"))
	assert.NotEqual(t, p, GenerateReportPath(7, "outstanding", at, ".csv"))
}
