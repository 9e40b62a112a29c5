package sla

import (
	"strings"
	"time"
)

// Threshold is the allowed response and resolution time for a severity.
type Threshold struct {
	Response   time.Duration
	Resolution time.Duration
}

var thresholds = map[string]Threshold{
	"sev1": {Response: 30 * time.Minute, Resolution: 240 * time.Minute},
	"sev2": {Response: 60 * time.Minute, Resolution: 720 * time.Minute},
	"sev3": {Response: 240 * time.Minute, Resolution: 1440 * time.Minute},
}

// ThresholdFor reports false for severities that are not evaluated.
func ThresholdFor(severity string) (Threshold, bool) {
	t, ok := thresholds[strings.ToLower(strings.TrimSpace(severity))]
	return t, ok
}
