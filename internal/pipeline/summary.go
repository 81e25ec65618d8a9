package pipeline

import (
	"strconv"
	"time"

	"hkxshift/internal/audit"
)

// Summary aggregates run counters. It is written only from the pipeline
// goroutine.
type Summary struct {
	Movesets                int
	AssetFiles              int
	TxtFiles                int
	JSONFiles               int
	Extracted               int
	Rescaled                int
	Merged                  int
	Failed                  int
	ScarSkipped             int
	CprSkipped              int
	ProtectedLinesPreserved int
	BackedUp                int
	BackupBytes             int64
	SupportCopied           int
	Elapsed                 time.Duration
}

// Fields renders the counters in report order.
func (s Summary) Fields() []audit.Field {
	fields := []audit.Field{
		{Label: "Files Processed", Value: strconv.Itoa(s.Extracted)},
		{Label: "Files Scaled", Value: strconv.Itoa(s.Rescaled)},
		{Label: "Files Merged", Value: strconv.Itoa(s.Merged)},
		{Label: "Files Failed", Value: strconv.Itoa(s.Failed)},
		{Label: "HKX Files Found", Value: strconv.Itoa(s.AssetFiles)},
		{Label: "TXT Files Found", Value: strconv.Itoa(s.TxtFiles)},
		{Label: "JSON Files Found", Value: strconv.Itoa(s.JSONFiles)},
		{Label: "Support Files Copied", Value: strconv.Itoa(s.SupportCopied)},
		{Label: "Files Backed Up", Value: strconv.Itoa(s.BackedUp)},
	}
	if s.ScarSkipped > 0 {
		fields = append(fields, audit.Field{Label: "SCAR Files Preserved", Value: strconv.Itoa(s.ScarSkipped)})
	}
	if s.CprSkipped > 0 {
		fields = append(fields, audit.Field{Label: "CPR Files Preserved", Value: strconv.Itoa(s.CprSkipped)})
	}
	if s.ProtectedLinesPreserved > 0 {
		fields = append(fields, audit.Field{Label: "SCAR Annotations Preserved", Value: strconv.Itoa(s.ProtectedLinesPreserved)})
	}
	return fields
}
