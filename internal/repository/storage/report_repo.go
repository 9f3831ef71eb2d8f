package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
)

// ReportRepository stores exported report files
type ReportRepository interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}

// GenerateReportPath creates a unique object path for a report export,
// e.g. 7/outstanding/20260302-090000_<uuid>.csv
func GenerateReportPath(workspaceID int32, report string, at time.Time, ext string) string {
	filename := fmt.Sprintf("%s_%s%s", at.UTC().Format("20060102-150405"), uuid.New().String(), ext)
	return path.Join(fmt.Sprintf("%d", workspaceID), report, filename)
}
