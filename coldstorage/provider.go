package coldstorage

import (
	"context"
	"os"
	"strings"
)

const (
	ProviderDrive = "drive"
	ProviderGCS   = "gcs"
)

// Uploader copies a local file into offsite storage. Implementations are
// best-effort collaborators; callers report failures to the operator and
// move on.
type Uploader interface {
	Upload(ctx context.Context, localPath, name, mimeType string) error
}

func GetStorageProvider() string {
	provider := strings.TrimSpace(strings.ToLower(os.Getenv("STORAGE_PROVIDER")))
	if provider == "" {
		return ProviderDrive
	}
	return provider
}

// NewUploaderFromEnv selects the cold storage backend. Google Drive is the
// default; GCS is available for deployments that already live on GCP.
func NewUploaderFromEnv() Uploader {
	switch GetStorageProvider() {
	case ProviderGCS:
		return NewGCSUploader()
	default:
		return NewDriveUploader()
	}
}
