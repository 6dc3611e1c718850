package coldstorage

import (
	"context"
	"fmt"
	"os"

	"github.com/admissaoprv/secretaria-backend/config"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

type driveUploader struct{}

func NewDriveUploader() Uploader {
	return &driveUploader{}
}

func (u *driveUploader) Upload(ctx context.Context, localPath, name, mimeType string) error {
	svc, err := config.GetDriveService(ctx)
	if err != nil {
		return err
	}
	folderID, err := config.GetDriveFolderID()
	if err != nil {
		return err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	meta := &drive.File{
		Name:    name,
		Parents: []string{folderID},
	}
	_, err = svc.Files.Create(meta).
		Media(f, googleapi.ContentType(mimeType)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("drive upload %q: %w", name, err)
	}
	return nil
}
