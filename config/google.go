package config

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var (
	sheetsService   *sheets.Service
	driveService    *drive.Service
	googleClientsMu sync.Mutex
)

// GetSheetID returns the spreadsheet holding the Alunos roster and the
// Logs tab.
func GetSheetID() (string, error) {
	id := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_ID"))
	if id == "" {
		return "", errors.New("GOOGLE_SHEET_ID is required")
	}
	return id, nil
}

func GetDriveFolderID() (string, error) {
	id := strings.TrimSpace(os.Getenv("GOOGLE_DRIVE_FOLDER_ID"))
	if id == "" {
		return "", errors.New("GOOGLE_DRIVE_FOLDER_ID is required")
	}
	return id, nil
}

// googleClientOptions prefers ADC (Cloud Run service account /
// GOOGLE_APPLICATION_CREDENTIALS). For local runs, explicit JSON can be
// provided via GOOGLE_CREDENTIALS_JSON.
func googleClientOptions() []option.ClientOption {
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(credJSON))}
	}
	return nil
}

// GetSheetsService returns the shared Google Sheets client, initializing
// it on first use.
func GetSheetsService(ctx context.Context) (*sheets.Service, error) {
	googleClientsMu.Lock()
	defer googleClientsMu.Unlock()

	if sheetsService != nil {
		return sheetsService, nil
	}

	svc, err := sheets.NewService(ctx, googleClientOptions()...)
	if err != nil {
		return nil, err
	}
	sheetsService = svc
	return sheetsService, nil
}

// GetDriveService returns the shared Google Drive client, initializing it
// on first use.
func GetDriveService(ctx context.Context) (*drive.Service, error) {
	googleClientsMu.Lock()
	defer googleClientsMu.Unlock()

	if driveService != nil {
		return driveService, nil
	}

	svc, err := drive.NewService(ctx, googleClientOptions()...)
	if err != nil {
		return nil, err
	}
	driveService = svc
	return driveService, nil
}
