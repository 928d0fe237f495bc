package firebase

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"campusfinder/pkg/config"
	"campusfinder/pkg/logger"
)

// ClientOptions resolves Google credentials: an inline service account JSON
// wins over a file path. With neither set the SDKs fall back to application
// default credentials.
func ClientOptions(cfg *config.Config) ([]option.ClientOption, error) {
	if cfg.ServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON))}, nil
	}

	if cfg.ServiceAccountPath != "" {
		if _, err := os.Stat(cfg.ServiceAccountPath); err != nil {
			return nil, fmt.Errorf("service account file %s: %w", cfg.ServiceAccountPath, err)
		}
		logger.Info("Using Firebase service account from file: %s", cfg.ServiceAccountPath)
		return []option.ClientOption{option.WithCredentialsFile(cfg.ServiceAccountPath)}, nil
	}

	logger.Info("Using application default credentials")
	return nil, nil
}

// NewFirestoreClient initializes the Firebase app for the configured project
// and returns its Firestore client.
func NewFirestoreClient(ctx context.Context, cfg *config.Config, opts ...option.ClientOption) (*firestore.Client, error) {
	app, err := fbapp.NewApp(ctx, &fbapp.Config{
		ProjectID:     cfg.FirebaseProject,
		StorageBucket: cfg.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return client, nil
}
