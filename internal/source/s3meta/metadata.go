// Package s3meta loads the filter-option metadata the upstream pipeline
// writes alongside the datasets (distinct manufacturers, models per
// manufacturer, fuel/drivetrain options, value bounds). The portal serves it
// to the dashboard so dropdowns can be populated without a data query.
package s3meta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// CarOptions mirrors calc/metadata.json for the car dataset.
type CarOptions struct {
	Produsenter   []string            `json:"produsenter"`
	ModelsByProd  map[string][]string `json:"models_by_prod"`
	DrivstoffOpts []string            `json:"drivstoff_opts"`
	HjuldriftOpts []string            `json:"hjuldrift_opts"`
	YearMin       int                 `json:"year_min"`
	YearMax       int                 `json:"year_max"`
	KmMin         int                 `json:"km_min"`
	KmMax         int                 `json:"km_max"`
	LatestDt      string              `json:"latest_dt"`
}

// HouseOptions mirrors the house dataset's metadata object.
type HouseOptions struct {
	Fylker     []string `json:"fylker"`
	Boligtyper []string `json:"boligtyper"`
	Meglere    []string `json:"meglere"`
	PrisMin    int      `json:"pris_min"`
	PrisMax    int      `json:"pris_max"`
	LatestDt   string   `json:"latest_dt"`
}

// ObjectGetter is the slice of the S3 API the loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Loader fetches metadata objects from S3, or from LocalDir when no bucket is
// configured (local runs without AWS credentials).
type Loader struct {
	api      ObjectGetter
	bucket   string
	localDir string
}

func NewLoader(api ObjectGetter, bucket, localDir string) *Loader {
	return &Loader{api: api, bucket: bucket, localDir: localDir}
}

// LoadCars reads the car metadata object at key.
func (l *Loader) LoadCars(ctx context.Context, key string) (*CarOptions, error) {
	var opts CarOptions
	if err := l.loadJSON(ctx, key, &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

// LoadHouses reads the house metadata object at key.
func (l *Loader) LoadHouses(ctx context.Context, key string) (*HouseOptions, error) {
	var opts HouseOptions
	if err := l.loadJSON(ctx, key, &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

func (l *Loader) loadJSON(ctx context.Context, key string, dst interface{}) error {
	raw, err := l.fetch(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("parse metadata %s: %w", key, err)
	}
	return nil
}

func (l *Loader) fetch(ctx context.Context, key string) ([]byte, error) {
	if l.bucket == "" {
		path := filepath.Join(l.localDir, filepath.Base(key))
		slog.Info("Loading metadata from local file", "path", path)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read local metadata: %w", err)
		}
		return raw, nil
	}

	slog.Info("Loading metadata from S3", "bucket", l.bucket, "key", key)
	out, err := l.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", l.bucket, key, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", l.bucket, key, err)
	}
	return raw, nil
}
