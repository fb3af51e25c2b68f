package initializers

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"gopkg.in/yaml.v3"
)

// The bucket holds two kinds of objects: cat and camera pictures under
// pictures/ and generated PDF reports under reports/. Both are served to the
// frontend through presigned GET URLs, never directly.

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool

	// Upload policy, overridable from the YAML file below.
	MaxSize   int64
	FileTypes []string
	Expiry    time.Duration

	// Presigned URLs must carry a host the browser can reach, which in
	// containerized deployments differs from the address the API uses.
	ExternalEndpoint string
	ExternalUseSSL   bool
}

var (
	Conf        StorageConfig
	MinioClient *minio.Client

	// presignClient signs against the external endpoint; it falls back to
	// MinioClient when no external endpoint is configured.
	presignClient *minio.Client
)

// storageOverrides is the optional YAML policy file. Values present there win
// over the environment, so operators can tune upload limits without a deploy.
type storageOverrides struct {
	MaxFileSize        int64    `yaml:"max_file_size"`
	AllowedFileTypes   []string `yaml:"allowed_file_types"`
	PresignedURLExpiry int      `yaml:"presigned_url_expiry"` // seconds
}

func loadStorageOverrides() *storageOverrides {
	path := strings.TrimSpace(os.Getenv("STORAGE_CONFIG_FILE"))
	if path == "" {
		path = "config/storage.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var o storageOverrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		slog.Warn("ignoring malformed storage config", "path", path, "error", err)
		return nil
	}
	return &o
}

func InitMinio() error {
	Conf = StorageConfig{
		Endpoint:         os.Getenv("MINIO_ENDPOINT"),
		AccessKey:        os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey:        os.Getenv("MINIO_SECRET_KEY"),
		Bucket:           envOr("MINIO_BUCKET", "cattus"),
		UseSSL:           envBool("MINIO_USE_SSL"),
		MaxSize:          envInt64("MAX_FILE_SIZE", 10<<20),
		FileTypes:        envList("ALLOWED_FILE_TYPES", []string{"image/jpeg", "image/png", "image/webp", "application/pdf"}),
		Expiry:           envSeconds("PRESIGNED_URL_EXPIRY", time.Hour),
		ExternalEndpoint: stripScheme(os.Getenv("MINIO_EXTERNAL_ENDPOINT")),
		ExternalUseSSL:   externalSSL(),
	}
	if o := loadStorageOverrides(); o != nil {
		if o.MaxFileSize > 0 {
			Conf.MaxSize = o.MaxFileSize
		}
		if len(o.AllowedFileTypes) > 0 {
			Conf.FileTypes = o.AllowedFileTypes
		}
		if o.PresignedURLExpiry > 0 {
			Conf.Expiry = time.Duration(o.PresignedURLExpiry) * time.Second
		}
	}

	client, err := minio.New(Conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(Conf.AccessKey, Conf.SecretKey, ""),
		Secure: Conf.UseSSL,
	})
	if err != nil {
		return err
	}
	MinioClient = client

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, Conf.Bucket)
	if err != nil {
		return err
	}
	if !exists {
		if err := client.MakeBucket(ctx, Conf.Bucket, minio.MakeBucketOptions{}); err != nil {
			return err
		}
	}

	presignClient = client
	if Conf.ExternalEndpoint != "" && Conf.ExternalEndpoint != Conf.Endpoint {
		presignClient, err = minio.New(Conf.ExternalEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(Conf.AccessKey, Conf.SecretKey, ""),
			Secure: Conf.ExternalUseSSL,
			Region: "us-east-1",
		})
		if err != nil {
			return err
		}
	}

	slog.Info("object storage ready", "bucket", Conf.Bucket, "endpoint", Conf.Endpoint)
	return nil
}

// CheckFileAllowed enforces the upload policy against the size and sniffed
// MIME type of an incoming file.
func CheckFileAllowed(size int64, mime string) error {
	if size > Conf.MaxSize {
		return fmt.Errorf("file size exceeds the limit")
	}
	incoming := baseMIME(mime)
	for _, t := range Conf.FileTypes {
		if baseMIME(t) == incoming {
			return nil
		}
	}
	return fmt.Errorf("file type is not allowed")
}

// GenerateObjectURL returns a presigned GET URL for an object, with an inline
// content disposition carrying a sanitized download name.
func GenerateObjectURL(key, fileName string) (string, error) {
	params := make(url.Values)
	params.Set("response-content-disposition", fmt.Sprintf("inline; filename=\"%s\"", sanitizeFilename(fileName)))
	signed, err := presignClient.PresignedGetObject(context.Background(), Conf.Bucket, key, Conf.Expiry, params)
	if err != nil {
		return "", fmt.Errorf("failed to create presigned url: %v", err)
	}
	return signed.String(), nil
}

// baseMIME strips parameters like "; charset=utf-8" before comparison.
func baseMIME(mime string) string {
	base, _, _ := strings.Cut(mime, ";")
	return strings.TrimSpace(base)
}

func sanitizeFilename(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '"' || r == '\\' || r == '/':
			return -1
		case r < 32 || r == 127:
			return -1
		}
		return r
	}, name)
	cleaned = strings.ReplaceAll(cleaned, "..", "")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return "file"
	}
	return cleaned
}

func stripScheme(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")
	return endpoint
}

// externalSSL resolves the scheme for presigned URLs: an explicit setting
// wins, then the external endpoint's own scheme, then the internal setting.
func externalSSL() bool {
	if v := strings.TrimSpace(os.Getenv("MINIO_EXTERNAL_USE_SSL")); v != "" {
		return strings.ToLower(v) == "true"
	}
	raw := strings.TrimSpace(os.Getenv("MINIO_EXTERNAL_ENDPOINT"))
	if strings.HasPrefix(raw, "https://") {
		return true
	}
	if strings.HasPrefix(raw, "http://") {
		return false
	}
	return envBool("MINIO_USE_SSL")
}

func envBool(key string) bool {
	return strings.ToLower(os.Getenv(key)) == "true"
}

func envInt64(key string, def int64) int64 {
	v, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return def
	}
	return v
}

func envSeconds(key string, def time.Duration) time.Duration {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return time.Duration(v) * time.Second
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
