package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Storage StorageConfig
	JWT     JWTConfig
	Upload  UploadConfig
	Link    LinkConfig
}

type ServerConfig struct {
	Port          string
	PublicBaseURL string
	CORSOrigins   string
}

type DBConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

type StorageConfig struct {
	Backend   string
	UploadDir string
	MinIO     MinIOConfig
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

type UploadConfig struct {
	MaxFileSizeBytes int64
	MaxFiles         int
	AllowedMimeTypes []string
}

type LinkConfig struct {
	DefaultTTLHours int
	MaxTTLHours     int
	RawURLTTL       time.Duration
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	StorageDisk  = "disk"
	StorageMinIO = "minio"
)

var DefaultAllowedMimeTypes = []string{
	"application/pdf",
	"image/png",
	"image/jpeg",
	"text/csv",
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          getEnv("SERVER_PORT", "4000"),
			PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
			CORSOrigins:   getEnv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173"),
		},
		DB: DBConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "fileshare"),
			Password:   getEnv("DB_PASSWORD", "fileshare_secret"),
			Name:       getEnv("DB_NAME", "fileshare"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "fileshare.db"),
		},
		Storage: StorageConfig{
			Backend:   strings.ToLower(getEnv("STORAGE_BACKEND", StorageDisk)),
			UploadDir: getEnv("UPLOAD_DIR", "uploads"),
			MinIO: MinIOConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
				AccessKey: getEnv("MINIO_ACCESS_KEY", "fileshare"),
				SecretKey: getEnv("MINIO_SECRET_KEY", "fileshare_secret"),
				Bucket:    getEnv("MINIO_BUCKET", "fileshare"),
				Region:    getEnv("MINIO_REGION", ""),
				UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
			},
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "change-me-in-production"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 7*24),
		},
		Upload: UploadConfig{
			MaxFileSizeBytes: getEnvAsInt64("MAX_FILE_SIZE_BYTES", 10*1024*1024),
			MaxFiles:         getEnvAsInt("UPLOAD_MAX_FILES", 10),
			AllowedMimeTypes: getEnvAsList("ALLOWED_MIME_TYPES", DefaultAllowedMimeTypes),
		},
		Link: LinkConfig{
			DefaultTTLHours: getEnvAsInt("LINK_DEFAULT_TTL_HOURS", 24),
			MaxTTLHours:     getEnvAsInt("LINK_MAX_TTL_HOURS", 30*24),
			RawURLTTL:       getEnvAsDuration("RAW_URL_TTL", 15*time.Minute),
		},
	}
}

// Validate reports settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver))
	}
	switch c.Storage.Backend {
	case StorageDisk, StorageMinIO:
	default:
		errs = append(errs, fmt.Errorf("unsupported STORAGE_BACKEND %q", c.Storage.Backend))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.JWT.ExpirationHours <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION_HOURS must be positive"))
	}
	if c.Upload.MaxFileSizeBytes <= 0 {
		errs = append(errs, errors.New("MAX_FILE_SIZE_BYTES must be positive"))
	}
	if c.Upload.MaxFiles <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_FILES must be positive"))
	}
	if len(c.Upload.AllowedMimeTypes) == 0 {
		errs = append(errs, errors.New("ALLOWED_MIME_TYPES must list at least one type"))
	}
	if c.Link.DefaultTTLHours < 0 || c.Link.MaxTTLHours <= 0 {
		errs = append(errs, errors.New("link TTL hours must be non-negative with a positive maximum"))
	} else if c.Link.DefaultTTLHours > c.Link.MaxTTLHours {
		errs = append(errs, errors.New("LINK_DEFAULT_TTL_HOURS exceeds LINK_MAX_TTL_HOURS"))
	}

	return errors.Join(errs...)
}

// BodyLimit is the largest multipart request the server accepts: a full batch
// of maximum-size files plus room for multipart framing.
func (u UploadConfig) BodyLimit() int {
	return int(u.MaxFileSizeBytes)*u.MaxFiles + 1024*1024
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return append([]string(nil), fallback...)
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return append([]string(nil), fallback...)
	}
	return items
}
