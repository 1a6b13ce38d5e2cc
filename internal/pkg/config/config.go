package config

import (
	"os"

	"github.com/ardanlabs/conf"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Namespace prefixes environment variables that override config.yaml,
// e.g. LUNCH_DB_HOST or LUNCH_REDIS_ADDR.
const Namespace = "LUNCH"

type Config struct {
	DB struct {
		Username   string `yaml:"username"`
		Password   string `yaml:"password" conf:"noprint"`
		Host       string `yaml:"host"`
		Port       string `yaml:"port"`
		Name       string `yaml:"name"`
		DisableTLS bool   `yaml:"disable_tls"`
		Debug      bool   `yaml:"debug"`
	} `yaml:"db"`

	HTTP struct {
		Port           string   `yaml:"port"`
		BaseURL        string   `yaml:"base_url"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"http"`

	JWTKey          string `yaml:"jwt_key" conf:"noprint"`
	DisplayTimeZone string `yaml:"display_time_zone"`
	UploadDir       string `yaml:"upload_dir"`
	BackupDir       string `yaml:"backup_dir"`
	PgDumpPath      string `yaml:"pg_dump_path"`
	PsqlPath        string `yaml:"psql_path"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password" conf:"noprint"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Minio struct {
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key" conf:"noprint"`
		Bucket    string `yaml:"bucket"`
		UseSSL    bool   `yaml:"use_ssl"`
	} `yaml:"minio"`
}

func defaults() Config {
	var c Config
	c.DB.Port = "5432"
	c.DB.DisableTLS = true
	c.HTTP.Port = ":8080"
	c.DisplayTimeZone = "America/Bogota"
	c.UploadDir = "statics"
	c.BackupDir = "backups"
	c.PgDumpPath = "pg_dump"
	c.PsqlPath = "psql"
	return c
}

// NewConfig loads path (a missing file is not an error), then applies
// environment variables and command line flags on top of it.
func NewConfig(path string, args []string) (*Config, error) {
	c := defaults()

	yamlFile, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(yamlFile, &c); err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
	case !os.IsNotExist(err):
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	if err := conf.Parse(args, Namespace, &c); err != nil {
		return nil, err
	}

	if c.DB.Username == "" || c.DB.Password == "" || c.DB.Host == "" || c.DB.Name == "" {
		return nil, errors.New("missing required database configuration")
	}
	if c.JWTKey == "" {
		return nil, errors.New("missing jwt_key")
	}

	return &c, nil
}

// Usage returns the help text listing every environment variable and flag.
func Usage() (string, error) {
	c := defaults()
	return conf.Usage(Namespace, &c)
}

// RedisEnabled reports whether a redis address is configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

// MinioEnabled reports whether backups are mirrored to object storage.
func (c *Config) MinioEnabled() bool {
	return c.Minio.Endpoint != "" && c.Minio.Bucket != ""
}
