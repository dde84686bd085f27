package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
	"go.uber.org/zap/zapcore"
)

type Backend struct {
	GCS      *BackendGCS `env:",prefix=GCS_"`
	S3       *BackendS3  `env:",prefix=S3_"`
	Type     string      `env:"TYPE,default=local"`
	RootPath string      `env:"ROOT_PATH,default=/tmp/kota"`
}

func (b *Backend) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("type", b.Type)
	enc.AddString("rootPath", b.RootPath)
	return nil
}

type BackendGCS struct {
	Bucket            string `env:"BUCKET"`
	Endpoint          string `env:"ENDPOINT"`
	ServiceAccountKey string `env:"SERVICE_ACCOUNT_KEY"`
}

type BackendS3 struct {
	AccessKey    string `env:"ACCESS_KEY"`
	Bucket       string `env:"BUCKET"`
	Endpoint     string `env:"ENDPOINT"`
	Region       string `env:"REGION,default=us-east-1"`
	SecretKey    string `env:"SECRET_KEY"`
	UsePathStyle bool   `env:"USE_PATH_STYLE,default=false"`
}

type Config struct {
	Backend *Backend `env:",prefix=BACKEND_"`
	Fetch   *Fetch   `env:",prefix=FETCH_"`
	Log     *Log     `env:",prefix=LOG_"`
	Port    int      `env:"PORT,default=5000"`
	Trace   *Trace   `env:",prefix=TRACE_"`
	Verify  *Verify  `env:",prefix=VERIFY_"`
}

type Fetch struct {
	MaxBytes  int           `env:"MAX_BYTES,default=16777216"`
	Timeout   time.Duration `env:"TIMEOUT,default=30s"`
	UserAgent string        `env:"USER_AGENT,default=kota"`
}

type Trace struct {
	Enable bool   `env:"ENABLE,default=false"`
	Type   string `env:"TYPE,default=console"`
}

type Verify struct {
	KeyringPath string `env:"KEYRING_PATH"`
}

func (cfg *Config) Address() string {
	return fmt.Sprintf(":%d", cfg.Port)
}

type Log struct {
	Format string `env:"FORMAT,default=json"`
	Level  string `env:"LEVEL,default=info"`
}

func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads the configuration through l instead of the process
// environment.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &cfg, l); err != nil {
		return nil, err
	}

	return &cfg, nil
}
