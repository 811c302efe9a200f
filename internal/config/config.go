package config

import (
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Engine   EngineConfig
	Pipeline PipelineConfig
	Postgres DBConfig
	Redis    RedisConfig
	S3       S3Config
	Session  Session
	Cookie   Cookie
	Logger   Logger
}

type ServerConfig struct {
	AppVersion   string
	Port         string
	Mode         string
	JwtSecretKey string
	MaxCPUUsage  float64
}

type EngineConfig struct {
	BaseURL        string
	AuthToken      string
	RequestTimeout int
	StreamTimeout  int
}

type PipelineConfig struct {
	AudioQuality   string
	SanitizeMode   string
	SanitizePreset string
	Strictness     string
	ExtractVocals  bool
	UvrModel       string
	UvrPrecision   string
	AvatarCDN      string
}

type Session struct {
	Prefix string
	Name   string
	Expire int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	PgDriver string
}

type Cookie struct {
	Name     string
	MaxAge   int
	Secure   bool
	HTTPOnly bool
}

type RedisConfig struct {
	RedisAddr      string
	RedisPassword  string
	DB             int
	MinIdleConns   int
	PoolSize       int
	PoolTimeout    int
	VodCachePrefix string
	VodCacheTTL    int
	JobListKey     string
	JobListTTL     int
}

type S3Config struct {
	Endpoint       string
	Region         string
	AccessKey      string
	SecretKey      string
	ArtifactBucket string
	PresignExpiry  int
}

type Logger struct {
	Development       bool
	DisableCaller     bool
	DisableStacktrace bool
	Encoding          string
	Level             string
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	v.AddConfigPath(".")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFound) {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
