package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type Log struct {
	Level      string
	JSON       bool
	File       string // 非空则写文件并切割
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type JWT struct {
	Secret             string
	Issuer             string
	AccessTokenTTLHour int // 默认 120（5 天）
}

type DB struct {
	Driver             string
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Upload struct {
	Dir               string
	ThumbnailMaxBytes int64
	AvatarMaxBytes    int64
}

type Limits struct {
	RPS          float64
	Burst        int
	Concurrency  int64
	MaxBodyBytes int64
}

type Config struct {
	App    App
	Log    Log
	JWT    JWT
	DB     DB
	Upload Upload
	Limits Limits
}

func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.http.port", 5001)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 30)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("jwt.accesstokenttlhour", 120)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.thumbnailmaxbytes", 2<<20)
	v.SetDefault("upload.avatarmaxbytes", 500<<10)
	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.concurrency", 300)
	v.SetDefault("limits.maxbodybytes", 16<<20)

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	return &c
}
