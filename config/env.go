package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort       = "3000"
	DefaultConfigFile = "config.yaml"
)

type Config struct {
	Port          string `yaml:"port"`
	PostgreSQLURI string `yaml:"postgresql_uri"`
	JWTSecret     string `yaml:"jwt_secret"`
	BcryptCost    int    `yaml:"bcrypt_cost"`
	CORSOrigins   string `yaml:"cors_origins"`
	LogLevel      string `yaml:"log_level"`
	StaticDir     string `yaml:"static_dir"` // bỏ trống thì dùng file JS nhúng sẵn

	MQTT struct {
		URL      string `yaml:"url"`
		ClientID string `yaml:"client_id"`
	} `yaml:"mqtt"`
}

// LoadENV nạp biến môi trường từ file .env nếu có
func LoadENV() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

// Load đọc file YAML (không bắt buộc), thay ${VAR} bằng biến môi trường,
// sau đó biến môi trường ghi đè lên giá trị trong file.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("error parsing config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	setDefaults(cfg)

	if cfg.PostgreSQLURI == "" {
		return nil, errors.New("you must set your 'POSTGRESQL_URI' environmental variable")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("you must set your 'JWT_SECRET' environmental variable")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	overrides := map[string]*string{
		"PORT":           &cfg.Port,
		"POSTGRESQL_URI": &cfg.PostgreSQLURI,
		"JWT_SECRET":     &cfg.JWTSecret,
		"CORS_ORIGINS":   &cfg.CORSOrigins,
		"LOG_LEVEL":      &cfg.LogLevel,
		"STATIC_DIR":     &cfg.StaticDir,
		"MQTT_URL":       &cfg.MQTT.URL,
		"MQTT_CLIENT_ID": &cfg.MQTT.ClientID,
	}
	for name, dst := range overrides {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BCRYPT_COST value: %w", err)
		}
		cfg.BcryptCost = cost
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.CORSOrigins == "" {
		cfg.CORSOrigins = "*"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "go-todo"
	}
}

// ConfigFile trả về đường dẫn file cấu hình từ CONFIG_FILE hoặc mặc định
func ConfigFile() string {
	if v := os.Getenv("CONFIG_FILE"); v != "" {
		return v
	}
	return DefaultConfigFile
}
