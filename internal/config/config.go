// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек клиента
type Config struct {
	Env        string `yaml:"env" env-default:"local"`
	StateDir   string `yaml:"state_dir" env:"STATE_DIR"`
	Backend    `yaml:"backend"`
	HTTPServer `yaml:"http_server"`
	Payment    `yaml:"payment"`
}

// Backend структура для настройки подключения к REST-бэкенду платформы
type Backend struct {
	BaseURL        string        `yaml:"base_url"`
	TimeoutBackend time.Duration `yaml:"timeout" env-default:"10s"`
}

// HTTPServer структура для настройки локального сервера клиента
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"127.0.0.1:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"15s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// Payment структура с интеграционными константами платёжного шлюза.
// GatewayTokenParam — имя query-параметра, в котором шлюз возвращает
// свой корреляционный токен; задаётся контрактом интеграции,
// в коде никогда не зашивается.
type Payment struct {
	GatewayTokenParam string        `yaml:"gateway_token_param" env-default:"Ptrid"`
	CancelFlagKey     string        `yaml:"cancel_flag_key" env-default:"payment_status"`
	CancelFlagValue   string        `yaml:"cancel_flag_value" env-default:"cancelled"`
	Currency          string        `yaml:"currency" env-default:"USD"`
	PublicBaseURL     string        `yaml:"public_base_url"`
	ReturnPath        string        `yaml:"return_path" env-default:"/payment/return"`
	CancelPath        string        `yaml:"cancel_path" env-default:"/payment/cancel"`
	ConfirmationDelay time.Duration `yaml:"confirmation_delay" env-default:"5s"`
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH,
// при любой ошибке завершает процесс
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StateDir: %s\n"+
			"Backend:\n"+
			"  BaseURL: %s\n"+
			"  Timeout: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Payment:\n"+
			"  GatewayTokenParam: %s\n"+
			"  CancelFlagKey: %s\n"+
			"  CancelFlagValue: %s\n"+
			"  Currency: %s\n"+
			"  PublicBaseURL: %s\n"+
			"  ReturnPath: %s\n"+
			"  CancelPath: %s\n"+
			"  ConfirmationDelay: %s\n",
		c.Env,
		c.StateDir,
		c.BaseURL,
		c.TimeoutBackend,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.GatewayTokenParam,
		c.CancelFlagKey,
		c.CancelFlagValue,
		c.Currency,
		c.PublicBaseURL,
		c.ReturnPath,
		c.CancelPath,
		c.ConfirmationDelay,
	)
}
