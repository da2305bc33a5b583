package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pairIndex/internal/model"
)

const envPrefix = "PAIRINDEX"

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL      string
	DBPath      string
	PGDSN       string
	Port        int
	Pools       []model.PoolIdentity
	Symbols     map[string]string
	ReadTimeout time.Duration
	Concurrency int
	Out         string
	LogLevel    string
	LogFile     string
}

// Load merges config file, environment variables, and flags into Config.
// When envFile is set it is loaded into the process environment first;
// variables already present are left untouched.
func Load(cfgFile, envFile string, flags *pflag.FlagSet) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("db-path", "./data/pairs.db")
	v.SetDefault("port", 8080)
	v.SetDefault("read-timeout", 10*time.Second)
	v.SetDefault("concurrency", 1)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	pools, err := getPools(v, "pools")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		RPCURL:      v.GetString("rpc"),
		DBPath:      v.GetString("db-path"),
		PGDSN:       v.GetString("pg-dsn"),
		Port:        v.GetInt("port"),
		Pools:       pools,
		Symbols:     getStringMap(v, "symbols"),
		ReadTimeout: v.GetDuration("read-timeout"),
		Concurrency: v.GetInt("concurrency"),
		Out:         v.GetString("out"),
		LogLevel:    v.GetString("log-level"),
		LogFile:     v.GetString("log-file"),
	}

	return cfg, nil
}

// getPools reads pools either as a list of {name, address} tables from the
// config file, or as "name=address" items from flags and env.
func getPools(v *viper.Viper, key string) ([]model.PoolIdentity, error) {
	if !v.IsSet(key) {
		return nil, nil
	}

	switch v.Get(key).(type) {
	case string, []string:
		items := getStringSlice(v, key)
		pools := make([]model.PoolIdentity, 0, len(items))
		for _, item := range items {
			parts := strings.SplitN(item, "=", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("invalid pool %q: want name=address", item)
			}
			pools = append(pools, model.PoolIdentity{
				Name:    strings.TrimSpace(parts[0]),
				Address: strings.TrimSpace(parts[1]),
			})
		}
		return pools, nil
	default:
		var pools []model.PoolIdentity
		if err := v.UnmarshalKey(key, &pools); err != nil {
			return nil, fmt.Errorf("decode pools: %w", err)
		}
		return pools, nil
	}
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func getStringMap(v *viper.Viper, key string) map[string]string {
	if !v.IsSet(key) {
		return map[string]string{}
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case map[string]string:
		return typed
	case map[string]interface{}:
		out := make(map[string]string, len(typed))
		for k, v := range typed {
			out[k] = fmt.Sprintf("%v", v)
		}
		return out
	case string:
		return parseStringMap(typed)
	default:
		return map[string]string{}
	}
}

func parseStringMap(input string) map[string]string {
	out := make(map[string]string)
	if strings.TrimSpace(input) == "" {
		return out
	}
	pairs := strings.Split(input, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}
