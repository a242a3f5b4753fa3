package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/syncroom/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 8080,
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	queueLimit = configVar[int]{
		envKey:       "SERVER_QUEUE_LIMIT",
		flagKey:      "queue-limit",
		defaultValue: 100,
	}
	driftThresholdMs = configVar[int]{
		envKey:       "SERVER_DRIFT_THRESHOLD_MS",
		flagKey:      "drift-threshold-ms",
		defaultValue: 1000,
	}
	suppressWindowMs = configVar[int]{
		envKey:       "SERVER_SUPPRESS_WINDOW_MS",
		flagKey:      "suppress-window-ms",
		defaultValue: 500,
	}
	promoteAttempts = configVar[int]{
		envKey:       "SERVER_PROMOTE_ATTEMPTS",
		flagKey:      "promote-attempts",
		defaultValue: 3,
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.Int(queueLimit.flagKey, queueLimit.defaultValue, "Maximum number of pending videos in the queue")
	pflag.Int(driftThresholdMs.flagKey, driftThresholdMs.defaultValue, "Maximum tolerated playback drift before a corrective seek, in milliseconds")
	pflag.Int(suppressWindowMs.flagKey, suppressWindowMs.defaultValue, "Window after a local intent during which echoed updates are suppressed, in milliseconds")
	pflag.Int(promoteAttempts.flagKey, promoteAttempts.defaultValue, "Bounded retries for a contended queue promotion")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(queueLimit.flagKey, queueLimit.envKey)
	viper.BindEnv(driftThresholdMs.flagKey, driftThresholdMs.envKey)
	viper.BindEnv(suppressWindowMs.flagKey, suppressWindowMs.envKey)
	viper.BindEnv(promoteAttempts.flagKey, promoteAttempts.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)

	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(queueLimit.flagKey, queueLimit.defaultValue)
	viper.SetDefault(driftThresholdMs.flagKey, driftThresholdMs.defaultValue)
	viper.SetDefault(suppressWindowMs.flagKey, suppressWindowMs.defaultValue)
	viper.SetDefault(promoteAttempts.flagKey, promoteAttempts.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)

	return &app.AppConfig{
		Host:             viper.GetString(host.flagKey),
		Port:             viper.GetInt(port.flagKey),
		LogLevel:         viper.GetString(logLevel.flagKey),
		QueueLimit:       viper.GetInt(queueLimit.flagKey),
		DriftThresholdMs: viper.GetInt(driftThresholdMs.flagKey),
		SuppressWindowMs: viper.GetInt(suppressWindowMs.flagKey),
		PromoteAttempts:  viper.GetInt(promoteAttempts.flagKey),
		RedisPort:        viper.GetInt(redisPort.flagKey),
		RedisHost:        viper.GetString(redisHost.flagKey),
		RedisPassword:    viper.GetString(redisPassword.flagKey),
	}
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatal(err)
	}

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
