package config

import "github.com/spf13/viper"

func GetDefault() Config {
	return Config{
		Log: LogConfig{
			Level:      "WARN",
			TimeFormat: "2006-01-02 15:04:05",
			File:       "",
			NoColor:    false,
			JSON:       false,
			NoTerminal: false,
			Rotation: LogRotationConfig{
				MaxSize:    128,
				MaxBackups: 5,
				MaxAge:     16,
				Compress:   false,
			},
		},
		Store: StoreConfig{
			Type:    "sqlite",
			Host:    "localhost",
			Port:    0,
			Write:   true,
			DBName:  "coda",
			Timeout: "10s",
			SSLMode: "disable",
		},
	}
}

func setDefaults() {
	defaults := GetDefault()

	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.time_format", defaults.Log.TimeFormat)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("log.no_color", defaults.Log.NoColor)
	viper.SetDefault("log.json", defaults.Log.JSON)
	viper.SetDefault("log.no_terminal", defaults.Log.NoTerminal)
	viper.SetDefault("log.rotation.max_size", defaults.Log.Rotation.MaxSize)
	viper.SetDefault("log.rotation.max_backups", defaults.Log.Rotation.MaxBackups)
	viper.SetDefault("log.rotation.max_age", defaults.Log.Rotation.MaxAge)
	viper.SetDefault("log.rotation.compress", defaults.Log.Rotation.Compress)

	viper.SetDefault("store.type", defaults.Store.Type)
	viper.SetDefault("store.host", defaults.Store.Host)
	viper.SetDefault("store.port", defaults.Store.Port)
	viper.SetDefault("store.write", defaults.Store.Write)
	viper.SetDefault("store.dbname", defaults.Store.DBName)
	viper.SetDefault("store.timeout", defaults.Store.Timeout)
	viper.SetDefault("store.path", defaults.Store.Path)
	viper.SetDefault("store.user", defaults.Store.User)
	viper.SetDefault("store.password", defaults.Store.Password)
	viper.SetDefault("store.sslmode", defaults.Store.SSLMode)
	viper.SetDefault("store.token", defaults.Store.Token)
	viper.SetDefault("store.datacenter", defaults.Store.Datacenter)
	viper.SetDefault("store.prefix", defaults.Store.Prefix)
	viper.SetDefault("store.bucket", defaults.Store.Bucket)
	viper.SetDefault("store.access_key", defaults.Store.AccessKey)
	viper.SetDefault("store.secret_key", defaults.Store.SecretKey)
	viper.SetDefault("store.use_ssl", defaults.Store.UseSSL)
}
