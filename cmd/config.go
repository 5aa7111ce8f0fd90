package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "unityloc"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	recordsFlagName        = "records"
	plainFlagName          = "plain"
	verboseFlagName        = "verbose"
	excludeFlagName        = "exclude"
	excludePatternFlagName = "exclude-pattern"

	scanMinLengthKey  = "scan.min_length"
	scanLanguageKey   = "scan.language"
	scanKeywordsKey   = "scan.reserved_keywords"
	scanBytecodeKey   = "scan.bytecode"
	scanObjectsKey    = "scan.object_fields"
	scanBlobsKey      = "scan.raw_blobs"
	excludeConfigKey  = "scan.exclude"
	excludePatternKey = "scan.exclude_patterns"

	sessionCacheSizeKey = "session.cache_size"

	envPrefix = "UNITYLOC"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultRecordsFile = "unityloc-records.yaml"
	defaultMinLength   = 2
	defaultLanguage    = "any"

	defaultLogFilename   = ".unityloc.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(recordsFlagName, defaultRecordsFile)
	viper.SetDefault(scanMinLengthKey, defaultMinLength)
	viper.SetDefault(scanLanguageKey, defaultLanguage)
	viper.SetDefault(scanKeywordsKey, true)
	viper.SetDefault(scanBytecodeKey, true)
	viper.SetDefault(scanObjectsKey, true)
	viper.SetDefault(scanBlobsKey, true)
	viper.SetDefault(excludeConfigKey, []string{})
	viper.SetDefault(excludePatternKey, []string{})
	viper.SetDefault(sessionCacheSizeKey, 32)

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
// Recoverable scan/patch errors surface only here, never to the caller.
func configureLogger(verbose bool) {
	logPath := viper.GetString(logFilenameKey)
	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
