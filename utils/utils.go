package utils

import (
	"os"
	"path/filepath"
)

const appName = "ui5-quality-checks"

func CacheDir() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return filepath.Join(cacheDir, appName)
}

// ScheduleDir is where the downloaded support schedule is kept between runs.
func ScheduleDir() string {
	return filepath.Join(CacheDir(), "schedule")
}

func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return true, err
}

func LookupEnv(key, defaultValue string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultValue
}
