package logger

import (
	"log"
	"os"
)

func DebugLog(format string, args ...any) {
	if os.Getenv("DEBUG") == "1" {
		log.Printf("[DEBUG] "+format, args...)
	}
}

func Warnf(format string, args ...any) {
	log.Printf("[WARN] "+format, args...)
}
