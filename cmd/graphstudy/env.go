package main

import "os"

// getEnv returns the named environment variable, or def if it is unset
// or empty, mirroring the teacher's own GetEnv default-with-override
// idiom without needing its logger-aware variant for a short-lived CLI
// process.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
