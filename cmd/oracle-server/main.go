// Command oracle-server serves the trained discriminator model over
// HTTP (spec.md §4.12, action C14): a single POST /v1/predict behind
// bearer auth, wired the same way the teacher wires its own API
// server in cmd/main.go — load configuration from the environment,
// build the collaborators, listen.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/5gon12eder/graphstudy-go/internal/config"
	"github.com/5gon12eder/graphstudy-go/internal/oracle"
	"github.com/5gon12eder/graphstudy-go/internal/oraclehttp"
	"github.com/5gon12eder/graphstudy-go/internal/platform/logger"
	"github.com/5gon12eder/graphstudy-go/internal/store"
)

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	log := logger.New(logger.Production)

	dataDir := getEnv("MSC_DATA_DIR", "data")
	configDir := getEnv("MSC_CONFIG_DIR", "config")
	addr := ":" + getEnv("PORT", "8090")
	secret := getEnv("MSC_ORACLE_JWT_SECRET", "")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "oracle-server: MSC_ORACLE_JWT_SECRET must be set")
		os.Exit(1)
	}

	st, err := store.Open(dataDir, store.OpenOptions{Backend: store.SQLite, Create: false}, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "oracle-server: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(configDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "oracle-server: %v\n", err)
		os.Exit(1)
	}
	o, err := oracle.New(context.Background(), st, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "oracle-server: %v\n", err)
		os.Exit(1)
	}

	router := oraclehttp.NewRouter(oraclehttp.RouterConfig{Oracle: o, JWTSecretKey: secret})
	log.Info("oracle server listening", "addr", addr)
	if err := router.Run(addr); err != nil {
		log.Fatal("oracle server stopped", "error", err.Error())
	}
}
