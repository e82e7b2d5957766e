// Command dbexport-sim runs the export simulator: a single-account Blob
// service, the ARM storage listKeys call and a DAC import/export endpoint.
//
// Configure with environment variables:
//
//	SIM_LISTEN_ADDR     listen address (default ":4570")
//	SIM_LOG_LEVEL       log level: trace, debug, info, warn, error (default "info")
//	SIM_ACCOUNT_NAME    storage account name (default "devstoreaccount1")
//	SIM_ACCOUNT_KEY     storage account key, base64
//	SIM_SQL_USER        accepted SQL login (optional)
//	SIM_SQL_PASSWORD    accepted SQL password (optional)
//	SIM_COMPLETE_AFTER  status polls before an export completes (default 1)
//	SIM_PORT            overrides the port of SIM_LISTEN_ADDR
package main

import (
	"log"
	"os"

	sim "github.com/sockerless/dbexport/simulator"
)

func main() {
	cfg := sim.ConfigFromEnv()
	if port := os.Getenv("SIM_PORT"); port != "" {
		cfg.ListenAddr = ":" + port
	}

	srv := sim.NewServer(cfg)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
