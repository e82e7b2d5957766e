// Command dbexport exports an Azure SQL database to a .bacpac blob through
// the SQL DAC import/export service.
//
// Usage:
//
//	dbexport exportdatabase --db <connection string> -s <storage> -c <container> [--dac <url>] [--what-if]
//	dbexport environment create <name> --backup-storage <storage> --sql-dac-endpoint <url>
//
// Environment:
//
//	DBEXPORT_DB_CONNECTION          default for --db
//	DBEXPORT_ENVIRONMENT            active environment profile
//	DBEXPORT_HOME                   state directory (default ~/.dbexport)
//	DBEXPORT_AZURE_SUBSCRIPTION_ID  enables storage key lookup through ARM
//	DBEXPORT_AZURE_RESOURCE_GROUP   resource group of the storage account
//	DBEXPORT_AZURE_ENDPOINT_URL     ARM endpoint override (simulator)
//	OTEL_EXPORTER_OTLP_ENDPOINT     enables tracing
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
