// Command tlsprobe checks a MongoDB connection end to end.
// It connects using the configured settings (usually with TLS),
// inserts one document, queries for it and prints what was found.
//
//	tlsprobe [--config file.yaml] [--env-file .env] [--collection someTable]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
