// Command usermgr creates, fetches, updates or deletes one user account.
//
//	usermgr [--config file.yaml] [--env-file .env] [--memory] create --username U --password P --email E
//	usermgr fetch (--guid G | --email E)
//	usermgr update --guid G [--name N] [--password P] [--email E] [--phone label=number ...]
//	usermgr delete (--email E | --guid G)
//
// Connection settings come from MONGO_* environment variables or the YAML file.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newApp(os.Stdout, mongoConnector).Run(os.Args); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
