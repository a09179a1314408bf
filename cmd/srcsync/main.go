// Srcsync keeps build-system source lists in sync with the source tree.
package main

import "github.com/albertocavalcante/srcsync/cmd/srcsync/internal/cli"

func main() {
	cli.Execute()
}
