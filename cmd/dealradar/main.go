// Command dealradar is the command-line client for the DealRadar API.
package main

import "github.com/turtacn/DealRadar/internal/interfaces/cli"

func main() {
	cli.Execute()
}
