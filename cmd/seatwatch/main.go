// Command seatwatch looks up class sections and seat counts, and serves
// them over HTTP and MCP.
package main

import (
	"fmt"
	"os"

	"github.com/aggieseek/seatwatch/cli"
	"github.com/morikuni/failure/v2"
)

func main() {
	if err := cli.Run(); err != nil {
		var userMessage string
		if fmsg := failure.MessageOf(err); fmsg != "" {
			userMessage = fmsg.String()
		} else {
			userMessage = err.Error()
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", userMessage)
		os.Exit(1)
	}
}
