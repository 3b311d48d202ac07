// ABOUTME: Entry point for vcore-usage CLI
// ABOUTME: Reports Anypoint vCore consumption per environment and application

package main

import (
	"fmt"
	"os"

	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
