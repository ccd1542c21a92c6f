// The eqos command exercises the DMA core model from the command line.
package main

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var rootCmd = &cobra.Command{
	Use: "eqos",
	Short: "eqos emulates the descriptor-ring DMA core of a " +
		"Quality-of-Service Ethernet MAC.",
	Long: `eqos emulates the descriptor-ring DMA core of a ` +
		`Quality-of-Service Ethernet MAC: the receive and transmit ring ` +
		`engines, frame assembly with TCP segmentation offload, and ` +
		`interrupt aggregation.`,
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
