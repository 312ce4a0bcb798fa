package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/reflex-dodger/internal/sentinel"
)

var probesCmd = &cobra.Command{
	Use:   "probes",
	Short: "List the fair-play probes",
	Long: `Shows every probe the fair-play monitor can arm, in arming order, with
the suspicion each adds. A session is banned once a single signal reaches
120 or the accumulated score reaches 140.`,
	Args: cobra.NoArgs,
	Run:  runProbes,
}

func runProbes(_ *cobra.Command, _ []string) {
	probes := sentinel.Probes()

	maxNameLen := 4 // "Name" header
	for _, p := range probes {
		maxNameLen = max(maxNameLen, len(p.Name))
	}

	fmt.Printf("  %-*s  %-8s  %-8s  %s\n", maxNameLen, "Name", "Severity", "Variant", "Description")
	fmt.Printf("  %-*s  %-8s  %-8s  %s\n", maxNameLen, "----", "--------", "-------", "-----------")

	for _, p := range probes {
		variant := "base"
		if p.Extended {
			variant = "extended"
		}
		fmt.Printf("  %-*s  %-8s  %-8s  %s\n", maxNameLen, p.Name, p.Severity, variant, p.Title)
	}

	fmt.Println()
	fmt.Printf("Threshold %d, decay %d every %s.\n",
		sentinel.DefaultThreshold, sentinel.DecayAmount, sentinel.DecayInterval)
	fmt.Println("Run 'dodger play --extended' to arm the extended probes.")
}
