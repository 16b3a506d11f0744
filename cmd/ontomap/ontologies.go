// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ontomap/internal/services"
)

var ontologiesCmd = &cobra.Command{
	Use:   "ontologies",
	Short: "List known ontologies and curated combinations",
	Long: `Ontologies prints the catalog of ontology acronyms accepted by the
--ontologies flag, plus named combinations curated for common research
domains.`,
	Run: func(cmd *cobra.Command, args []string) {
		codes := make([]string, 0, len(services.OntologyCatalog))
		for code := range services.OntologyCatalog {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		fmt.Println("Ontologies:")
		for _, code := range codes {
			fmt.Fprintf(os.Stdout, "  %-10s %s\n", code, services.OntologyCatalog[code])
		}

		names := make([]string, 0, len(services.OntologyCombinations))
		for name := range services.OntologyCombinations {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Println("\nCurated combinations:")
		for _, name := range names {
			fmt.Fprintf(os.Stdout, "  %-18s %s\n", name, services.OntologyCombinations[name])
		}
	},
}

func init() {
	rootCmd.AddCommand(ontologiesCmd)
}
