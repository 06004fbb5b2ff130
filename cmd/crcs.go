package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gartfeo/navlink/check"
	"github.com/gartfeo/navlink/dialect"
	"github.com/gartfeo/navlink/headers"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// crcsCmd represents the crcs command
var crcsCmd = &cobra.Command{
	Use:   "crcs",
	Short: "Check navlink message CRCs match across components",
	Long: `Verifies that CRC extras for navlink messages are consistent between the
dialect definitions, the ArduPilot SITL build headers and the mavlink-router
C headers. A mismatch means the receiver drops the message without any error,
which is the hardest failure of the pipeline to spot by hand.`,
	Run: runCrcs,
}

func init() {
	rootCmd.AddCommand(crcsCmd)

	crcsCmd.Flags().String("ardupilot", "~/ardupilot", "Path to the ardupilot checkout")
	crcsCmd.Flags().String("router", "~/mavlink-router", "Path to the mavlink-router checkout")
	crcsCmd.Flags().String("dialect", "", "Dialect XML root file (default: built-in navlink definitions)")
	crcsCmd.Flags().BoolP("verbose", "v", false, "Show all CRC values")
}

func loadDialect(path string) *dialect.Dialect {
	if path == "" {
		return dialect.Navlink()
	}

	set, err := dialect.ParseFile(path)
	if err != nil {
		log.FATAL.Fatal(err)
	}

	return set
}

func runCrcs(cmd *cobra.Command, args []string) {
	configureLogging()

	set := loadDialect(cmd.Flag("dialect").Value.String())

	reference := check.FromDialect(set)
	sources := []check.Source{reference}

	ardupilotHeader := headers.ArduPilotHeader(expand(cmd.Flag("ardupilot").Value.String()))
	if src, err := check.FromHeader("ardupilot", ardupilotHeader, set); err != nil {
		log.WARN.Printf("could not read ArduPilot headers (run ./waf plane first): %v", err)
	} else {
		log.INFO.Printf("ardupilot: %d navlink messages", len(src.Entries))
		sources = append(sources, src)
	}

	routerHeader := headers.RouterHeader(expand(cmd.Flag("router").Value.String()))
	if src, err := check.FromHeader("router", routerHeader, set); err != nil {
		log.WARN.Printf("could not read mavlink-router headers: %v", err)
	} else {
		log.INFO.Printf("router: %d navlink messages", len(src.Entries))
		sources = append(sources, src)
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		displayCrcs(reference)
	}

	var failed bool
	for i := 0; i < len(sources); i++ {
		for j := i + 1; j < len(sources); j++ {
			issues := check.Compare(sources[i], sources[j])
			if len(issues) == 0 {
				fmt.Printf("%s vs %s: OK\n", sources[i].Name, sources[j].Name)
				continue
			}

			failed = true
			fmt.Printf("%s vs %s: %d error(s)\n", sources[i].Name, sources[j].Name, len(issues))
			for _, issue := range issues {
				fmt.Println("  -", issue)
			}
		}
	}

	if failed {
		fmt.Println(`
To fix CRC mismatches regenerate the C headers from the dialect root file,
then rebuild mavlink-router:

	mavgen.py --lang=C --wire-protocol=2.0 -o . message_definitions/ardupilotmega.xml
	cd mavlink-router && ninja -C build`)
		os.Exit(1)
	}
}

func displayCrcs(src check.Source) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Message", "ID", "CRC", "Len"})

	ids := make([]uint32, 0, len(src.Entries))
	for id := range src.Entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		e := src.Entries[id]
		table.Append([]string{e.Name, strconv.Itoa(int(id)), strconv.Itoa(int(e.CRCExtra)), strconv.Itoa(e.Len)})
	}

	table.Render()
	fmt.Println()
}

func expand(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
