package cmd

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/gartfeo/navlink/dialect"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// idsCmd represents the ids command
var idsCmd = &cobra.Command{
	Use:   "ids",
	Short: "Show the reserved navlink id block and current assignments",
	Long: `The navlink dialect reserves message ids ` + fmt.Sprint(dialect.BlockLo) + `-` + fmt.Sprint(dialect.BlockHi) + ` to stay clear
of upstream assignments. New messages must take an id from the sub-range
matching their purpose.`,
	Run: runIds,
}

func init() {
	rootCmd.AddCommand(idsCmd)
}

func runIds(cmd *cobra.Command, args []string) {
	configureLogging()

	fmt.Println("Reserved ranges:")
	ranges := tablewriter.NewWriter(os.Stdout)
	ranges.SetHeader([]string{"From", "To", "Purpose"})
	for _, r := range dialect.Ranges() {
		ranges.Append([]string{strconv.Itoa(int(r.Lo)), strconv.Itoa(int(r.Hi)), r.Purpose})
	}
	ranges.Render()

	set := dialect.Navlink()
	messages := append([]*dialect.Message(nil), set.Messages...)
	sort.Slice(messages, func(i, j int) bool { return messages[i].ID < messages[j].ID })

	fmt.Println("\nAssignments:")
	assigned := tablewriter.NewWriter(os.Stdout)
	assigned.SetHeader([]string{"ID", "Message", "Range"})
	for _, m := range messages {
		r, ok := dialect.RangeFor(m.ID)
		if !ok {
			continue
		}
		assigned.Append([]string{strconv.Itoa(int(m.ID)), m.Name, r.Purpose})
	}
	assigned.Render()
}
