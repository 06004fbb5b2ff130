package cmd

import (
	"os"
	"sort"
	"strconv"

	"github.com/gartfeo/navlink/dialect"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// messagesCmd represents the messages command
var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "List navlink messages and their parameters",
	Run:   runMessages,
}

func init() {
	rootCmd.AddCommand(messagesCmd)

	messagesCmd.Flags().String("dialect", "", "Dialect XML root file (default: built-in navlink definitions)")
}

func runMessages(cmd *cobra.Command, args []string) {
	configureLogging()

	set := loadDialect(cmd.Flag("dialect").Value.String())

	messages := append([]*dialect.Message(nil), set.Messages...)
	sort.Slice(messages, func(i, j int) bool { return messages[i].ID < messages[j].ID })

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Message", "ID", "Parameters"})
	table.SetRowLine(true)

	for _, m := range messages {
		if !dialect.InBlock(m.ID) {
			continue
		}
		table.Append([]string{m.Name, strconv.Itoa(int(m.ID)), paramList(m)})
	}

	table.Render()
}
