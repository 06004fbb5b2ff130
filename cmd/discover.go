package cmd

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/gartfeo/navlink/discover"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover [host ...] [subnet ...]",
	Short: "Scan for live MAVLink endpoints",
	Long: `Scans hosts for mavlink-router UDP endpoints and SITL console ports.
Useful after simulation restarts to see which ports are still occupied by
stale processes. Without arguments only the local machine is scanned.`,
	Run: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().Bool("subnet", false, "Also scan the local subnet")
	discoverCmd.Flags().Int("workers", 20, "Number of parallel scan workers")
}

// ParseHostIPNet converts host or cidr into a host list
func ParseHostIPNet(arg string) (res []string) {
	if ip := net.ParseIP(arg); ip != nil {
		return []string{ip.String()}
	}

	_, ipnet, err := net.ParseCIDR(arg)

	// simple host
	if err != nil {
		return []string{arg}
	}

	// check subnet size
	if bits, _ := ipnet.Mask.Size(); bits < 24 {
		log.INFO.Println("skipping large subnet:", ipnet)
		return
	}

	ips, err := discover.IPsFromSubnet(arg)
	if err != nil {
		log.FATAL.Fatal(err)
	}

	return ips
}

func runDiscover(cmd *cobra.Command, args []string) {
	configureLogging()

	var hosts []string
	for _, arg := range args {
		hosts = append(hosts, ParseHostIPNet(arg)...)
	}

	if len(hosts) == 0 {
		if subnet, _ := cmd.Flags().GetBool("subnet"); subnet {
			var err error
			if hosts, err = discover.Hosts(false); err != nil {
				log.FATAL.Fatal(err)
			}
		} else {
			hosts = []string{"127.0.0.1"}
		}
	}

	workers, _ := cmd.Flags().GetInt("workers")
	res := discover.Work(log, workers, hosts)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Host", "Port", "Kind", "Details"})
	table.SetAutoMergeCells(true)
	table.SetRowLine(true)

	for _, hit := range res {
		details := ""
		if hit.Details != nil {
			details = fmt.Sprintf("%+v", hit.Details)
		}
		table.Append([]string{hit.Host, strconv.Itoa(hit.Port), hit.ID, details})
	}

	fmt.Println()
	table.Render()
}
