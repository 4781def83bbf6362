// cmd/nodelink/ops.go
package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamzrod/nodelink/internal/domain"
)

var opTimeout time.Duration

var (
	selectPassword string
	selectStatic   bool
	selectIP       string
	selectSubnet   string
	selectGateway  string
	nodeIPLabel    string
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the selected node answers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			if err := s.client.CheckConnection(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "pong")
			return nil
		})
	},
}

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List the access points the node can see",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			nets, err := s.client.ListNetworks(ctx)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SSID\tBSSID\tRSSI\tCH\tSECURITY\tCURRENT")
			for _, n := range nets {
				cur := ""
				if n.Current == 1 {
					cur = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n", n.SSID, n.BSSID, n.RSSI, n.Channel, n.EncryptType, cur)
			}
			return tw.Flush()
		})
	},
}

var selectNetworkCmd = &cobra.Command{
	Use:   "select-network <bssid>",
	Short: "Join the node to an access point",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sel := domain.SelectNetworkArgs{BSSID: args[0]}
		if cmd.Flags().Changed("password") {
			sel.Password = &selectPassword
		}
		if selectStatic {
			sel.Static = &domain.StaticIP{IP: selectIP, Subnet: selectSubnet, Gateway: selectGateway}
		}

		return withSession(cmd, func(ctx context.Context, s *session) error {
			if err := s.client.SelectNetwork(ctx, sel); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "network selected")
			return nil
		})
	},
}

var nodeIPCmd = &cobra.Command{
	Use:   "node-ip",
	Short: "Show the station address the node obtained",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			ip, err := s.client.GetNodeIP(ctx, nodeIPLabel)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ip)
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&opTimeout, "timeout", 30*time.Second, "Deadline for one-shot operations")

	selectNetworkCmd.Flags().StringVar(&selectPassword, "password", "", "Network password (omit for open networks)")
	selectNetworkCmd.Flags().BoolVar(&selectStatic, "static", false, "Use static addressing instead of DHCP")
	selectNetworkCmd.Flags().StringVar(&selectIP, "ip", "", "Static IP")
	selectNetworkCmd.Flags().StringVar(&selectSubnet, "subnet", "", "Static subnet mask")
	selectNetworkCmd.Flags().StringVar(&selectGateway, "gateway", "", "Static gateway")

	nodeIPCmd.Flags().StringVar(&nodeIPLabel, "label", "Node IP", "Label used in validation messages")

	rootCmd.AddCommand(pingCmd, networksCmd, selectNetworkCmd, nodeIPCmd)
}

// withSession opens a node session bounded by --timeout and runs fn.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
	defer cancel()

	return fn(ctx, s)
}
