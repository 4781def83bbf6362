// cmd/nodelink/config_cmds.go
package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tamzrod/nodelink/internal/config"
)

var addMachine config.MachineConfig

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: version %d, %d machines\n", cfg.Version, len(cfg.Machines))
		return nil
	},
}

var machinesCmd = &cobra.Command{
	Use:   "machines",
	Short: "Inspect and edit the machine list",
}

var machinesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured machines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store := config.NewStore(cfg)

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tADDRESS\tHOSE\tTORCH\tCURRENT")
		for _, m := range store.Machines() {
			cur := ""
			if m.Name == cfg.CurrentMachine {
				cur = "*"
			}
			fmt.Fprintf(tw, "%s\t%s:%d\t%s\t%s\t%s\n", m.Name, m.IP, m.Port, m.HoseLength, m.TorchStyle, cur)
		}
		return tw.Flush()
	},
}

var machinesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a machine and save the config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := addMachine
		m.Name = args[0]
		return editConfig(func(s *config.Store) error { return s.AddMachine(m) })
	},
}

var machinesRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a machine and save the config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editConfig(func(s *config.Store) error { return s.RemoveMachine(args[0]) })
	},
}

var machinesSelectCmd = &cobra.Command{
	Use:   "select <name>",
	Short: "Make a machine current and remember it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := editConfig(func(s *config.Store) error { return s.Select(args[0]) }); err != nil {
			return err
		}
		if lastSelectedPath != "" {
			return config.SaveLastSelected(lastSelectedPath, args[0])
		}
		return nil
	},
}

func init() {
	f := machinesAddCmd.Flags()
	f.StringVar(&addMachine.IP, "ip", "", "Node IP address")
	f.IntVar(&addMachine.Port, "port", 80, "Node port")
	f.StringVar(&addMachine.HoseLength, "hose-length", "7.6 m", "Hose length (metric label)")
	f.StringVar(&addMachine.TorchStyle, "torch-style", config.DefaultTorchStyle, "Torch style (21 or 22)")

	machinesCmd.AddCommand(machinesListCmd, machinesAddCmd, machinesRemoveCmd, machinesSelectCmd)
	rootCmd.AddCommand(validateCmd, machinesCmd)
}

// editConfig applies fn to the loaded config and saves it back.
func editConfig(fn func(s *config.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store := config.NewStore(cfg)
	if err := fn(store); err != nil {
		return err
	}
	return config.Save(cfgPath, store.Config())
}
