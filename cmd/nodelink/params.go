// cmd/nodelink/params.go
package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tamzrod/nodelink/internal/domain"
)

var paramsUnlocked bool

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Read or write node parameters",
}

var paramsGetCmd = &cobra.Command{
	Use:   "get <id>...",
	Short: "Read parameters by id (decimal or 0x hex)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int, 0, len(args))
		for _, a := range args {
			id, err := parseID(a)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}

		return withSession(cmd, func(ctx context.Context, s *session) error {
			vals, err := s.client.GetParams(ctx, ids)
			if err != nil {
				return err
			}
			for _, v := range vals {
				fmt.Fprintf(cmd.OutOrStdout(), "%d=%v\n", v.ID, v.Value)
			}
			return nil
		})
	},
}

var paramsSetCmd = &cobra.Command{
	Use:   "set <id=value>...",
	Short: "Write parameters; the write is lock-bracketed unless --unlocked",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vals := make([]domain.ParamValue, 0, len(args))
		for _, a := range args {
			pv, err := parseAssignment(a)
			if err != nil {
				return err
			}
			vals = append(vals, pv)
		}

		return withSession(cmd, func(ctx context.Context, s *session) error {
			if err := s.client.SetParams(ctx, vals, !paramsUnlocked); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d parameters written\n", len(vals))
			return nil
		})
	},
}

var processIDCmd = &cobra.Command{
	Use:   "process-id",
	Short: "Read the current process id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			v, err := s.client.GetProcessID(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		})
	},
}

func init() {
	paramsSetCmd.Flags().BoolVar(&paramsUnlocked, "unlocked", false, "Skip the unlock/lock bracket")
	paramsCmd.AddCommand(paramsGetCmd, paramsSetCmd, processIDCmd)
	rootCmd.AddCommand(paramsCmd)
}

func parseID(s string) (int, error) {
	id, err := strconv.ParseInt(s, 0, 32)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid parameter id %q", s)
	}
	return int(id), nil
}

// parseAssignment reads id=value. Values are integers when they parse
// as one, then floats, else strings.
func parseAssignment(s string) (domain.ParamValue, error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok {
		return domain.ParamValue{}, fmt.Errorf("expected id=value, got %q", s)
	}
	id, err := parseID(k)
	if err != nil {
		return domain.ParamValue{}, err
	}

	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return domain.PV(id, n), nil
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return domain.ParamValue{ID: id, Value: f}, nil
	}
	return domain.ParamValue{ID: id, Value: v}, nil
}
