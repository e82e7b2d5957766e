package main

import (
	"fmt"
	"net/url"

	"github.com/sockerless/dbexport/core"
	"github.com/spf13/cobra"
)

func newEnvironmentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "environment",
		Aliases: []string{"env"},
		Short:   "Manage environment profiles",
	}
	cmd.AddCommand(
		newEnvironmentCreateCmd(a),
		newEnvironmentListCmd(a),
		newEnvironmentShowCmd(a),
		newEnvironmentUseCmd(a),
		newEnvironmentDeleteCmd(a),
		newEnvironmentCurrentCmd(a),
	)
	return cmd
}

func newEnvironmentCreateCmd(a *app) *cobra.Command {
	var storage, endpoint string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create or replace an environment profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if endpoint != "" {
				if u, err := url.Parse(endpoint); err != nil || u.Scheme == "" || u.Host == "" {
					return fmt.Errorf("invalid --sql-dac-endpoint %q", endpoint)
				}
			}
			reg, err := core.LoadRegistry(core.RegistryPath())
			if err != nil {
				return err
			}
			if err := reg.Put(name, storage, endpoint); err != nil {
				return err
			}
			if err := reg.Save(); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Environment %q created\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&storage, "backup-storage", "", "storage connection string or account name")
	cmd.Flags().StringVar(&endpoint, "sql-dac-endpoint", "", "SQL DAC import/export endpoint URL")
	return cmd
}

func newEnvironmentListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List environment profiles",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := core.LoadRegistry(core.RegistryPath())
			if err != nil {
				return err
			}
			names := reg.Names()
			if len(names) == 0 {
				fmt.Fprintln(a.stdout, "No environments configured.")
				return nil
			}
			active := core.ActiveEnvironmentName()
			for _, name := range names {
				marker := "  "
				if name == active {
					marker = "* "
				}
				env, err := reg.Lookup(name)
				if err != nil {
					fmt.Fprintf(a.stdout, "%s%s\n", marker, name)
					continue
				}
				fmt.Fprintf(a.stdout, "%s%-20s (%s)\n", marker, name, env.BackupStorage.Name)
			}
			return nil
		},
	}
}

func newEnvironmentShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Show an environment profile (default: the active one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := core.ActiveEnvironmentName()
			if len(args) == 1 {
				name = args[0]
			}
			if name == "" {
				return fmt.Errorf("no environment given and none is active")
			}
			reg, err := core.LoadRegistry(core.RegistryPath())
			if err != nil {
				return err
			}
			env, err := reg.Lookup(name)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.stdout, "Environment: %s\n", env.Name)
			if s := env.BackupStorage; !s.IsZero() {
				fmt.Fprintf(a.stdout, "Backup storage: %s\n", s.Name)
				fmt.Fprintf(a.stdout, "Blob endpoint: %s\n", s.ServiceURL())
				if s.Key != "" {
					fmt.Fprintln(a.stdout, "Account key: (set)")
				}
			}
			if env.SqlDacEndpoint != "" {
				fmt.Fprintf(a.stdout, "SQL DAC endpoint: %s\n", env.SqlDacEndpoint)
			}
			return nil
		},
	}
}

func newEnvironmentUseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Set the active environment profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			reg, err := core.LoadRegistry(core.RegistryPath())
			if err != nil {
				return err
			}
			if _, err := reg.Lookup(name); err != nil {
				return err
			}
			if err := core.SetActiveEnvironment(name); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Switched to environment %q\n", name)
			return nil
		},
	}
}

func newEnvironmentDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete an environment profile",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			reg, err := core.LoadRegistry(core.RegistryPath())
			if err != nil {
				return err
			}
			if !reg.Delete(name) {
				return fmt.Errorf("environment %q not found", name)
			}
			if err := reg.Save(); err != nil {
				return err
			}
			if core.ActiveEnvironmentName() == name {
				if err := core.ClearActiveEnvironment(); err != nil {
					return err
				}
			}
			fmt.Fprintf(a.stdout, "Environment %q deleted\n", name)
			return nil
		},
	}
}

func newEnvironmentCurrentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Print the active environment profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name := core.ActiveEnvironmentName()
			if name == "" {
				fmt.Fprintln(a.stdout, "No active environment")
				return nil
			}
			fmt.Fprintln(a.stdout, name)
			return nil
		},
	}
}
