package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fascase/fascase/configs"
	"github.com/fascase/fascase/internal/config"
	"github.com/fascase/fascase/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage the fascase configuration.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/fascase/config.yaml)
  3. Working-directory config (fascase.yaml)
  4. Environment variables (FASCASE_*)`,
		Example: `  # Create user config from template
  fascase config init

  # Show effective configuration (merged from all sources)
  fascase config show

  # Print user config file path
  fascase config path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigRestoreCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create user configuration file",
		Long: `Create the user configuration file from a commented template.

The file is created at ~/.config/fascase/config.yaml (or
$XDG_CONFIG_HOME/fascase/config.yaml if XDG_CONFIG_HOME is set).`,
		Example: `  # Create user config
  fascase config init

  # Overwrite existing config
  fascase config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long: `Show the effective configuration after merging all sources.

By default shows the merged result of defaults, the user config, the
working-directory fascase.yaml and FASCASE_* environment variables.`,
		Example: `  # Show merged configuration
  fascase config show

  # Show as JSON
  fascase config show --json

  # Show only the user config
  fascase config show --source user`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, jsonOutput, source)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, user, dir, defaults")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		Long:  `Print the path to the user configuration file.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return nil
		},
	}
}

func newConfigRestoreCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "restore [backup-file]",
		Short: "Restore user configuration from a backup",
		Long: `Restore the user configuration from a backup copy.

Backups are created automatically when 'config init --force' overwrites
an existing file. Without arguments the newest backup is restored; the
config being replaced is backed up first.`,
		Example: `  # List available backups
  fascase config restore --list

  # Restore the newest backup
  fascase config restore

  # Restore a specific backup
  fascase config restore ~/.config/fascase/config.yaml.bak.20260831-120000`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigRestore(cmd, args, list)
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "List available backups")

	return cmd
}

func runConfigRestore(cmd *cobra.Command, args []string, list bool) error {
	out := output.New(cmd.OutOrStdout())

	backups, err := config.ListUserConfigBackups()
	if err != nil {
		return err
	}

	if list {
		if len(backups) == 0 {
			out.Warning("No config backups found")
			return nil
		}
		out.Statusf("📋", "Backups (newest first):")
		for _, b := range backups {
			out.Status("", "  "+b)
		}
		return nil
	}

	var backupPath string
	if len(args) == 1 {
		backupPath = args[0]
	} else {
		if len(backups) == 0 {
			return fmt.Errorf("no config backups found in %s", config.GetUserConfigDir())
		}
		backupPath = backups[0]
	}

	if err := config.RestoreUserConfig(backupPath); err != nil {
		return err
	}

	out.Success("Restored user configuration")
	out.Statusf("📁", "From: %s", backupPath)
	out.Statusf("📁", "To:   %s", config.GetUserConfigPath())
	return nil
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())

	configPath := config.GetUserConfigPath()
	configDir := config.GetUserConfigDir()

	if config.UserConfigExists() && !force {
		out.Warning("User configuration already exists")
		out.Statusf("📁", "Location: %s", configPath)
		out.Status("💡", "Use --force to overwrite with the template")
		return nil
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", configDir, err)
	}

	if config.UserConfigExists() {
		backupPath, err := config.BackupUserConfig()
		if err != nil {
			return fmt.Errorf("failed to back up existing config: %w", err)
		}
		out.Statusf("💾", "Backed up existing config to %s", backupPath)
	}

	if err := os.WriteFile(configPath, []byte(configs.UserConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out.Success("Created user configuration")
	out.Statusf("📁", "Location: %s", configPath)
	out.Newline()
	out.Status("📋", "Next steps:")
	out.Status("", "  1. Edit the file to customize settings")
	out.Status("", "  2. Export GEMINI_API_KEY if using the gemini provider")
	out.Status("", "  3. Run 'fascase config show' to verify")

	return nil
}

func runConfigShow(cmd *cobra.Command, jsonOutput bool, source string) error {
	out := output.New(cmd.OutOrStdout())

	var cfg *config.Config
	var sourceDesc string

	switch source {
	case "merged":
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		cfg, err = config.Load(cwd)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		sourceDesc = "merged (defaults + user + dir + env)"

	case "user":
		configPath := config.GetUserConfigPath()
		if !config.UserConfigExists() {
			out.Warning("No user configuration file found")
			out.Statusf("📁", "Expected at: %s", configPath)
			out.Status("💡", "Run 'fascase config init' to create one")
			return nil
		}
		var err error
		cfg, err = readConfigFile(configPath)
		if err != nil {
			return err
		}
		sourceDesc = fmt.Sprintf("user (%s)", configPath)

	case "dir":
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		var configPath string
		for _, name := range []string{"fascase.yaml", "fascase.yml"} {
			p := filepath.Join(cwd, name)
			if _, statErr := os.Stat(p); statErr == nil {
				configPath = p
				break
			}
		}
		if configPath == "" {
			out.Warning("No fascase.yaml in the working directory")
			out.Statusf("📁", "Expected at: %s", filepath.Join(cwd, "fascase.yaml"))
			return nil
		}
		cfg, err = readConfigFile(configPath)
		if err != nil {
			return err
		}
		sourceDesc = fmt.Sprintf("dir (%s)", configPath)

	case "defaults":
		cfg = config.NewConfig()
		sourceDesc = "defaults (hardcoded)"

	default:
		return fmt.Errorf("invalid source: %s (use: merged, user, dir, defaults)", source)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	out.Statusf("📋", "Configuration source: %s", sourceDesc)
	out.Newline()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func readConfigFile(path string) (*config.Config, error) {
	cfg := config.NewConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
