package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcus/mfx/internal/config"
	"github.com/marcus/mfx/internal/output"
	"github.com/marcus/mfx/internal/workdir"
	"github.com/spf13/cobra"
)

var (
	version    string
	baseDir    string
	configPath string
	logLevel   string
	logFormat  string
	backend    string
	workspace  string

	cfg *config.Config
)

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "mfx",
	Short: "Mainframe explorer trees from the command line",
	Long: `mfx - Browse data sets, USS files and jobs as trees.

Sessions, favorites and search/file history are kept in a settings store shared
with every other mfx window, so state carries across invocations.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command
func Execute() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// nameWithAliases returns "name, alias1, alias2" if aliases exist, else just "name"
func nameWithAliases(cmd *cobra.Command) string {
	if len(cmd.Aliases) > 0 {
		return cmd.Name() + ", " + strings.Join(cmd.Aliases, ", ")
	}
	return cmd.Name()
}

func init() {
	cobra.OnInitialize(initBaseDir)

	// Add custom template function for showing aliases
	cobra.AddTemplateFunc("nameWithAliases", nameWithAliases)

	// Custom usage template that shows aliases inline
	usageTemplate := `Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{if eq (len .Groups) 0}}

Available Commands:{{range $cmds}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad (nameWithAliases .) (add .NamePadding 8)}} {{.Short}}{{end}}{{end}}{{else}}{{range $group := .Groups}}

{{.Title}}{{range $cmds}}{{if (and (eq .GroupID $group.ID) (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad (nameWithAliases .) (add .NamePadding 8)}} {{.Short}}{{end}}{{end}}{{end}}{{if not .AllChildCommandsHaveGroup}}

Additional Commands:{{range $cmds}}{{if (and (eq .GroupID "") (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad (nameWithAliases .) (add .NamePadding 8)}} {{.Short}}{{end}}{{end}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`

	// Need to add the 'add' function for padding calculation
	cobra.AddTemplateFunc("add", func(a, b int) int { return a + b })

	rootCmd.SetUsageTemplate(usageTemplate)

	// Define command groups for organized help output
	rootCmd.AddGroup(
		&cobra.Group{ID: "trees", Title: "Tree Commands:"},
		&cobra.Group{ID: "session", Title: "Session Commands:"},
		&cobra.Group{ID: "files", Title: "Resource Commands:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/mfx/config.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (env MFX_LOG_LEVEL)")
	pf.StringVar(&logFormat, "log-format", "", "log format: text or json")
	pf.StringVar(&backend, "backend", "", "settings backend: file, sqlite or memory")
	pf.StringVar(&workspace, "workspace", "", "workspace settings file (enables the workspace scope)")

	// Assign built-in commands to system group
	rootCmd.SetHelpCommandGroupID("system")
	rootCmd.SetCompletionCommandGroupID("system")
}

func initBaseDir() {
	var err error
	baseDir, err = os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot determine working directory: %v\n", err)
		os.Exit(1)
	}
}

// getBaseDir returns the working directory, used as the project profile dir
func getBaseDir() string {
	return baseDir
}

// loadConfig reads the app config, applies flag overrides and installs the logger
func loadConfig(cmd *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	configPath = path

	c, err := config.Load(path)
	if err != nil {
		output.Error("load config: %v", err)
		return err
	}
	if backend != "" {
		if err := c.UseBackend(backend); err != nil {
			output.Error("%v", err)
			return err
		}
	}
	if workspace != "" {
		c.Storage.WorkspacePath = workspace
	}
	root, inWorkspace := workdir.ResolveWorkspace(getBaseDir())
	if inWorkspace && c.Storage.WorkspacePath == "" && c.Storage.Backend != config.BackendMemory {
		c.Storage.WorkspacePath = workdir.SettingsPath(root, c.SettingsFileName())
	}
	if env := os.Getenv("MFX_LOG_LEVEL"); env != "" && logLevel == "" {
		logLevel = env
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if logFormat != "" {
		c.Log.Format = logFormat
	}
	if c.Profiles.ProjectDir == "" {
		c.Profiles.ProjectDir = getBaseDir()
		if inWorkspace {
			c.Profiles.ProjectDir = filepath.Join(root, workdir.MarkerDir)
		}
	}
	cfg = c
	setupLogging(c.Log)
	slog.Debug("config: loaded", "path", path, "backend", c.Storage.Backend)
	return nil
}

func setupLogging(lc config.LogConfig) {
	var level slog.Level
	switch strings.ToLower(lc.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(lc.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
