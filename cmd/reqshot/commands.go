package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/studiowebux/reqshot/internal/capture"
	"github.com/studiowebux/reqshot/internal/cli"
	"github.com/studiowebux/reqshot/internal/config"
	"github.com/studiowebux/reqshot/internal/highlight"
	"github.com/studiowebux/reqshot/internal/keybinds"
	"github.com/studiowebux/reqshot/internal/proxy"
	"github.com/studiowebux/reqshot/internal/query"
	"github.com/studiowebux/reqshot/internal/redact"
	"github.com/studiowebux/reqshot/internal/search"
	"github.com/studiowebux/reqshot/internal/tui"
	"github.com/studiowebux/reqshot/internal/version"
)

var viewCmd = &cobra.Command{
	Use:   "view [request-file] [response-file]",
	Short: "Open the inspector on raw message files or a stored capture",
	Long: `Open the inspector. With no files and no --id, pick from stored captures.

Files are raw HTTP messages: start line, headers, a blank line, then the body.
Bare LF line endings are converted to CRLF unless --crlf=false.`,
	Args:        cobra.MaximumNArgs(2),
	Annotations: map[string]string{annotationTUI: "true"},
	RunE:        runView,
}

var formatCmd = &cobra.Command{
	Use:   "format <file|->",
	Short: "Print a raw message with its HTML/JSON body reformatted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.ValidateOutput(flagOutput); err != nil {
			return err
		}
		raw, err := readInput(args[0], flagCRLF)
		if err != nil {
			return err
		}

		if flagQuery != "" {
			result, err := query.Body(raw, flagQuery)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		}

		opts := cli.FormatOptions{Output: flagOutput}
		if flagColor {
			opts.Highlighter = highlight.ForTheme(app.settings.Theme)
		}
		return cli.Format(cmd.OutOrStdout(), newFormatter(), raw, opts)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query> <request-file> [response-file]",
	Short: "Find a literal, case-insensitive string in both messages",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.ValidateOutput(flagOutput); err != nil {
			return err
		}
		formatter := newFormatter()

		request, err := readInput(args[1], flagCRLF)
		if err != nil {
			return err
		}
		var response string
		if len(args) == 3 {
			if response, err = readInput(args[2], flagCRLF); err != nil {
				return err
			}
		}

		buffers := search.Buffers{Request: formatter.Format(request), Response: formatter.Format(response)}
		return cli.Search(cmd.OutOrStdout(), buffers, args[0], flagOutput)
	},
}

var redactCmd = &cobra.Command{
	Use:   "redact <file|->",
	Short: "Print a raw message with Cookie and Authorization values masked",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.ValidateOutput(flagOutput); err != nil {
			return err
		}
		raw, err := readInput(args[0], flagCRLF)
		if err != nil {
			return err
		}
		return cli.Redact(cmd.OutOrStdout(), redact.Default(), raw, flagOutput)
	},
}

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Run an HTTP capture proxy that stores every exchange",
	Long: `Run a forward proxy. Point clients at it (HTTP_PROXY=http://localhost:8888)
and every plain-HTTP exchange is stored for 'reqshot view'. HTTPS is tunnelled
and only the CONNECT is logged.`,
	Args: cobra.NoArgs,
	RunE: runProxy,
}

var capturesCmd = &cobra.Command{
	Use:   "captures",
	Short: "List stored captures",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.ValidateOutput(flagOutput); err != nil {
			return err
		}
		mgr, err := openStore()
		if err != nil {
			return err
		}
		defer mgr.Close()

		var exchanges []capture.Exchange
		if flagFind != "" {
			exchanges, err = mgr.Find(flagFind, flagLimit)
		} else {
			exchanges, err = mgr.List(capture.Source(flagSource), flagLimit)
		}
		if err != nil {
			return err
		}
		return cli.ListCaptures(cmd.OutOrStdout(), exchanges, flagOutput)
	},
}

var capturesShowCmd = &cobra.Command{
	Use:         "show <id>",
	Short:       "Open a stored capture in the inspector",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationTUI: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ex, err := loadCapture(args[0])
		if err != nil {
			return err
		}
		return inspect(ex)
	},
}

var capturesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored capture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := openStore()
		if err != nil {
			return err
		}
		defer mgr.Close()

		ex, err := mgr.Get(args[0])
		if err != nil {
			return err
		}
		if err := mgr.Delete(ex.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", ex.ID, ex.Title())
		return nil
	},
}

var capturesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored capture",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := openStore()
		if err != nil {
			return err
		}
		defer mgr.Close()

		count, err := mgr.GetCount()
		if err != nil {
			return err
		}
		if err := mgr.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d capture(s)\n", count)
		return nil
	},
}

var importHARCmd = &cobra.Command{
	Use:   "import-har <file>",
	Short: "Store the entries of a HAR file as captures",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exchanges, err := capture.LoadHAR(args[0], capture.HAROptions{Filter: flagHARFilter, Limit: flagHARLimit})
		if err != nil {
			return err
		}

		mgr, err := openStore()
		if err != nil {
			return err
		}
		defer mgr.Close()

		for i := range exchanges {
			if err := mgr.Save(&exchanges[i]); err != nil {
				return err
			}
		}

		app.log.Info().Str("file", args[0]).Int("entries", len(exchanges)).Msg("HAR imported")
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d exchange(s) from %s\n", len(exchanges), args[0])
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and optionally check for a newer release",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "reqshot %s\n", version.Version)
		if !flagCheck {
			return nil
		}

		release, err := version.NewChecker().Latest(cmd.Context(), version.Version)
		if err != nil {
			return err
		}
		if release.Newer {
			fmt.Fprintf(out, "A newer release is available: %s (%s)\n", release.Version, release.URL)
		} else {
			fmt.Fprintln(out, "You are on the latest release")
		}
		return nil
	},
}

var keybindsCmd = &cobra.Command{
	Use:   "keybinds",
	Short: "Manage inspector keybindings",
}

var keybindsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default keybindings to keybinds.json for editing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(config.KeybindsFile); err == nil && !flagForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", config.KeybindsFile)
		}
		if err := keybinds.CreateExampleConfig(config.KeybindsFile); err != nil {
			return fmt.Errorf("failed to write keybindings: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", config.KeybindsFile)
		return nil
	},
}

var keybindsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate keybinds.json",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := keybinds.LoadConfig(config.KeybindsFile)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(cmd.OutOrStdout(), "No keybinds.json, using defaults")
				return nil
			}
			return err
		}

		result := keybinds.NewValidator().ValidateConfig(cfg)
		fmt.Fprintln(cmd.OutOrStdout(), result.String())
		if result.HasErrors() {
			return fmt.Errorf("%d keybinding error(s)", len(result.Errors))
		}
		return nil
	},
}

// Flags
var (
	flagOutput    string
	flagCRLF      bool
	flagColor     bool
	flagID        string
	flagURL       string
	flagPort      int
	flagNoStore   bool
	flagSource    string
	flagFind      string
	flagLimit     int
	flagHARFilter string
	flagHARLimit  int
	flagForce     bool
	flagQuery     string
	flagCheck     bool
)

func addViewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagID, "id", "", "Stored capture ID or unique prefix")
	cmd.Flags().StringVar(&flagURL, "url", "", "URL to show when opening files (default: from request line and Host)")
	cmd.Flags().BoolVar(&flagCRLF, "crlf", true, "Convert bare LF line endings to CRLF")
}

func init() {
	addViewFlags(viewCmd)

	for _, c := range []*cobra.Command{formatCmd, searchCmd, redactCmd, capturesCmd} {
		c.Flags().StringVarP(&flagOutput, "output", "o", cli.OutputText, "Output format (text/json/yaml)")
	}
	for _, c := range []*cobra.Command{formatCmd, searchCmd, redactCmd} {
		c.Flags().BoolVar(&flagCRLF, "crlf", true, "Convert bare LF line endings to CRLF")
	}
	formatCmd.Flags().BoolVar(&flagColor, "color", false, "Syntax-highlight the body")
	formatCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "Print only this JMESPath selection of a JSON body")

	proxyCmd.Flags().IntVarP(&flagPort, "port", "p", 0, "Listen port (default: proxy.port setting)")
	proxyCmd.Flags().BoolVar(&flagNoStore, "no-store", false, "Print exchanges without storing them")

	capturesCmd.Flags().StringVar(&flagSource, "source", "", "Only list captures from this source (proxy/har/file)")
	capturesCmd.Flags().StringVarP(&flagFind, "find", "f", "", "Fuzzy-match method and URL")
	capturesCmd.Flags().IntVarP(&flagLimit, "limit", "n", 50, "Maximum captures to list")

	importHARCmd.Flags().StringVar(&flagHARFilter, "filter", "", "Only import entries whose URL contains this text")
	importHARCmd.Flags().IntVarP(&flagHARLimit, "limit", "n", 0, "Maximum entries to import (0 = all)")

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "Check GitHub for a newer release")

	keybindsInitCmd.Flags().BoolVar(&flagForce, "force", false, "Overwrite an existing keybinds.json")

	capturesCmd.AddCommand(capturesShowCmd)
	capturesCmd.AddCommand(capturesDeleteCmd)
	capturesCmd.AddCommand(capturesClearCmd)

	keybindsCmd.AddCommand(keybindsInitCmd)
	keybindsCmd.AddCommand(keybindsCheckCmd)
}

// runView opens the inspector on files, a stored capture, or a picked capture
func runView(cmd *cobra.Command, args []string) error {
	var ex capture.Exchange
	var err error

	switch {
	case len(args) > 0:
		response := ""
		if len(args) == 2 {
			response = args[1]
		}
		ex, err = capture.FromFiles(args[0], response, flagCRLF)
		if err == nil && flagURL != "" {
			ex.URL = flagURL
		}

	case flagID != "":
		ex, err = loadCapture(flagID)

	default:
		ex, err = pickCapture()
	}
	if err != nil {
		return err
	}

	return inspect(ex)
}

// inspect runs the TUI with the user's settings and keybindings
func inspect(ex capture.Exchange) error {
	registry, err := keybinds.LoadOrDefault(config.KeybindsFile)
	if err != nil {
		return err
	}

	return tui.Run(ex, tui.Options{
		Settings:     app.settings,
		SettingsPath: app.settingsPath,
		Keybinds:     registry,
		Logger:       app.log,
	})
}

func loadCapture(id string) (capture.Exchange, error) {
	mgr, err := openStore()
	if err != nil {
		return capture.Exchange{}, err
	}
	defer mgr.Close()

	return mgr.Get(id)
}

// pickCapture lets the user choose among recent captures
func pickCapture() (capture.Exchange, error) {
	if !cli.IsInteractive() {
		return capture.Exchange{}, fmt.Errorf("no input files given (run 'reqshot --help')")
	}

	mgr, err := openStore()
	if err != nil {
		return capture.Exchange{}, err
	}
	exchanges, err := mgr.List("", 200)
	mgr.Close()
	if err != nil {
		return capture.Exchange{}, err
	}

	return cli.PickCapture(exchanges)
}

// runProxy serves until interrupted, storing each exchange
func runProxy(cmd *cobra.Command, args []string) error {
	port := app.settings.Proxy.Port
	if flagPort > 0 {
		port = flagPort
	}

	var onCapture func(*proxy.Transaction)
	out := cmd.OutOrStdout()

	if flagNoStore {
		onCapture = func(tx *proxy.Transaction) {
			fmt.Fprintf(out, "%s %s %s -> %d (%s)\n",
				tx.Timestamp.Format("15:04:05"), tx.Method, tx.URL, tx.Status, proxy.FormatDuration(tx.Duration))
		}
	} else {
		mgr, err := openStore()
		if err != nil {
			return err
		}
		defer mgr.Close()

		maxCaptures := app.settings.Proxy.MaxCaptures
		onCapture = func(tx *proxy.Transaction) {
			ex := tx.Exchange()
			if err := mgr.Save(&ex); err != nil {
				app.log.Error().Err(err).Str("url", tx.URL).Msg("failed to store capture")
				return
			}
			if removed, err := mgr.Trim(maxCaptures); err != nil {
				app.log.Warn().Err(err).Msg("failed to trim captures")
			} else if removed > 0 {
				app.log.Debug().Int64("removed", removed).Msg("trimmed old captures")
			}
			fmt.Fprintf(out, "%s %s %s -> %d (%s)\n",
				ex.ID[:8], tx.Method, tx.URL, tx.Status, proxy.FormatDuration(tx.Duration))
		}
	}

	p := proxy.New(proxy.Options{
		Addr:            ":" + strconv.Itoa(port),
		MaxTransactions: app.settings.Proxy.MaxCaptures,
		OnCapture:       onCapture,
		Logger:          app.log,
	})
	if err := p.Start(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Proxy listening on %s (Ctrl+C to stop)\n", p.Addr())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop proxy: %w", err)
	}

	fmt.Fprintf(out, "Captured %d exchange(s)\n", p.Count())
	return nil
}
