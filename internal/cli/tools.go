package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rbxservers/rbxservers-bot/internal/buildinfo"
	"github.com/rbxservers/rbxservers-bot/internal/chromecheck"
	"github.com/rbxservers/rbxservers-bot/internal/gifgen"
	"github.com/rbxservers/rbxservers-bot/internal/smoke"
)

func smokeCmd(opts *rootOptions) *cobra.Command {
	var baseURL string
	var token string
	var suites []string
	var timeout time.Duration

	c := &cobra.Command{
		Use:   "smoke",
		Short: "Run the REST smoke tests against a running API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger, flush, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer flush()

			if cmd.Flags().Changed("base-url") {
				cfg.Smoke.BaseURL = baseURL
			}
			if cmd.Flags().Changed("token") {
				cfg.Smoke.Token = token
			}
			if cmd.Flags().Changed("timeout") {
				cfg.Smoke.Timeout = timeout
			}

			selected, err := smoke.Select(smoke.SuitesFromConfig(cfg.Smoke), suites)
			if err != nil {
				return err
			}

			runner, err := smoke.NewRunner(smoke.Options{
				BaseURL: cfg.Smoke.BaseURL,
				Token:   cfg.Smoke.Token,
				Timeout: cfg.Smoke.Timeout,
			}, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, suite := range selected {
				report := runner.Run(cmd.Context(), suite)
				if err := report.Write(out); err != nil {
					return err
				}
				failed += report.Failed()
			}

			if failed > 0 {
				return fmt.Errorf("smoke tests failed (%d failed endpoint(s))", failed)
			}

			return nil
		},
	}

	c.Flags().StringVar(&baseURL, "base-url", "", "API base URL, e.g. http://localhost:3000")
	c.Flags().StringVar(&token, "token", "", "Bearer token sent with every request")
	c.Flags().StringSliceVarP(&suites, "suite", "s", nil, "Suites to run (default all): api, bot or configured names")
	c.Flags().DurationVar(&timeout, "timeout", 0, "Per-request timeout")

	return c
}

func chromeCheckCmd(opts *rootOptions) *cobra.Command {
	var execPath string
	var remoteURL string
	var noSandbox bool
	var timeout time.Duration

	c := &cobra.Command{
		Use:   "chromecheck",
		Short: "Check that a headless Chrome can be launched",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger, flush, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer flush()

			if cmd.Flags().Changed("exec-path") {
				cfg.Chrome.ExecPath = execPath
			}
			if cmd.Flags().Changed("remote-url") {
				cfg.Chrome.RemoteURL = remoteURL
			}
			if cmd.Flags().Changed("no-sandbox") {
				cfg.Chrome.NoSandbox = noSandbox
			}
			if cmd.Flags().Changed("timeout") {
				cfg.Chrome.Timeout = timeout
			}

			checker := chromecheck.NewChecker(chromecheck.Config{
				ExecPath:  cfg.Chrome.ExecPath,
				RemoteURL: cfg.Chrome.RemoteURL,
				NoSandbox: cfg.Chrome.NoSandbox,
				Timeout:   cfg.Chrome.Timeout,
			}, nil, logger)

			info, err := checker.Check(cmd.Context())
			if err != nil {
				return &exitError{code: chromecheck.ExitCode(err), err: err}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Chrome OK: %s (protocol %s) in %s\n",
				info.Product, info.ProtocolVersion, info.Elapsed.Round(time.Millisecond))

			return nil
		},
	}

	c.Flags().StringVar(&execPath, "exec-path", "", "Chrome binary (default: looked up on PATH)")
	c.Flags().StringVar(&remoteURL, "remote-url", "", "DevTools websocket URL of an already running browser")
	c.Flags().BoolVar(&noSandbox, "no-sandbox", false, "Pass --no-sandbox to Chrome (needed as root)")
	c.Flags().DurationVar(&timeout, "timeout", 0, "Give up after this long")

	return c
}

func gifCmd(opts *rootOptions) *cobra.Command {
	var input string
	var output string
	var frames int
	var delay time.Duration
	var effect string
	var size int
	var background string

	c := &cobra.Command{
		Use:   "gif",
		Short: "Render an animated GIF from a still image",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger, flush, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer flush()

			flags := cmd.Flags()
			if flags.Changed("input") {
				cfg.GIF.Input = input
			}
			if flags.Changed("output") {
				cfg.GIF.Output = output
			}
			if flags.Changed("frames") {
				cfg.GIF.Frames = frames
			}
			if flags.Changed("delay") {
				cfg.GIF.Delay = delay
			}
			if flags.Changed("effect") {
				cfg.GIF.Effect = effect
			}
			if flags.Changed("size") {
				cfg.GIF.Size = size
			}
			if flags.Changed("background") {
				cfg.GIF.Background = background
			}

			gifOpts, err := gifgen.OptionsFromConfig(cfg.GIF)
			if err != nil {
				return err
			}

			res, err := gifgen.NewGenerator(logger).Generate(cmd.Context(), gifOpts)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d frames, %dx%d)\n",
				res.Path, res.Frames, res.Bounds.Dx(), res.Bounds.Dy())

			return nil
		},
	}

	c.Flags().StringVarP(&input, "input", "i", "", "Source image (png, jpeg, gif, bmp or tiff)")
	c.Flags().StringVarP(&output, "output", "o", "", "Destination GIF")
	c.Flags().IntVar(&frames, "frames", 0, "Number of frames")
	c.Flags().DurationVar(&delay, "delay", 0, "Delay per frame, at least 10ms; rounded to the nearest 10ms")
	c.Flags().StringVar(&effect, "effect", "", "Animation: spin|pulse|fade")
	c.Flags().IntVar(&size, "size", 0, "Fit the image into a size x size square first")
	c.Flags().StringVar(&background, "background", "", "Background color: #rrggbb, white, black or transparent")

	return c
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}
