package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kerraform/kota/internal/ota"
	"github.com/kerraform/kota/internal/schema"
	"github.com/kerraform/kota/internal/source"
	"github.com/kerraform/kota/internal/verify"
	"github.com/kerraform/kota/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	ErrKeyringRequired = errors.New("--keyring is required with --signature-url")
	ErrUnrecognized    = errors.New("document is not a recognized OTA shape")
)

type fetchOpts struct {
	compact      bool
	keyringPath  string
	signatureURL string
	timeout      time.Duration
}

func newFetchCmd() *cobra.Command {
	opts := &fetchOpts{}

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Fetch a remote OTA document and print it normalized",
		Args:  cobra.ExactArgs(1),
		RunE:  runFetchCmd(opts),
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.compact, "compact", false, "Print the document without indentation")
	flags.StringVar(&opts.keyringPath, "keyring", "", "Path to the armored public keyring used with --signature-url")
	flags.StringVar(&opts.signatureURL, "signature-url", "", "URL of the armored detached signature of the document")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Timeout of each request")
	return cmd
}

func runFetchCmd(opts *fetchOpts) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if opts.signatureURL != "" && opts.keyringPath == "" {
			return ErrKeyringRequired
		}

		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}

		ctx := context.Background()
		f := source.NewFetcher(&source.FetcherConfig{
			Logger:    logger.Named("fetcher"),
			Timeout:   opts.timeout,
			UserAgent: "kota-cli/" + version.Version,
		})

		raw, err := f.Fetch(ctx, args[0])
		if err != nil {
			return err
		}

		if opts.signatureURL != "" {
			keyID, err := verifyDocument(ctx, f, logger, opts, raw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "signed by %s\n", keyID)
		}

		res := ota.NewNormalizer(logger.Named("normalizer")).Normalize(raw)
		return writeDocument(cmd.OutOrStdout(), res.Document, opts.compact)
	}
}

func verifyDocument(ctx context.Context, f *source.Fetcher, logger *zap.Logger, opts *fetchOpts, raw []byte) (string, error) {
	keyring, err := os.Open(opts.keyringPath)
	if err != nil {
		return "", err
	}
	defer keyring.Close()

	v, err := verify.NewVerifier(keyring, logger.Named("verifier"))
	if err != nil {
		return "", err
	}

	sig, err := f.FetchSignature(ctx, opts.signatureURL)
	if err != nil {
		return "", err
	}

	return v.Verify(raw, sig)
}

func newNormalizeCmd() *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "normalize [file|-]",
		Short: "Print a local OTA document normalized",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}

			res := ota.NewNormalizer(logger.Named("normalizer")).Normalize(raw)
			return writeDocument(cmd.OutOrStdout(), res.Document, compact)
		},
	}

	cmd.Flags().BoolVar(&compact, "compact", false, "Print the document without indentation")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file|-]",
		Short: "Check whether a local document is a recognized OTA shape",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			variant := ota.Classify(raw).Variant
			if !ota.Validate(raw) {
				fmt.Fprintf(cmd.OutOrStdout(), "invalid (%s)\n", variant)
				return ErrUnrecognized
			}

			fmt.Fprintf(cmd.OutOrStdout(), "valid (%s)\n", variant)
			return nil
		},
	}
}

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint [file|-]",
		Short: "Lint the normalized form of a local document against the canonical schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			l, err := schema.NewLinter()
			if err != nil {
				return err
			}

			b, err := json.Marshal(ota.Normalize(raw).Document)
			if err != nil {
				return err
			}

			if err := l.Lint(b); err != nil {
				var lerr *schema.LintError
				if errors.As(err, &lerr) {
					fmt.Fprintln(cmd.OutOrStdout(), strings.Join(lerr.Problems, "\n"))
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func newRawURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rawurl <url>",
		Short: "Print the raw content URL of a GitHub blob URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), source.RawGitHubURL(args[0]))
			return nil
		},
	}
}
