package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"tokenmap/analysis"
	apiclient "tokenmap/api-client"
	"tokenmap/capture"
	"tokenmap/config"
	"tokenmap/report"
)

func init() {
	analyzeCmd.PersistentFlags().StringVar(&tokenAddress, "tokenAddress", "", "")
	_ = analyzeCmd.MarkPersistentFlagRequired("tokenAddress")

	analyzeCmd.PersistentFlags().StringVar(&tokenChain, "tokenChain", "eth", "")

	analyzeCmd.PersistentFlags().StringVar(&configPath, "config", "", "")
	analyzeCmd.PersistentFlags().StringVar(&outPath, "out", "bubblemap.png", "where to place the captured image")
}

var (
	tokenAddress string
	tokenChain   string
	configPath   string
	outPath      string
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the holder distribution and market data of a token",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Validation contract: address shape and chain allow-list are
		// settled here, before the orchestrator is ever invoked.
		if !addressPattern.MatchString(tokenAddress) {
			return errors.Errorf("invalid contract address format: %v", tokenAddress)
		}
		chain := apiclient.Chain(tokenChain)
		if !apiclient.SupportedChain(chain) {
			return errors.Errorf("unsupported chain %v, expected one of %v", tokenChain, apiclient.Chains)
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		analyzer := analysis.NewAnalyzer(
			cfg,
			apiclient.NewBubblemapsClient(cfg, logger),
			apiclient.NewCoingeckoClient(cfg, logger),
			capture.New(cfg, logger),
			logger,
		)

		fmt.Println("🔍 Analyzing token... Please wait.")

		result, err := analyzer.Analyze(context.Background(), tokenAddress, chain)
		switch {
		case errors.Is(err, apiclient.ErrTokenNotFound):
			fmt.Println("❌ Invalid contract address or token not found on Bubblemaps.")
			return nil
		case err != nil:
			logger.Error().Err(err).Msg("analysis failed")
			fmt.Println("❌ An error occurred while processing your request. Please try again later.")
			return nil
		}

		fmt.Print(report.Render(result))

		// The temp artifact never outlives the request: it is copied to the
		// delivery target and removed on every exit path.
		if result.ArtifactPath != "" {
			defer os.Remove(result.ArtifactPath)
			if err := copyFile(result.ArtifactPath, outPath); err != nil {
				logger.Error().Err(err).Msg("failed to deliver artifact")
				return nil
			}
			fmt.Printf("\n🖼  Bubble map saved to %s\n", outPath)
		}
		return nil
	},
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrap(err, "failure opening artifact")
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrap(err, "failure creating output file")
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Wrap(err, "failure copying artifact")
	}
	return out.Close()
}
