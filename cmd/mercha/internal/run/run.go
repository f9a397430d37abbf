// Package run implements the mercha CLI's subcommands: verify and gen,
// both driven by a metafile (internal/metafile) in the format the original
// tool read with main.c/tool.c.
package run

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/go-mercha/mercha/internal/config"
	"github.com/go-mercha/mercha/internal/lcg"
	"github.com/go-mercha/mercha/internal/metafile"
	"github.com/go-mercha/mercha/mercha"
	"github.com/go-mercha/mercha/mercha/chacha20"
	"github.com/go-mercha/mercha/mercha/merkle"
	"github.com/go-mercha/mercha/mercha/simd"
)

var configPath string

// NewRootCommand builds the mercha command tree. logger receives the
// structured progress output that replaces the original tool's
// ===META INFO===/===LOADING===/===RUNNING=== printf banners.
func NewRootCommand(logger *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "mercha",
		Short:         "Compute and verify mercha digests from metafiles",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to an optional TOML tuning file (worker_count, force_simd)")

	root.AddCommand(newVerifyCommand(logger))
	root.AddCommand(newGenCommand(logger))
	return root
}

func loadConfig(logger *zap.Logger) config.Config {
	if configPath == "" {
		return config.Default()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Warn("failed to load config, falling back to defaults", zap.String("path", configPath), zap.Error(err))
		return config.Default()
	}
	return cfg
}

func applyConfig(cfg config.Config) {
	chacha20.WorkerOverride = cfg.WorkerCount
	merkle.WorkerOverride = cfg.WorkerCount
	simd.SetForceMode(cfg.ForceSIMD)
}

func parseMetaFile(path string) (metafile.Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return metafile.Info{}, fmt.Errorf("please make sure %s exists: %w", path, err)
	}
	defer f.Close()
	return metafile.Parse(f)
}

func logMetaInfo(logger *zap.Logger, info metafile.Info) {
	logger.Info("meta info",
		zap.String("file_name", info.FileName),
		zap.Uint64("length", info.Length),
		zap.String("key", fmt.Sprintf("0x%x", info.Key)),
		zap.String("nonce", fmt.Sprintf("0x%x", info.Nonce)),
		zap.String("result", fmt.Sprintf("0x%x", info.Result)),
		zap.Uint64("generate_info", info.GenerateInfo),
	)
}

func newVerifyCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <metafile>",
		Short: "Compute a digest over the metafile's input and compare it against the recorded result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyConfig(loadConfig(logger))

			info, err := parseMetaFile(args[0])
			if err != nil {
				return err
			}
			logMetaInfo(logger, info)

			logger.Info("loading input", zap.String("file", info.FileName))
			input, err := os.ReadFile(info.FileName)
			if err != nil {
				return fmt.Errorf("please make sure %s exists: %w", info.FileName, err)
			}
			if uint64(len(input)) != info.Length {
				logger.Warn("input length does not match metafile",
					zap.Int("read", len(input)), zap.Uint64("want", info.Length))
			}

			logger.Info("running mercha")
			var output [mercha.DigestSize]byte
			if err := mercha.Mercha(info.Key, info.Nonce, input, output[:]); err != nil {
				return fmt.Errorf("mercha: %w", err)
			}

			logger.Info("output", zap.String("digest", fmt.Sprintf("0x%x", output)))

			if bytes.Equal(output[:], info.Result[:]) {
				fmt.Fprintln(cmd.OutOrStdout(), "Pass this test!")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Fail this test!")
			return fmt.Errorf("digest mismatch")
		},
	}
}

func newGenCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "gen <metafile>",
		Short: "Generate a deterministic LCG input file named by the metafile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := parseMetaFile(args[0])
			if err != nil {
				return err
			}
			logMetaInfo(logger, info)

			logger.Info("generating input", zap.String("file", info.FileName))
			buffer := lcg.Generate(info.GenerateInfo, int(info.Length))

			f, err := os.Create(info.FileName)
			if err != nil {
				return fmt.Errorf("fail to create file %s: %w", info.FileName, err)
			}
			defer f.Close()

			n, err := f.Write(buffer)
			if err != nil {
				return fmt.Errorf("write %s: %w", info.FileName, err)
			}
			logger.Info("wrote input file", zap.Int("bytes", n), zap.String("file", info.FileName))
			return nil
		},
	}
}
