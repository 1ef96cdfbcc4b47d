package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/haldec/halleypack/internal/config"
	"github.com/haldec/halleypack/internal/halley/project"
	"github.com/haldec/halleypack/internal/halley/save"
	"github.com/haldec/halleypack/internal/halley/steamlocate"
	"github.com/haldec/halleypack/internal/herrors"
	"github.com/haldec/halleypack/internal/logging"
	"github.com/haldec/halleypack/internal/serialize"
	"github.com/haldec/halleypack/pkg/halleypack"
)

var (
	packVersion string
	inPath      string
	outPath     string
	secretFlag  string
	logLevel    string
	steamGame   string
	steamRoot   string
)

func main() {
	root := &cobra.Command{
		Use:   "halleypack",
		Short: "Pack, unpack, and inspect 2020/2023-era Halley asset archives",
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	root.AddCommand(unpackCmd(), packCmd(), repackCmd(), readSaveCmd(), locateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	switch {
	case isFormatError(err):
		return 2
	default:
		return 1
	}
}

func isFormatError(err error) bool {
	for _, sentinel := range []error{
		herrors.ErrBadMagic, herrors.ErrTruncatedHeader, herrors.ErrIndexDecompress,
		herrors.ErrDecrypt, herrors.ErrInvalidAssetType, herrors.ErrInvalidFileInSections,
		herrors.ErrMissingAssetType, herrors.ErrMalformedPosSize,
		herrors.ErrDecodeTruncated, herrors.ErrBadHLIFMagic, herrors.ErrHLIFTruncated,
		herrors.ErrBadLineEncoding, herrors.ErrBadVersionByte, herrors.ErrTruncated,
		herrors.ErrDecompress, herrors.ErrSerialization,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func unpackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unpack",
		Short: "Unpack an archive into a directory tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := halleypack.ParseContainerVersion(packVersion)
			if err != nil {
				return err
			}
			key, err := config.ResolveKey(secretFlag)
			if err != nil {
				return err
			}
			logger := logging.NewLogger("halleypack", logging.LevelFromEnv(logLevel), os.Stderr)
			opts := defaultProjectOptions()
			if err := halleypack.UnpackToDir(inPath, version, outPath, key, opts, logger); err != nil {
				colorError(err)
				return err
			}
			return nil
		},
	}
	addArchiveFlags(cmd)
	return cmd
}

func packCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Pack a directory tree into a fresh archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := halleypack.ParseContainerVersion(packVersion)
			if err != nil {
				return err
			}
			key, err := config.ResolveKey(secretFlag)
			if err != nil {
				return err
			}
			logger := logging.NewLogger("halleypack", logging.LevelFromEnv(logLevel), os.Stderr)
			opts := defaultProjectOptions()
			if err := halleypack.PackFromDir(inPath, version, outPath, key, opts, logger); err != nil {
				colorError(err)
				return err
			}
			return nil
		},
	}
	addArchiveFlags(cmd)
	return cmd
}

func repackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repack",
		Short: "Load an archive and re-emit it",
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := halleypack.ParseContainerVersion(packVersion)
			if err != nil {
				return err
			}
			key, err := config.ResolveKey(secretFlag)
			if err != nil {
				return err
			}
			logger := logging.NewLogger("halleypack", logging.LevelFromEnv(logLevel), os.Stderr)
			if err := halleypack.Repack(inPath, outPath, version, key, logger); err != nil {
				colorError(err)
				return err
			}
			return nil
		},
	}
	addArchiveFlags(cmd)
	return cmd
}

func readSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readsave",
		Short: "Decrypt and inflate a HLLYSAVE save file",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := config.ResolveKey(secretFlag)
			if err != nil {
				return err
			}
			logger := logging.NewLogger("halleypack", logging.LevelFromEnv(logLevel), os.Stderr)
			data, header, err := save.LoadSaveData(inPath, key, logger)
			if err != nil {
				colorError(err)
				return err
			}
			logger.Info("save header parsed", "version", header.Version, "filename_hash", header.FilenameHash)
			if outPath == "" {
				fmt.Println(string(data))
				return nil
			}
			return os.WriteFile(outPath, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&inPath, "in", "i", "", "save file path (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (defaults to stdout)")
	cmd.Flags().StringVarP(&secretFlag, "secret", "s", "", "base64 AES-128 key")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func locateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Find a Steam-installed game's assets folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := steamlocate.FindGameAssetsFolder(steamlocate.Game(steamGame), steamRoot)
			if err != nil {
				colorError(err)
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&steamGame, "game", "g", "wargroove", "game to locate (wargroove, wargroove2)")
	cmd.Flags().StringVar(&steamRoot, "steam-root", "", "override the detected Steam root")
	return cmd
}

func addArchiveFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&packVersion, "pack-version", "p", "", "container version: v2020 or v2023 (required)")
	cmd.Flags().StringVarP(&inPath, "in", "i", "", "input path (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (required)")
	cmd.Flags().StringVarP(&secretFlag, "secret", "s", "", "base64 AES-128 key")
	_ = cmd.MarkFlagRequired("pack-version")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
}

func defaultProjectOptions() project.Options {
	return project.Options{Format: serialize.DefaultFormat, UnknownExt: config.DefaultUnknownExtension}
}

func colorError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(os.Stderr, "%s %v\n", red("error:"), err)
}
