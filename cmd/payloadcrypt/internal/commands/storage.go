package commands

import (
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"payloadcrypt/internal/storage/s3"
)

// InitStorageCommands registers the bucket bootstrap command.
func InitStorageCommands(rootCmd *cobra.Command) {
	setupCmd := &cobra.Command{
		Use:   "setup",
		Short: "Create the payload bucket and its prefixes",
		Args:  cobra.NoArgs,
		RunE:  runSetup,
	}
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("unable to load SDK config: %w", err)
	}
	s3.LogCallerIdentity(ctx, awsCfg)

	cfg := s3.DefaultConfig
	if a.cfg.Storage.Bucket != "" {
		cfg.BucketName = a.cfg.Storage.Bucket
	}
	if awsCfg.Region != "" {
		cfg.Region = awsCfg.Region
	}
	s3.WithPrefixes(a.cfg.Storage.PayloadPrefix, a.cfg.Storage.MetadataPrefix)(&cfg)

	// NewClient requires the bucket to exist already, so build the store directly.
	store := s3.New(awss3.NewFromConfig(awsCfg), cfg)
	if err := store.EnsureBucket(ctx); err != nil {
		return err
	}
	log.Info().Str("bucket", cfg.BucketName).Msg("bucket is ready")
	return nil
}
