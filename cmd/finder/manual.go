package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sauna/internal/i18n"
	"sauna/internal/keys"
	"sauna/internal/manual"
	"sauna/internal/normalize"
	"sauna/internal/reconcile"
	"sauna/internal/storage"
)

func newManualCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manual",
		Short: "Inspect and publish the curated sauna dataset",
	}
	cmd.AddCommand(newManualCheckCmd(), newManualPushCmd(a))
	return cmd
}

// datasetReport summarizes how a manual file survives normalization.
type datasetReport struct {
	Records    int
	Usable     int
	Duplicates int
}

func checkDataset(path string) ([]byte, datasetReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, datasetReport{}, err
	}
	recs, err := manual.Decode(data, manual.FormatFor(path))
	if err != nil {
		return nil, datasetReport{}, err
	}
	n := normalize.New(normalize.DefaultAliases, i18n.T(i18n.English, i18n.KeyUnknownSauna, nil))
	usable := n.NormalizeAll(recs)
	unique := reconcile.Dedupe(usable)
	return data, datasetReport{
		Records:    len(recs),
		Usable:     len(usable),
		Duplicates: len(usable) - len(unique),
	}, nil
}

func newManualCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Report how many records of a manual dataset are usable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, report, err := checkDataset(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "records: %d\nusable: %d\nduplicates: %d\n",
				report.Records, report.Usable, report.Duplicates)
			return nil
		},
	}
}

func newManualPushCmd(a *app) *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "push <file>",
		Short: "Validate a manual dataset and upload it to the object store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, report, err := checkDataset(args[0])
			if err != nil {
				return err
			}
			if report.Usable == 0 {
				return fmt.Errorf("%s has no usable records", args[0])
			}

			store, err := storage.NewS3Service(a.cfg.Storage, a.logger)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := store.EnsureBucket(ctx, a.cfg.ManualBucket, a.cfg.Storage.Region); err != nil {
				return err
			}

			if key == "" {
				key = keys.ManualDataset(args[0])
			}
			contentType := "application/json"
			if manual.FormatFor(args[0]) == manual.FormatYAML {
				contentType = "application/yaml"
			}
			if err := store.Put(ctx, a.cfg.ManualBucket, key, data, contentType); err != nil {
				return err
			}
			a.logger.Info("manual dataset uploaded",
				zap.String("bucket", a.cfg.ManualBucket),
				zap.String("key", key),
				zap.Int("usable", report.Usable),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "object key (default: derived from the file name)")
	return cmd
}
