// Copyright 2025 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/gorse-io/filmrec/base/log"
	"github.com/gorse-io/filmrec/cmd/version"
	"github.com/gorse-io/filmrec/config"
	"github.com/gorse-io/filmrec/logics"
	"github.com/gorse-io/filmrec/server"
	"github.com/gorse-io/filmrec/storage/data"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "filmrec",
		Short:         "Recommend the most discussable movie among friends.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			debug, _ := cmd.Flags().GetBool("debug")
			log.SetLogger(cmd.Flags(), debug)
		},
	}
	log.AddFlags(rootCommand.PersistentFlags())
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	rootCommand.PersistentFlags().StringP("data", "d", "", "data source, overrides the configuration")
	rootCommand.AddCommand(
		newRecommendCommand(),
		newExplainCommand(),
		newClusterCommand(),
		newImportCommand(),
		newServeCommand(),
		newVersionCommand(),
	)
	return rootCommand
}

// loadConfig loads the configuration file and applies command line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if cmd.Flags().Changed("data") {
		cfg.Data.Source, _ = cmd.Flags().GetString("data")
		if err = cfg.Validate(); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return cfg, nil
}

// loadRecommender builds relations from the configured data source.
func loadRecommender(cmd *cobra.Command) (*config.Config, *logics.Recommender, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	database, err := data.Open(cfg.Data.Source, cfg.Data.TablePrefix)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Logger().Warn("failed to close data source", zap.Error(err))
		}
	}()
	relations, err := data.LoadRelations(cmd.Context(), database)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	return cfg, logics.NewRecommender(relations), nil
}

func newRecommendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recommend USER",
		Short: "Print the best unseen movie for a user.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, recommender, err := loadRecommender(cmd)
			if err != nil {
				return errors.Trace(err)
			}
			movie, err := recommender.Recommend(args[0])
			if err != nil {
				return errors.Trace(err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), movie)
			return err
		},
	}
}

func newExplainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explain USER",
		Short: "Print the score breakdown of every movie for a user.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, recommender, err := loadRecommender(cmd)
			if err != nil {
				return errors.Trace(err)
			}
			details, err := recommender.ExplainAll(args[0])
			if err != nil {
				return errors.Trace(err)
			}
			return renderExplain(cmd.OutOrStdout(), details, cfg.Recommend.ExplainLimit)
		},
	}
}

// renderExplain prints score details as a table. Zero limit prints all rows.
func renderExplain(w io.Writer, details []logics.ScoreDetail, limit int) error {
	if limit > 0 && len(details) > limit {
		details = details[:limit]
	}
	table := tablewriter.NewWriter(w)
	table.Header("Movie", "Seen", "Discussability", "Uniqueness", "Score")
	for _, detail := range details {
		if err := table.Append([]string{
			detail.Movie,
			strconv.FormatBool(detail.Seen),
			strconv.Itoa(detail.Discussability),
			strconv.FormatFloat(detail.Uniqueness, 'g', 4, 64),
			lo.Ternary(detail.Excluded(), "excluded", strconv.FormatFloat(detail.Score, 'g', 4, 64)),
		}); err != nil {
			return errors.Trace(err)
		}
	}
	return table.Render()
}

func newClusterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cluster MOVIE",
		Short: "Print the movies transitively similar to a movie.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, recommender, err := loadRecommender(cmd)
			if err != nil {
				return errors.Trace(err)
			}
			relations := recommender.Relations()
			cluster, err := relations.SimilarityComponentOf(args[0])
			if err != nil {
				return errors.Trace(err)
			}
			for _, movie := range relations.Movies() {
				if cluster.Contains(movie) {
					if _, err = fmt.Fprintln(cmd.OutOrStdout(), movie); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
}

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import SRC DST",
		Short: "Copy a dataset from one data source to another.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tablePrefix := ""
			if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
				cfg, err := config.LoadConfig(configPath)
				if err != nil {
					return errors.Trace(err)
				}
				tablePrefix = cfg.Data.TablePrefix
			}
			return importDataset(cmd.Context(), args[0], args[1], tablePrefix)
		},
	}
}

func importDataset(ctx context.Context, src, dst, tablePrefix string) error {
	source, err := data.Open(src, tablePrefix)
	if err != nil {
		return errors.Trace(err)
	}
	defer source.Close()
	ds, err := source.Load(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	target, err := data.Open(dst, tablePrefix)
	if err != nil {
		return errors.Trace(err)
	}
	defer target.Close()
	if err = target.Init(); err != nil {
		return errors.Trace(err)
	}
	if err = target.Save(ctx, ds); err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("import dataset",
		zap.String("source", log.RedactURL(src)),
		zap.String("destination", log.RedactURL(dst)),
		zap.Int("users", ds.CountUsers()),
		zap.Int("movies", ds.CountMovies()),
		zap.Int("edges", ds.CountEdges()))
	return nil
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return errors.Trace(err)
			}
			s, err := server.NewServer(cfg)
			if err != nil {
				return errors.Trace(err)
			}
			go func() {
				sigint := make(chan os.Signal, 1)
				signal.Notify(sigint, os.Interrupt)
				<-sigint
				s.Shutdown()
				log.Logger().Info("stop filmrec server")
				os.Exit(0)
			}()
			s.Serve()
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of filmrec.",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprint(cmd.OutOrStdout(), version.BuildInfo())
		},
	}
}

func main() {
	defer log.CloseLogger()
	if err := newRootCommand().Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
