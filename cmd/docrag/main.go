// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/poiesic/docrag/config"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "docrag",
		Usage: "Chat with and summarize your documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error); overrides the config file",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file (default: ./docrag.yaml if present)",
			},
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "Load environment variables from these files (default: ./.env if present)",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "OpenAI-compatible host for both embeddings and generation",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
			},
			&cli.StringFlag{
				Name:  "generator-model",
				Usage: "Generation model name",
			},
			&cli.StringFlag{
				Name:  "index-dir",
				Usage: "Directory holding one index per session",
			},
			&cli.BoolFlag{
				Name:  "in-memory",
				Usage: "Keep indexes in memory only",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Report embedding progress on stderr",
			},
		},
		Before: setup,
		Action: unsupportedMode,
		Commands: []*cli.Command{
			{
				Name:   "chat",
				Usage:  "Index documents and answer questions interactively",
				Action: chatCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "path",
						Aliases:  []string{"p"},
						Usage:    "Document to index (repeatable)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "session",
						Aliases: []string{"s"},
						Usage:   "Session id; reuses a persisted index with the same id (default: new id)",
					},
					&cli.IntFlag{
						Name:  "k",
						Usage: "Number of passages used to ground each answer",
					},
				},
			},
			{
				Name:   "ask",
				Usage:  "Index documents and answer a single question",
				Action: askCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "path",
						Aliases:  []string{"p"},
						Usage:    "Document to index (repeatable)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "question",
						Aliases:  []string{"q"},
						Usage:    "Question to answer",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "session",
						Aliases: []string{"s"},
						Usage:   "Session id (default: new id)",
					},
					&cli.IntFlag{
						Name:  "k",
						Usage: "Number of passages used to ground the answer",
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Recompute a persisted session's vectors with the configured embedding model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "session",
						Aliases:  []string{"s"},
						Usage:    "Session id whose index should be re-embedded",
						Required: true,
					},
				},
			},
			{
				Name:   "summarize",
				Usage:  "Summarize a single document",
				Action: summarizeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the document",
						Required: true,
					},
				},
			},
			{
				Name:   "summarize-batch",
				Usage:  "Summarize all documents in a folder together",
				Action: summarizeBatchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "folder",
						Aliases:  []string{"d"},
						Usage:    "Path to the folder",
						Required: true,
					},
				},
			},
		},
	}
}

func unsupportedMode(c *cli.Context) error {
	if c.NArg() > 0 {
		return fmt.Errorf("unsupported mode %q: choose one of chat, ask, reembed, summarize, summarize-batch", c.Args().First())
	}
	return cli.ShowAppHelp(c)
}

// setup loads configuration, applies global flag overrides and installs the logger.
func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"), c.StringSlice("env-file")...)
	if err != nil {
		return err
	}

	if c.IsSet("host") {
		cfg.AI.EmbeddingHost = c.String("host")
		cfg.AI.GeneratorHost = c.String("host")
	}
	if c.IsSet("embedding-model") {
		cfg.AI.EmbeddingModel = c.String("embedding-model")
	}
	if c.IsSet("generator-model") {
		cfg.AI.GeneratorModel = c.String("generator-model")
	}
	if c.IsSet("index-dir") {
		cfg.Index.Root = c.String("index-dir")
	}
	if c.IsSet("in-memory") {
		cfg.Index.InMemory = c.Bool("in-memory")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}

	if err := setupLogger(cfg.LogLevel); err != nil {
		return err
	}

	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func setupLogger(levelStr string) error {
	level, err := config.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func loadedConfig(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	return config.Default()
}
