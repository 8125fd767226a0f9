package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/poiesic/docrag"
	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/ingestion"
	"github.com/urfave/cli/v2"
)

const (
	previewLength  = 300
	progressPeriod = 10
)

func newEngine(c *cli.Context) (*docrag.Engine, error) {
	cfg := loadedConfig(c)
	if c.IsSet("k") {
		cfg.Retrieval.K = c.Int("k")
	}

	var opts []docrag.EngineOption
	if c.Bool("progress") {
		opts = append(opts, docrag.WithProgress(c.App.ErrWriter, progressPeriod))
	}
	return docrag.NewEngine(cfg, opts...)
}

func commandContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt)
}

// checkPaths fails on the first path that does not exist.
func checkPaths(paths []string) error {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("file not found: %s", path)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a folder, expected a file", path)
		}
	}
	return nil
}

func openSession(ctx context.Context, c *cli.Context, engine *docrag.Engine) (*docrag.Session, error) {
	if id := c.String("session"); id != "" {
		return engine.OpenSession(ctx, id)
	}
	return engine.NewSession()
}

func ingest(ctx context.Context, c *cli.Context, session *docrag.Session) error {
	result, err := session.Ingest(ctx, c.StringSlice("path"))
	if err != nil {
		return err
	}
	printIngestion(c.App.Writer, result)
	return nil
}

func chatCommand(c *cli.Context) error {
	paths := c.StringSlice("path")
	if err := checkPaths(paths); err != nil {
		return err
	}

	ctx, cancel := commandContext(c)
	defer cancel()

	engine, err := newEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	session, err := openSession(ctx, c, engine)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Session %s\n", session.ID())

	if err := ingest(ctx, c, session); err != nil {
		return err
	}
	return chatLoop(ctx, c.App.Reader, c.App.Writer, session)
}

type asker interface {
	Ask(ctx context.Context, question string) *core.Answer
}

// chatLoop answers one question per input line until EOF, "exit" or "quit".
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, s asker) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nAsk a question about your documents (or 'exit'): ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(question) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		printAnswer(out, s.Ask(ctx, question))
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}

func askCommand(c *cli.Context) error {
	paths := c.StringSlice("path")
	if err := checkPaths(paths); err != nil {
		return err
	}

	ctx, cancel := commandContext(c)
	defer cancel()

	engine, err := newEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	session, err := openSession(ctx, c, engine)
	if err != nil {
		return err
	}
	if err := ingest(ctx, c, session); err != nil {
		return err
	}

	ans := session.Ask(ctx, c.String("question"))
	printAnswer(c.App.Writer, ans)
	if ans.Failed() {
		return ans.Err
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx, cancel := commandContext(c)
	defer cancel()

	engine, err := newEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	session, err := engine.OpenSession(ctx, c.String("session"))
	if err != nil {
		return err
	}
	n, err := session.Reembed(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintf(c.App.Writer, "Session %s has no indexed chunks.\n", session.ID())
		return nil
	}
	fmt.Fprintf(c.App.Writer, "Re-embedded %d chunks for session %s.\n", n, session.ID())
	return nil
}

func summarizeCommand(c *cli.Context) error {
	path := c.String("file")
	if err := checkPaths([]string{path}); err != nil {
		return err
	}

	ctx, cancel := commandContext(c)
	defer cancel()

	engine, err := newEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	summary, err := engine.SummarizeFile(ctx, path)
	if err != nil {
		return err
	}
	printSummary(c.App.Writer, fmt.Sprintf("Summary for %s:", filepath.Base(path)), summary)
	return nil
}

func summarizeBatchCommand(c *cli.Context) error {
	folder := c.String("folder")

	ctx, cancel := commandContext(c)
	defer cancel()

	engine, err := newEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	summary, err := engine.SummarizeFolder(ctx, folder)
	if err != nil {
		return err
	}
	printSummary(c.App.Writer, fmt.Sprintf("Summary for all documents in folder '%s':", folder), summary)
	return nil
}

func printIngestion(w io.Writer, result *ingestion.Result) {
	for _, doc := range result.Failures() {
		fmt.Fprintf(w, "Skipped %s: %v\n", filepath.Base(doc.Origin), doc.Reason)
	}
	if result.Empty() {
		fmt.Fprintln(w, "No text could be extracted from the uploaded documents.")
		return
	}
	loaded := len(result.Documents) - len(result.Failures())
	fmt.Fprintf(w, "Indexed %d chunks from %d document(s).\n", result.Chunks, loaded)
}

func printAnswer(w io.Writer, ans *core.Answer) {
	fmt.Fprintf(w, "\nAnswer:\n%s\n", ans.Text)
	if len(ans.Sources) == 0 {
		return
	}

	fmt.Fprintln(w, "\nSources:")
	for i, src := range ans.Sources {
		fmt.Fprintf(w, "[%d] %s (score %.3f)\n", i+1, filepath.Base(src.Chunk.Origin), src.Score)
		fmt.Fprintf(w, "    %s\n", docrag.Preview(src.Chunk.Text, previewLength))
	}
}

func printSummary(w io.Writer, header string, summary *docrag.Summary) {
	for _, doc := range summary.Documents {
		if !doc.OK() {
			fmt.Fprintf(w, "Skipped %s: %v\n", filepath.Base(doc.Origin), doc.Reason)
		}
	}
	if summary.Empty() {
		fmt.Fprintf(w, "No content found in %s\n", summary.Source)
		return
	}
	fmt.Fprintf(w, "\n%s\n\n%s\n", header, summary.Text)
}
