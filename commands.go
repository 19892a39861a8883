package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
	"github.com/tanpawarit/smart-dfd-agent/agent/dataset"
	"github.com/tanpawarit/smart-dfd-agent/agent/diagram"
	"github.com/tanpawarit/smart-dfd-agent/agent/pipeline"
)

const exitCommand = "exit"

// runInteractive is the default action: read descriptions until "exit".
func runInteractive(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	svc, err := a.pipeline(ctx, false)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	fmt.Fprintln(out, "Welcome to Smart DFD Agent")
	return interactiveLoop(ctx, cmd.Root().Reader, out, svc.Run)
}

type runFunc func(ctx context.Context, description string) (pipeline.RunResult, error)

func interactiveLoop(ctx context.Context, in io.Reader, out io.Writer, run runFunc) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)

	for {
		fmt.Fprint(out, "Describe your system (or type 'exit'): ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(line, exitCommand) {
			return nil
		}
		if line == "" {
			continue
		}

		fmt.Fprintln(out, "Generating DFD, please wait...")
		res, err := run(ctx, line)
		if err != nil {
			// One failed description does not end the session.
			fmt.Fprintf(out, "Generation failed: %v\n", err)
			continue
		}
		printResult(out, res)
	}
}

func printResult(out io.Writer, res pipeline.RunResult) {
	if res.Record.HasImage() {
		fmt.Fprintf(out, "DFD generated and saved as '%s'\n", res.Record.ImagePath)
	} else {
		reason := res.ImageErr
		if res.RenderErr != nil {
			reason = res.RenderErr
		}
		fmt.Fprintf(out, "DFD image not generated: %v\n", reason)
	}
	fmt.Fprintf(out, "Total time: %.2f seconds\n", res.Elapsed.Seconds())
	fmt.Fprintf(out, "Output saved to: %s\n", res.Record.OutputReportPath)
	if res.Record.DocumentPath != "" {
		fmt.Fprintf(out, "Report document: %s\n", res.Record.DocumentPath)
	}
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate one diagram from a description",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "description",
				Aliases: []string{"d"},
				Usage:   "System description text",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read the system description from a file",
			},
			&cli.BoolFlag{
				Name:  "document",
				Usage: "Also write an HTML report document",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			description, err := readDescription(a.fs, cmd.String("description"), cmd.String("file"))
			if err != nil {
				return err
			}

			svc, err := a.pipeline(ctx, cmd.Bool("document"))
			if err != nil {
				return err
			}
			res, err := svc.Run(ctx, description)
			if err != nil {
				return err
			}
			printResult(cmd.Root().Writer, res)
			return nil
		},
	}
}

func readDescription(fs afero.Fs, text, path string) (string, error) {
	if strings.TrimSpace(text) != "" {
		return text, nil
	}
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: --description or --file is required", contractx.ErrValidation)
	}
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", contractx.ErrStorage, path, err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return "", contractx.ErrEmptyDescription
	}
	return string(raw), nil
}

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "Canonicalize a DOT file and render it with Graphviz",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "DOT file to render",
				Required: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			raw, err := afero.ReadFile(a.fs, cmd.String("input"))
			if err != nil {
				return fmt.Errorf("%w: read %s: %v", contractx.ErrStorage, cmd.String("input"), err)
			}

			parsed := diagram.Split(string(raw))
			path, err := a.renderer.Render(ctx, diagram.Normalize(parsed.GraphBody))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.Root().Writer, "DFD image saved as: %s\n", path)
			return nil
		},
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent runs from the archive index",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Number of runs to show",
				Value:   10,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			index, err := a.archiveIndex(ctx)
			if err != nil {
				return err
			}
			records, err := index.Recent(ctx, int(cmd.Int("limit")))
			if err != nil {
				return err
			}

			out := cmd.Root().Writer
			if len(records) == 0 {
				fmt.Fprintln(out, "No archived runs.")
				return nil
			}
			for _, rec := range records {
				image := rec.ImagePath
				if image == "" {
					image = "-"
				}
				fmt.Fprintf(out, "%s\t%.2fs\t%s\t%s\n",
					rec.Identity.BaseName(), rec.Elapsed.Seconds(), rec.ArchiveReportPath, image)
			}
			return nil
		},
	}
}

func datasetCommand() *cli.Command {
	return &cli.Command{
		Name:  "dataset",
		Usage: "Convert raw examples into a chat fine-tuning JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "input",
				Usage: "JSON array of {input, output} examples",
				Value: "raw_examples_final.json",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "JSONL file to write",
				Value: "reconstructed_fine_tune_ready.jsonl",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			n, err := dataset.ConvertFile(afero.NewOsFs(), cmd.String("input"), cmd.String("output"))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.Root().Writer, "Wrote %d examples to %s\n", n, cmd.String("output"))
			return nil
		},
	}
}
