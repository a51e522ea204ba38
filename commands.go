package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/olehluchkiv/codesage/internal/analyzer"
	"github.com/olehluchkiv/codesage/internal/enricher"
	"github.com/olehluchkiv/codesage/internal/report"
	"github.com/olehluchkiv/codesage/internal/resolver"
	"github.com/olehluchkiv/codesage/internal/server"
	"github.com/olehluchkiv/codesage/internal/service"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		format   string
		output   string
		enrich   bool
		watch    bool
		cacheDir string
	)

	cmd := &cobra.Command{
		Use:   "analyze <path|github-url>",
		Short: "Analyze a file, a directory or a GitHub repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			var enr enricher.Enricher
			if enrich {
				if !a.cfg.LLM.Available() {
					return fmt.Errorf("--enrich: %w", errNoProvider)
				}
				if enr, err = buildEnricher(a.cfg.LLM, a.logger); err != nil {
					return err
				}
			}
			svc := a.newService(enr)

			res, err := resolver.New(cacheDir, a.logger)
			if err != nil {
				return err
			}
			target, err := res.Resolve(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("resolve %s: %w", args[0], err)
			}
			if watch && target.Remote != "" {
				return fmt.Errorf("--watch needs a local path, got %s", args[0])
			}

			out := cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				defer file.Close()
				out = file
			}

			analyses, err := analyzeTarget(cmd, svc, target)
			if err != nil {
				return err
			}
			if err := report.Write(out, f, analyses); err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d file analysis(es) to %s\n", len(analyses), output)
			}
			if !watch {
				return nil
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for changes (Ctrl+C to stop)\n", target.Path)
			return svc.Watch(cmd.Context(), target.Path, 0, func(batch []service.FileAnalysis) {
				if err := report.Write(out, f, batch); err != nil {
					a.logger.Warn("failed to write report", "error", err)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatJSON), "output format: json, yaml, markdown, mermaid")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&enrich, "enrich", false, "add an AI review to every file (needs an LLM provider)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-analyze files as they change")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "where GitHub clones are cached (default ~/.cache/codesage/repos)")
	return cmd
}

func analyzeTarget(cmd *cobra.Command, svc *service.Service, target resolver.Target) ([]service.FileAnalysis, error) {
	if target.IsDir {
		return svc.AnalyzeDir(cmd.Context(), target.Path)
	}
	fa, err := svc.AnalyzeFile(cmd.Context(), target.Path)
	if err != nil {
		return nil, err
	}
	return []service.FileAnalysis{*fa}, nil
}

func newServeCmd(a *app) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("host") {
				a.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			enr, err := buildEnricher(a.cfg.LLM, a.logger)
			if err != nil {
				return err
			}
			srv := server.New(a.newService(enr), server.Options{
				Addr:            a.cfg.Server.Addr(),
				CORSOrigins:     a.cfg.Server.CORSOrigins,
				ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
				MaxUploadSize:   a.cfg.Upload.MaxFileSize,
				Version:         version,
			}, a.logger)

			fmt.Fprintf(cmd.ErrOrStderr(), "Starting server on http://%s\n", a.cfg.Server.Addr())
			return srv.Serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides server.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
	return cmd
}

func newExtensionsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "extensions",
		Short: "List accepted file extensions and the analyzer behind each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exts := a.newService(nil).SupportedExtensions()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(exts)
			}
			return writeExtensions(out, exts)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func writeExtensions(w io.Writer, exts service.Extensions) error {
	reg := analyzer.DefaultRegistry()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EXTENSION\tANALYZER")
	for _, ext := range exts.Extensions {
		fmt.Fprintf(tw, "%s\t%s\n", ext, reg.Select(ext).Language())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nMax file size: %g MB\n", exts.MaxFileSizeMB)
	return err
}

func newQuestionCmd(a *app) *cobra.Command {
	var (
		file     string
		code     string
		language string
	)

	cmd := &cobra.Command{
		Use:   "question <question>",
		Short: "Ask the AI a question about a piece of code",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				content, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				code = string(content)
				if language == "" {
					language = analyzer.DefaultRegistry().ForFile(file).Language()
				}
			}
			enr, err := buildEnricher(a.cfg.LLM, a.logger)
			if err != nil {
				return err
			}
			ans, err := a.newService(enr).AnswerQuestion(cmd.Context(), strings.Join(args, " "), code, language)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), ans.Answer)
			return err
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "read the code from this file")
	cmd.Flags().StringVar(&code, "code", "", "the code to ask about")
	cmd.Flags().StringVar(&language, "language", "", "language of the code (default from the file extension, else Generic)")
	return cmd
}

func newDocsCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "docs <file>",
		Short: "Generate Markdown documentation for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			enr, err := buildEnricher(a.cfg.LLM, a.logger)
			if err != nil {
				return err
			}
			svc := a.newService(enr)
			if err := svc.ValidateFile(args[0], int64(len(content))); err != nil {
				return err
			}
			doc, err := svc.GenerateDocumentation(cmd.Context(), filepath.Base(args[0]), content)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), doc.Documentation)
				return err
			}
			if err := os.WriteFile(output, []byte(doc.Documentation+"\n"), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote documentation to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}
