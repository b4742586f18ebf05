package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/etov/internal/application/handlers"
	"github.com/ersonp/etov/internal/domain/entities"
)

type previewFlags struct {
	format string
	output string
}

func newPreviewCmd() *cobra.Command {
	var flags previewFlags

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the perfumes a run would produce",
		Long:  "Reads the workbook and prints the merged perfumes as JSON, CSV, markdown, or the note files themselves. Nothing is written to the vault.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "markdown", "Output format (json, csv, markdown, notes)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runPreview(cmd *cobra.Command, flags previewFlags) error {
	if !contains(validFormats, flags.format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, validFormats)
	}

	return withDeps(func(deps *Deps) (err error) {
		result, err := deps.PreviewHandler.Handle(cmd.Context(), deps.Source)
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if flags.output != "" {
			f, ferr := os.OpenFile(flags.output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
			if ferr != nil {
				return fmt.Errorf("creating file: %w", ferr)
			}
			defer func() {
				if cerr := f.Close(); cerr != nil && err == nil {
					err = fmt.Errorf("closing file: %w", cerr)
				}
			}()
			w = f
		}

		perfumes := result.Catalog.Perfumes()
		switch flags.format {
		case "json":
			err = formatJSON(w, perfumes, result.Unresolved)
		case "csv":
			err = formatCSV(w, perfumes)
		case "markdown":
			err = formatMarkdown(w, perfumes, result.Accords.Len(), result.Unresolved)
		case "notes":
			err = formatNotes(w, deps.PreviewHandler.Notes(result, deps.OutputDir, deps.Labels, deps.IncludeAccords))
		}
		if err != nil {
			return fmt.Errorf("formatting output: %w", err)
		}

		if flags.output != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Previewed %d perfumes to %s\n", len(perfumes), flags.output)
		}
		return nil
	})
}

func formatJSON(w io.Writer, perfumes []*entities.Perfume, unresolved []entities.UnresolvedKey) error {
	type preview struct {
		Perfumes   []*entities.Perfume      `json:"perfumes"`
		Unresolved []entities.UnresolvedKey `json:"unresolved"`
	}

	out := preview{
		Perfumes:   perfumes,
		Unresolved: unresolved,
	}
	if out.Perfumes == nil {
		out.Perfumes = []*entities.Perfume{}
	}
	if out.Unresolved == nil {
		out.Unresolved = []entities.UnresolvedKey{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(out)
}

func formatCSV(w io.Writer, perfumes []*entities.Perfume) error {
	writer := csv.NewWriter(w)

	header := []string{"code", "brand", "name", "keywords", "accords"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, p := range perfumes {
		row := []string{
			p.Code,
			p.BrandName,
			p.Name,
			strings.Join(p.Keywords, ";"),
			strings.Join(p.Accords, ";"),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatMarkdown(w io.Writer, perfumes []*entities.Perfume, accordCount int, unresolved []entities.UnresolvedKey) error {
	if _, err := fmt.Fprintf(w, "# Perfume Preview\n\nTotal: %d perfumes, %d accords\n\n", len(perfumes), accordCount); err != nil {
		return err
	}

	if _, err := fmt.Fprint(w, "| Code | Brand | Name | Keywords | Accords |\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "|------|-------|------|----------|---------|\n"); err != nil {
		return err
	}

	for _, p := range perfumes {
		if _, err := fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
			escapeMarkdown(p.Code),
			escapeMarkdown(p.BrandName),
			escapeMarkdown(p.Name),
			escapeMarkdown(strings.Join(p.Keywords, ", ")),
			escapeMarkdown(strings.Join(p.Accords, ", ")),
		); err != nil {
			return err
		}
	}

	if len(unresolved) == 0 {
		return nil
	}

	if _, err := fmt.Fprintf(w, "\n## Unresolved accord rows\n\n"); err != nil {
		return err
	}
	for _, u := range unresolved {
		if _, err := fmt.Fprintf(w, "- row %d: `%s` (%s)\n", u.Row, u.Key, escapeMarkdown(u.Name)); err != nil {
			return err
		}
	}
	return nil
}

func formatNotes(w io.Writer, notes []handlers.PreviewNote) error {
	for i, n := range notes {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "==> %s <==\n%s\n", n.Path, n.Content); err != nil {
			return err
		}
	}
	return nil
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
