package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"proposal-client/internal/domain"
	"proposal-client/internal/guard"
	"proposal-client/internal/spreadsheet"
)

var (
	assumeYes    bool
	previewLimit int
	page         int
	perPage      int
	headRows     int
)

var submitCmd = &cobra.Command{
	Use:   "submit FILE",
	Short: "Validate a spreadsheet and generate a proposal from it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(domain.ViewCreate); err != nil {
			return err
		}
		content, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		go func() {
			<-ctx.Done()
			container.Controller.Cancel()
		}()

		container.Controller.Subscribe(printProgress)

		if err := container.Controller.SelectFile(filepath.Base(args[0]), "", content); err != nil {
			return err
		}
		container.Controller.Wait()
		clearProgress()

		snap := container.Controller.Current()
		if snap.State != domain.StateValidated {
			return fail("%s", stateError(snap))
		}
		printPreview(os.Stdout, snap.Validation, previewLimit)

		if !assumeYes && !confirm("Generate the proposal?") {
			container.Controller.Reset()
			return nil
		}
		if err := container.Controller.Submit(); err != nil {
			return err
		}
		container.Controller.Wait()
		clearProgress()

		snap = container.Controller.Current()
		if snap.State != domain.StateCompleted {
			return fail("%s", stateError(snap))
		}
		if snap.UsedFallback {
			colorYellow.Println("The spreadsheet was stored; generate the document from the web client")
		}
		for _, nav := range container.Navigator.Drain() {
			container.Logger.Debug("Navigation", "to", nav.To, "reason", nav.Reason)
		}
		return nil
	},
}

var proposalsCmd = &cobra.Command{
	Use:   "proposals",
	Short: "List generated proposals",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(domain.ViewProposals); err != nil {
			return err
		}
		result, err := container.Proposals.List(cmd.Context(), page, perPage)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tFILE\tSTATUS\tDOCUMENT\tCREATED")
		for _, p := range result.Items {
			created := ""
			if p.CreatedAt != nil {
				created = p.CreatedAt.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Filename, p.Status, p.FilePath, created)
		}
		_ = tw.Flush()
		colorCyan.Printf("page %d of %d, %d total\n", result.CurrentPage, result.Pages, result.Total)
		return nil
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download NAME",
	Short: "Download a generated proposal document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(domain.ViewProposals); err != nil {
			return err
		}
		path, err := container.Proposals.DownloadByName(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		colorGreen.Printf("Saved %s\n", path)
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Show the sheets of a spreadsheet without uploading it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		selected, err := container.Classifier.Classify(filepath.Base(args[0]), "", content)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s, %d bytes)\n", selected.Name, selected.Kind, selected.Size())
		if selected.Kind == domain.FileKindXLS {
			colorYellow.Println("legacy .xls workbooks are validated by the service only")
			return nil
		}
		wb, err := spreadsheet.Inspect(content, headRows)
		if err != nil {
			return err
		}
		for _, sheet := range wb.Sheets {
			colorCyan.Printf("%s: %d rows\n", sheet.Name, sheet.Rows)
			for _, row := range sheet.Head {
				fmt.Printf("  %s\n", strings.Join(row, " | "))
			}
		}
		return nil
	},
}

func init() {
	submitCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "submit without asking")
	submitCmd.Flags().IntVar(&previewLimit, "preview", 5, "preview rows to print")
	proposalsCmd.Flags().IntVar(&page, "page", 1, "page number")
	proposalsCmd.Flags().IntVar(&perPage, "per-page", 10, "proposals per page")
	inspectCmd.Flags().IntVar(&headRows, "head", 5, "leading rows to print per sheet")
}

func requireSession(view domain.View) error {
	if d := guard.Check(container.Sessions, string(view)); !d.Allow {
		return fail("not logged in, run `%s login` first", appName)
	}
	return nil
}

func printProgress(s domain.Snapshot) {
	if !s.State.Busy() || s.Progress.Phase == domain.PhaseNone {
		return
	}
	fmt.Fprintf(os.Stderr, "\r%-10s %3.0f%%", s.Progress.Phase, s.Progress.Percent)
}

func clearProgress() {
	fmt.Fprint(os.Stderr, "\r\033[K")
}

// printPreview writes the header and at most limit rows of v to w.
func printPreview(w io.Writer, v *domain.ValidationResult, limit int) {
	if v == nil || len(v.PreviewRows) == 0 {
		return
	}
	if limit < 0 {
		limit = 0
	}
	shown := v.PreviewRows
	if len(shown) > limit {
		shown = shown[:limit]
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := make([]string, 0, len(v.PreviewRows[0]))
	for _, c := range v.PreviewRows[0] {
		header = append(header, c.Column)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range shown {
		cells := make([]string, 0, len(row))
		for _, c := range row {
			cells = append(cells, fmt.Sprint(c.Value))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()
	if rest := len(v.PreviewRows) - len(shown); rest > 0 {
		colorCyan.Fprintf(w, "... %d more rows\n", rest)
	}
}

func confirm(question string) bool {
	answer := strings.ToLower(prompt(question + " [y/N] "))
	return answer == "y" || answer == "yes"
}

func stateError(s domain.Snapshot) string {
	if s.Error != "" {
		return s.Error
	}
	return string(s.State)
}

