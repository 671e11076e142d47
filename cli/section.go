package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aggieseek/seatwatch/api"
	"github.com/aggieseek/seatwatch/api/section"
	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/morikuni/failure/v2"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var (
	browserFlag   bool
	noPagerFlag   bool
	resourceFlags []string

	sectionCmd = &cobra.Command{
		Use:   "section TERM CRN",
		Short: "Show everything known about one section",
		Long: `Show a section's general info merged with its restrictions,
prerequisites, meeting times, bookstore links and attributes.

Example:
  seatwatch section 202431 12345
  seatwatch section 202431 12345 --json
  seatwatch section 202431 12345 --browser
  seatwatch section 202431 12345 -r SECTION_PREREQS -r MEETING_TIMES_WITH_PROFS`,
		Args: cobra.ExactArgs(2),
		RunE: runSection,
	}

	seatsCmd = &cobra.Command{
		Use:   "seats TERM CRN...",
		Short: "Show seat counts for one or more sections",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runSeats,
	}
)

func init() {
	sectionCmd.Flags().BoolVarP(&browserFlag, "browser", "b", false, "Open the section syllabus in the browser")
	sectionCmd.Flags().BoolVar(&noPagerFlag, "no-pager", false, "Print the rendered section without the pager")
	sectionCmd.Flags().StringSliceVarP(&resourceFlags, "resource", "r", nil, "Only fetch these sub-resources (default all)")
	rootCmd.AddCommand(sectionCmd, seatsCmd)
}

func runSection(cmd *cobra.Command, args []string) error {
	ref := section.NewRef(args[0], args[1])
	if err := ref.Validate(); err != nil {
		return failure.Wrap(err, failure.WithCode(InvalidArguments))
	}

	svc, err := newService()
	if err != nil {
		return err
	}

	if browserFlag {
		u := svc.SyllabusURL(ref)
		fmt.Fprintf(cmd.OutOrStdout(), "Opening syllabus in browser: %s\n", u)
		if err := browser.OpenURL(u); err != nil {
			return failure.Wrap(err)
		}
		return nil
	}

	rec := svc.Section(cmd.Context(), ref)
	if !rec.Found() {
		return failure.New(SectionNotFound,
			failure.Message("Section not found"),
			failure.Context{"term": ref.Term, "crn": ref.CRN},
		)
	}

	if jsonFlag {
		return writeJSON(cmd.OutOrStdout(), rec)
	}

	doc, err := api.Document(rec)
	if err != nil {
		return failure.Wrap(err)
	}
	out, err := renderMarkdown(doc)
	if err != nil {
		return err
	}

	if noPagerFlag || !isatty.IsTerminal(os.Stdout.Fd()) {
		if _, err := io.WriteString(cmd.OutOrStdout(), out); err != nil {
			return failure.Wrap(err)
		}
		return nil
	}
	if err := RunPager(rec.CourseName, out); err != nil {
		return failure.Wrap(err)
	}
	return nil
}

func runSeats(cmd *cobra.Command, args []string) error {
	term := args[0]
	refs := make([]section.Ref, 0, len(args)-1)
	for _, crn := range args[1:] {
		ref := section.NewRef(term, crn)
		if err := ref.Validate(); err != nil {
			return failure.Wrap(err, failure.WithCode(InvalidArguments))
		}
		refs = append(refs, ref)
	}

	svc, err := newService()
	if err != nil {
		return err
	}

	classes := svc.SeatBatch(cmd.Context(), refs)
	if jsonFlag {
		return writeJSON(cmd.OutOrStdout(), classes)
	}

	w := cmd.OutOrStdout()
	for _, c := range classes {
		seats, ok := c[section.KeySeats].(map[string]any)
		if !ok {
			fmt.Fprintf(w, "%s\tunavailable\n", c.CRN())
			continue
		}
		fmt.Fprintf(w, "%s\t%v/%v taken, %v open\n", c.CRN(),
			seats["ACTUAL"], seats["CAPACITY"], seats["REMAINING"])
	}
	return nil
}

func renderMarkdown(doc string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", failure.Wrap(err)
	}
	out, err := renderer.Render(doc)
	if err != nil {
		return "", failure.Wrap(err)
	}
	return out, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return failure.Wrap(err)
	}
	return nil
}
