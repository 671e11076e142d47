package cli

import (
	"fmt"
	"strings"

	"github.com/aggieseek/seatwatch/api/section"
	"github.com/morikuni/failure/v2"
	"github.com/spf13/cobra"
)

var (
	simpleFlag bool

	classesCmd = &cobra.Command{
		Use:   "classes TERM",
		Short: "List every class section offered in a term",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			classes, err := svc.Classes(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if simpleFlag {
				return writeJSON(cmd.OutOrStdout(), section.Simplify(classes))
			}
			return writeJSON(cmd.OutOrStdout(), classes)
		},
	}

	termsCmd = &cobra.Command{
		Use:   "terms",
		Short: "List the terms known to the portal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			terms, err := svc.Terms(cmd.Context())
			if err != nil {
				return err
			}
			if jsonFlag {
				return writeJSON(cmd.OutOrStdout(), terms)
			}
			for _, t := range terms {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%v\n", t.Code(), t[section.TermKeyDesc])
			}
			return nil
		},
	}

	subjectsCmd = &cobra.Command{
		Use:   "subjects TERM [SUBJECT [COURSE]]",
		Short: "Browse a term's listing by subject and course",
		Long: `Without a subject, list the subjects offered in the term.
With a subject, list its course numbers. With both, list the
course's sections with their current seats.

Example:
  seatwatch subjects 202431
  seatwatch subjects 202431 csce
  seatwatch subjects 202431 CSCE 121`,
		Args: cobra.RangeArgs(1, 3),
		RunE: runSubjects,
	}
)

func init() {
	classesCmd.Flags().BoolVar(&simpleFlag, "simple", false, "Reshape records into short lowercase keys")
	rootCmd.AddCommand(classesCmd, termsCmd, subjectsCmd)
}

func runSubjects(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	term := args[0]
	w := cmd.OutOrStdout()

	switch len(args) {
	case 1:
		subjects, err := svc.Subjects(ctx, term)
		if err != nil {
			return err
		}
		return printList(cmd, subjects)
	case 2:
		courses, err := svc.Courses(ctx, term, strings.ToUpper(args[1]))
		if err != nil {
			return err
		}
		return printList(cmd, courses)
	}

	sections, err := svc.Sections(ctx, term, strings.ToUpper(args[1]), args[2])
	if err != nil {
		return err
	}
	if len(sections) == 0 {
		return failure.New(SectionNotFound,
			failure.Message("No sections found"),
			failure.Context{"subject": args[1], "course": args[2]},
		)
	}
	if jsonFlag {
		return writeJSON(w, sections)
	}
	for _, c := range sections {
		seats := "unavailable"
		if m, ok := c[section.KeySeats].(map[string]any); ok {
			seats = fmt.Sprintf("%v/%v", m["REMAINING"], m["CAPACITY"])
		}
		fmt.Fprintf(w, "%s\t%s %s\t%s\n", c.CRN(), c.Subject(), c.Course(), seats)
	}
	return nil
}

func printList(cmd *cobra.Command, items []string) error {
	if jsonFlag {
		return writeJSON(cmd.OutOrStdout(), items)
	}
	for _, item := range items {
		fmt.Fprintln(cmd.OutOrStdout(), item)
	}
	return nil
}
