package cli

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/ember/internal/app"
	"github.com/alexanderramin/ember/internal/cli/formatter"
)

func newFeedbackCmd(a *App, opts *rootOptions) *cobra.Command {
	var req app.FeedbackRequest
	cmd := &cobra.Command{
		Use:   "feedback <recommendation-id>",
		Short: "Rate an applied recommendation and report completion",
		Long: `Record how well an applied recommendation worked.

Marking it completed runs a fresh analysis and stores the score change.
Without --rating on a terminal, an interactive form asks for the details.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.RecommendationID = args[0]
			if !cmd.Flags().Changed("rating") {
				if !a.interactive() || opts.json {
					return app.InputError("feedback", "--rating is required")
				}
				if err := runFeedbackForm(cmd, &req); err != nil {
					return err
				}
			}

			res, err := a.Feedback.Feedback(cmd.Context(), req)
			if err != nil {
				return err
			}
			return render(cmd, opts, feedbackView{
				Application: toApplicationView(res.Application),
				Reanalysis:  toAnalysisView(res.Reanalysis),
			}, func() string {
				return formatter.FormatFeedback(res)
			})
		},
	}
	cmd.Flags().IntVar(&req.Rating, "rating", 0, "Effectiveness from 1 (useless) to 5 (very effective)")
	cmd.Flags().BoolVar(&req.Completed, "completed", false, "The recommendation has been carried out")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "Free-text notes")
	return cmd
}

func runFeedbackForm(cmd *cobra.Command, req *app.FeedbackRequest) error {
	rating := 3
	form := feedbackForm(&rating, &req.Completed, &req.Notes).
		WithProgramOptions(tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.ErrOrStderr()))
	if err := form.RunWithContext(cmd.Context()); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return app.InputError("feedback", "cancelled")
		}
		return fmt.Errorf("feedback form: %w", err)
	}
	req.Rating = rating
	req.Notes = strings.TrimSpace(req.Notes)
	return nil
}

func feedbackForm(rating *int, completed *bool, notes *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("How effective was it?").
				Options(
					huh.NewOption("5 · very effective", 5),
					huh.NewOption("4 · helpful", 4),
					huh.NewOption("3 · somewhat", 3),
					huh.NewOption("2 · barely", 2),
					huh.NewOption("1 · not at all", 1),
				).
				Value(rating),
			huh.NewConfirm().
				Title("Did you complete it?").
				Value(completed),
			huh.NewText().
				Title("Notes (optional)").
				Value(notes),
		),
	).WithTheme(emberHuhTheme()).WithShowHelp(false)
}

// emberHuhTheme matches form colors to the formatter palette.
func emberHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}
