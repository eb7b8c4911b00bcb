package cli

import (
	"fmt"
	"io"
	"strings"

	"interviewcoach/internal/common"
	"interviewcoach/internal/errors"
	"interviewcoach/internal/formatters"
	"interviewcoach/internal/interview"
	"interviewcoach/internal/types"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

const (
	actionAnswer = "Answer"
	actionSkip   = "Skip"
	actionQuit   = "End interview"
)

// answerSource collects the candidate's input during a practice session
type answerSource interface {
	Ask(label string) (string, error)
	Choose(label string, items []string) (string, error)
}

// promptSource reads input with promptui
type promptSource struct {
	stdin  io.ReadCloser
	stdout io.WriteCloser
}

func newPromptSource(in io.Reader, out io.Writer) *promptSource {
	return &promptSource{stdin: io.NopCloser(in), stdout: nopWriteCloser{out}}
}

func (p *promptSource) Ask(label string) (string, error) {
	prompt := promptui.Prompt{
		Label:  label,
		Stdin:  p.stdin,
		Stdout: p.stdout,
	}
	return prompt.Run()
}

func (p *promptSource) Choose(label string, items []string) (string, error) {
	sel := promptui.Select{
		Label:  label,
		Items:  items,
		Stdin:  p.stdin,
		Stdout: p.stdout,
	}
	_, choice, err := sel.Run()
	return choice, err
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// endedByUser reports whether err means the candidate stopped the interview
func endedByUser(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) ||
		errors.Is(err, promptui.ErrEOF) ||
		errors.Is(err, promptui.ErrAbort)
}

func newPracticeCmd() *cobra.Command {
	var cmdConfig common.CommandConfig

	cmd := &cobra.Command{
		Use:   "practice [role]",
		Short: "Run an interactive interview in the terminal",
		Long: `Run a full interview in the terminal. Six questions are generated for the
role, each answer is scored as you go and a report is printed at the end.
Skipped questions score 0. Press Ctrl+C to end early and get a partial report.`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return resolveOutputConfig(cmd, &cmdConfig)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			src := newPromptSource(cmd.InOrStdin(), cmd.OutOrStdout())
			return runPractice(cmd, strings.Join(args, " "), src, cmdConfig)
		},
	}
	addOutputFlags(cmd, &cmdConfig)
	return cmd
}

func runPractice(cmd *cobra.Command, role string, src answerSource, cmdConfig common.CommandConfig) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)
	out := cmd.OutOrStdout()

	if strings.TrimSpace(role) == "" {
		var err error
		if role, err = src.Ask("Job role"); err != nil {
			if endedByUser(err) {
				return nil
			}
			return fmt.Errorf("failed to read role: %w", err)
		}
	}
	// Validated here so a bad role fails before any service is built
	if _, err := interview.ValidateRole(role, cfg.Interview); err != nil {
		return err
	}

	services, err := buildInterviewServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer services.Close()

	generated, err := services.generator.Generate(ctx, types.GenerateQuestionsInput{Role: role})
	if err != nil {
		return err
	}
	set := generated.Set
	if set.Warning != "" {
		fmt.Fprintf(out, "Note: %s\n", set.Warning)
	}

	session := interview.NewSession(set.Role)
	total := len(set.Questions)
questions:
	for i, q := range set.Questions {
		fmt.Fprintf(out, "\nQuestion %d of %d: %s\n%s\n", i+1, total, q.Title, q.Prompt)
		if q.ExpectedOutput != "" {
			fmt.Fprintf(out, "Expected output: %s\n", q.ExpectedOutput)
		}

		action, err := src.Choose("What next?", []string{actionAnswer, actionSkip, actionQuit})
		if err != nil {
			if endedByUser(err) {
				break questions
			}
			return fmt.Errorf("failed to read choice: %w", err)
		}

		answer := ""
		switch action {
		case actionQuit:
			break questions
		case actionAnswer:
			if answer, err = src.Ask("Your answer"); err != nil {
				if endedByUser(err) {
					break questions
				}
				return fmt.Errorf("failed to read answer: %w", err)
			}
		}

		evaluated, err := services.evaluator.Evaluate(ctx, types.EvaluateAnswerInput{
			Question: q.EvaluationText(),
			Answer:   answer,
			Category: q.Category,
		})
		if err != nil {
			return err
		}
		session.Record(q, answer, evaluated.Evaluation)

		eval := evaluated.Evaluation
		fmt.Fprintf(out, "Score: %d/%d\n%s\n", eval.Score, eval.MaxScore, eval.Feedback)
	}

	if session.Len() < total {
		logger.Info("Interview ended early", "answered", session.Len(), "questions", total)
		fmt.Fprintf(out, "\nInterview ended after %d of %d questions.\n", session.Len(), total)
	}
	fmt.Fprintln(out)

	report := session.Report()
	handler := common.NewOutputHandler(formatters.NewFormatterRegistry(), out, logger)
	return handler.HandleOutput(report, cmdConfig)
}
