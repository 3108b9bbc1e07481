package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question from the terminal",
	Long: `The ask command builds the document index, answers one question and
exits. No conversation history is kept.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var showPrompt bool

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&showPrompt, "show-prompt", false, "print the rendered prompt before answering")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	question := strings.Join(args, " ")

	p, err := newPipeline()
	if err != nil {
		return err
	}

	spinner := getSpinner("Building index")
	gen, err := p.Build(ctx)
	spinner.Finish()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if showPrompt {
		prompt, err := gen.Prompt(ctx, question, "")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, color.HiBlackString(prompt))
	}

	answer, err := gen.Generate(ctx, question, "")
	if err != nil {
		return err
	}

	fmt.Fprintln(out, color.GreenString("AI:"), answer)
	return nil
}
