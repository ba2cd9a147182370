package cli

import (
	"fmt"
	"strings"

	"adaptive-quiz-service/internal/bank"
	"adaptive-quiz-service/internal/config"
	"github.com/spf13/cobra"
)

// NewBankCmd parses a question bank and prints what each week releases.
func NewBankCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "bank [path]",
		Short: "Validate a question bank and summarise it per week",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := config.Load(*configPath)
				if err != nil {
					return err
				}
				path = cfg.Quiz.BankPath
			}

			questions, err := loadBank(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			max, _ := questions.MaxDifficulty()
			fmt.Fprintf(out, "%d questions, max difficulty %d\n", questions.Len(), max)
			for _, s := range questions.Summary() {
				fmt.Fprintf(out, "week %2d: %3d questions  topics=%s  difficulties=%v\n",
					s.Week, s.Questions, strings.Join(s.Topics, ","), s.Difficulties)
			}
			return nil
		},
	}
}

// loadBank reads the bank at path, or the embedded demo bank when path is empty.
func loadBank(path string) (*bank.Bank, error) {
	if path == "" {
		return bank.Demo()
	}
	return bank.LoadFile(path)
}
