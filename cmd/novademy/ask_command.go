package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCommand(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <lessonId> <question...>",
		Short: "Ask the lesson assistant a question",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args[1:], " ")
			answer, err := app().chatbot.AskQuestion(cmd.Context(), args[0], question)
			if err != nil {
				return err
			}
			fmt.Println(answer.Answer)
			return nil
		},
	}
}
