package main

import (
	"context"
	"fmt"
	"nearby-pro-service/internal/domain"
	"nearby-pro-service/internal/services"
	"strings"

	"github.com/spf13/cobra"
)

func newSuggestCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <text>",
		Short: "Print autocomplete suggestions for a partial place name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, log, err := setup(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := a.Config
			searcher := services.NewSuggestionSearcher(a.Geocoder, services.SuggestionConfig{
				CountryCodes:  cfg.CountryCodes,
				MinChars:      cfg.SuggestMinChars,
				Debounce:      cfg.SuggestDebounce,
				Limit:         cfg.SuggestLimit,
				LookupTimeout: cfg.LookupTimeout,
			}, log)
			defer searcher.Close()

			updates := make(chan []domain.Suggestion, 1)
			searcher.OnUpdate(func(list []domain.Suggestion) {
				select {
				case updates <- list:
				default:
				}
			})

			text := strings.Join(args, " ")
			if len([]rune(strings.TrimSpace(text))) < cfg.SuggestMinChars {
				return fmt.Errorf("type at least %d characters", cfg.SuggestMinChars)
			}
			searcher.Input(text)

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.SuggestDebounce+cfg.LookupTimeout)
			defer cancel()

			var list []domain.Suggestion
			select {
			case list = <-updates:
			case <-ctx.Done():
				return fmt.Errorf("suggestions: %w", ctx.Err())
			}

			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "no suggestions")
				return nil
			}
			for i, sg := range list {
				fmt.Fprintf(out, "%d. %s (%s)\n", i+1, sg.Label, sg.Coordinate)
			}
			return nil
		},
	}
}
