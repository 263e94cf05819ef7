package main

import (
	"context"
	"fmt"
	"io"
	"nearby-pro-service/internal/domain"
	"nearby-pro-service/internal/services"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type nearbyOptions struct {
	query    string
	selectID string
	top      int
}

func newNearbyCmd(root *rootOptions) *cobra.Command {
	opts := &nearbyOptions{}

	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "Rank the roster by distance from a place",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNearby(cmd, root, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "place to search for (required)")
	cmd.Flags().StringVar(&opts.selectID, "select", "", "professional id to fetch a route to")
	cmd.Flags().IntVar(&opts.top, "top", 10, "number of ranked professionals to print (0 = all)")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func runNearby(cmd *cobra.Command, root *rootOptions, opts *nearbyOptions) error {
	a, _, err := setup(cmd, root)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), root.timeout)
	defer cancel()

	s, err := a.Registry.Create(ctx)
	if err != nil {
		return err
	}

	if _, err := s.Search(ctx, opts.query); err != nil {
		return fmt.Errorf("%s: %w", domain.UserMessage(err), err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "resolving roster (one lookup every %s)...\n", a.Config.BatchDelay)
	st, err := s.WaitFor(ctx, func(st services.SessionState) bool { return !st.Resolving })
	if err != nil {
		return fmt.Errorf("wait for roster: %w", err)
	}
	printRanked(out, st, opts.top)

	if opts.selectID == "" {
		return nil
	}

	if _, err := s.Select(opts.selectID); err != nil {
		return err
	}
	st, err = s.WaitFor(ctx, func(st services.SessionState) bool { return st.Phase == services.PhaseRouteReady })
	if err != nil {
		return fmt.Errorf("wait for route: %w", err)
	}
	if st.Route.Empty() {
		fmt.Fprintln(out, "no route available")
		return nil
	}
	fmt.Fprintf(out, "route to %s: %d points, from %s to %s\n",
		st.SelectedID, len(st.Route), st.Route[0], st.Route[len(st.Route)-1])
	return nil
}

func printRanked(out io.Writer, st services.SessionState, top int) {
	if st.Reference != nil {
		fmt.Fprintf(out, "reference: %s (%s)\n", st.ReferenceLabel, *st.Reference)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tNAME\tKM\tSOURCE")
	for i, rp := range st.Ranked {
		if top > 0 && i == top {
			break
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t%s\n", rp.Rank, rp.ID, rp.Name, rp.DistanceKm, rp.Source)
	}
	_ = tw.Flush()
}
