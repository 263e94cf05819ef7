package services

import (
	"errors"
	"fmt"
	"nearby-pro-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustReduce(t *testing.T, s SessionState, events ...Event) SessionState {
	t.Helper()
	for _, e := range events {
		var err error
		s, err = Reduce(s, e)
		require.NoError(t, err, "event %T", e)
	}
	return s
}

func locatedState(t *testing.T) SessionState {
	t.Helper()
	s := mustReduce(t, NewSessionState(),
		RosterLoaded{Total: 3},
		BatchProgressed{Resolved: []domain.ResolvedProfessional{
			resolvedAt("p1", north(ahmedabad, 1.2)),
			resolvedAt("p2", north(ahmedabad, 0.4)),
			resolvedAt("p3", north(ahmedabad, 3.0)),
		}, Done: true},
		SearchSubmitted{},
	)
	return mustReduce(t, s, SearchSucceeded{Seq: s.SearchSeq, Coordinate: ahmedabad, Label: "Ahmedabad"})
}

func TestReduceSearchLocatesAndRanks(t *testing.T) {
	s := mustReduce(t, NewSessionState(), SearchSubmitted{})
	assert.Equal(t, PhaseSearching, s.Phase)
	assert.Equal(t, uint64(1), s.SearchSeq)

	s = locatedState(t)
	assert.Equal(t, PhaseLocated, s.Phase)
	require.NotNil(t, s.Reference)
	assert.Equal(t, ahmedabad, *s.Reference)
	require.Len(t, s.Ranked, 3)
	assert.Equal(t, "p2", s.Ranked[0].ID)
	assert.False(t, s.Resolving)
}

func TestReduceSearchFailureKeepsPriorState(t *testing.T) {
	prior := mustReduce(t, locatedState(t), ProfessionalSelected{ID: "p1"})
	prior = mustReduce(t, prior, RouteArrived{Seq: prior.RouteSeq, Path: domain.RoutePath{ahmedabad, north(ahmedabad, 1.2)}})
	require.Equal(t, PhaseRouteReady, prior.Phase)

	cases := map[string]struct {
		err  error
		want string
	}{
		"not found": {fmt.Errorf("lookup: %w", domain.ErrLocationNotFound), domain.MsgLocationNotFound},
		"transport": {errors.New("timeout"), domain.MsgSomethingWrong},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			s := mustReduce(t, prior, SearchSubmitted{})
			s = mustReduce(t, s, SearchFailed{Seq: s.SearchSeq, Err: tc.err})

			assert.Equal(t, PhaseRouteReady, s.Phase)
			assert.Equal(t, tc.want, s.LastError)
			assert.Equal(t, prior.Reference, s.Reference)
			assert.Equal(t, prior.Ranked, s.Ranked)
			assert.Equal(t, prior.Route, s.Route)
			assert.Equal(t, "p1", s.SelectedID)
		})
	}
}

func TestReduceIgnoresStaleSearch(t *testing.T) {
	s := mustReduce(t, NewSessionState(), SearchSubmitted{}, SearchSubmitted{})
	require.Equal(t, uint64(2), s.SearchSeq)

	stale := mustReduce(t, s, SearchSucceeded{Seq: 1, Coordinate: north(ahmedabad, 5)})
	assert.Equal(t, PhaseSearching, stale.Phase)
	assert.Nil(t, stale.Reference)

	s = mustReduce(t, stale, SearchSucceeded{Seq: 2, Coordinate: ahmedabad})
	assert.Equal(t, PhaseLocated, s.Phase)
	assert.Equal(t, ahmedabad, *s.Reference)
}

func TestReduceSelectRequiresReferenceAndKnownID(t *testing.T) {
	_, err := Reduce(NewSessionState(), ProfessionalSelected{ID: "p1"})
	assert.ErrorIs(t, err, domain.ErrNoReference)

	_, err = Reduce(locatedState(t), ProfessionalSelected{ID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrProfessionalNotFound)
}

func TestReduceLastSelectionWins(t *testing.T) {
	s := mustReduce(t, locatedState(t), ProfessionalSelected{ID: "p1"})
	firstSeq := s.RouteSeq
	s = mustReduce(t, s, ProfessionalSelected{ID: "p3"})
	secondSeq := s.RouteSeq
	require.Equal(t, PhaseRouteRequested, s.Phase)

	p3Path := domain.RoutePath{ahmedabad, north(ahmedabad, 3)}
	s = mustReduce(t, s, RouteArrived{Seq: secondSeq, Path: p3Path})
	s = mustReduce(t, s, RouteArrived{Seq: firstSeq, Path: domain.RoutePath{ahmedabad, north(ahmedabad, 1.2)}})

	assert.Equal(t, PhaseRouteReady, s.Phase)
	assert.Equal(t, "p3", s.SelectedID)
	assert.Equal(t, p3Path, s.Route)
}

func TestReduceNewSearchDropsOutstandingRoute(t *testing.T) {
	s := mustReduce(t, locatedState(t), ProfessionalSelected{ID: "p1"})
	routeSeq := s.RouteSeq

	s = mustReduce(t, s, SearchSubmitted{})
	s = mustReduce(t, s, SearchSucceeded{Seq: s.SearchSeq, Coordinate: north(ahmedabad, 2)})
	s = mustReduce(t, s, RouteArrived{Seq: routeSeq, Path: domain.RoutePath{ahmedabad}})

	assert.Equal(t, PhaseLocated, s.Phase)
	assert.Empty(t, s.SelectedID)
	assert.True(t, s.Route.Empty())
}

func TestReduceRouteDuringSearchSettlesAfterFailure(t *testing.T) {
	s := mustReduce(t, locatedState(t), SearchSubmitted{})
	s = mustReduce(t, s, ProfessionalSelected{ID: "p2"})
	assert.Equal(t, PhaseSearching, s.Phase)

	s = mustReduce(t, s, RouteArrived{Seq: s.RouteSeq, Path: domain.RoutePath{ahmedabad}})
	s = mustReduce(t, s, SearchFailed{Seq: s.SearchSeq, Err: domain.ErrLocationNotFound})

	assert.Equal(t, PhaseRouteReady, s.Phase)
	assert.Len(t, s.Route, 1)
}

func TestReduceBatchProgressReranksWithReference(t *testing.T) {
	s := locatedState(t)
	more := append(cloneResolved(s.Resolved), resolvedAt("p4", north(ahmedabad, 0.1)))

	s = mustReduce(t, s, BatchProgressed{Resolved: more})
	require.Len(t, s.Ranked, 4)
	assert.Equal(t, "p4", s.Ranked[0].ID)
	assert.True(t, s.Resolving)
}

func TestReduceBatchProgressWithoutReferenceDoesNotRank(t *testing.T) {
	s := mustReduce(t, NewSessionState(), BatchProgressed{Resolved: []domain.ResolvedProfessional{resolvedAt("p1", ahmedabad)}})
	assert.Len(t, s.Resolved, 1)
	assert.Empty(t, s.Ranked)
	assert.Equal(t, PhaseIdle, s.Phase)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := locatedState(t)
	before := s.clone()

	_ = mustReduce(t, s, ProfessionalSelected{ID: "p1"}, BatchProgressed{Resolved: nil, Done: true})
	assert.Equal(t, before, s)
}
