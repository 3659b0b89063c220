package guard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ficomdev/ficomtest/internal/client/models"
	"github.com/ficomdev/ficomtest/internal/client/repositories/credentials"
	"github.com/ficomdev/ficomtest/internal/client/state"
	"github.com/ficomdev/ficomtest/internal/common"
)

func loadingSnap() state.Snapshot {
	return state.Snapshot{Loading: true}
}

func anonymousSnap() state.Snapshot {
	return state.Snapshot{}
}

func authenticatedSnap() state.Snapshot {
	return state.Snapshot{
		User:         &models.User{ID: "u-1"},
		AccessToken:  "a",
		RefreshToken: "r",
	}
}

func TestEvaluate_LoadingShowsLoading(t *testing.T) {
	g := New()

	cmd := g.Evaluate(loadingSnap())

	assert.Equal(t, ShowLoading, cmd.Kind)
	assert.Equal(t, StateLoading, g.State())
}

func TestEvaluate_AuthenticatedRendersContent(t *testing.T) {
	g := New()

	g.Evaluate(loadingSnap())
	cmd := g.Evaluate(authenticatedSnap())

	assert.Equal(t, RenderContent, cmd.Kind)
	assert.Equal(t, StateAuthenticated, g.State())
}

func TestEvaluate_AnonymousRedirectsOnce(t *testing.T) {
	g := New()

	g.Evaluate(loadingSnap())
	cmd := g.Evaluate(anonymousSnap())

	assert.Equal(t, Redirect, cmd.Kind)
	assert.Equal(t, common.LoginPath, cmd.Path)

	// Staying unauthenticated must not redirect again.
	cmd = g.Evaluate(anonymousSnap())
	assert.Equal(t, RenderNothing, cmd.Kind)
}

func TestEvaluate_LogoutRedirectsAgain(t *testing.T) {
	g := New()

	g.Evaluate(anonymousSnap())
	g.Evaluate(authenticatedSnap())

	// Losing the session after being authenticated re-arms the redirect.
	cmd := g.Evaluate(anonymousSnap())
	assert.Equal(t, Redirect, cmd.Kind)
	assert.Equal(t, common.LoginPath, cmd.Path)
}

func TestEvaluate_PartialSessionCountsAsAnonymous(t *testing.T) {
	g := New()

	snap := authenticatedSnap()
	snap.RefreshToken = ""

	cmd := g.Evaluate(snap)
	assert.Equal(t, Redirect, cmd.Kind)
}

// fakeStore backs a real state.Context in Watch tests.
type fakeStore struct {
	creds *credentials.Credentials
}

func (f *fakeStore) Save(_ context.Context, user *models.User, access, refresh string) error {
	f.creds = &credentials.Credentials{User: user, AccessToken: access, RefreshToken: refresh}
	return nil
}

func (f *fakeStore) Restore(_ context.Context) (*credentials.Credentials, error) {
	return f.creds, nil
}

func (f *fakeStore) Clear(_ context.Context) error {
	f.creds = nil
	return nil
}

type recordingNav struct {
	paths []string
}

func (n *recordingNav) Navigate(path string) { n.paths = append(n.paths, path) }

func TestWatch_RedirectsAfterEmptyRestore(t *testing.T) {
	auth, err := state.New(&fakeStore{}, nil)
	require.NoError(t, err)

	nav := &recordingNav{}
	stop := Watch(auth, New(), nav)
	defer stop()

	// Still loading: no redirect yet.
	assert.Empty(t, nav.paths)

	require.NoError(t, auth.Restore(context.Background()))

	assert.Equal(t, []string{common.LoginPath}, nav.paths)
}

func TestWatch_LoginThenLogout(t *testing.T) {
	auth, err := state.New(&fakeStore{}, nil)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, auth.Restore(ctx))

	nav := &recordingNav{}
	stop := Watch(auth, New(), nav)
	defer stop()

	// Watch evaluates immediately: anonymous state redirects once.
	require.Equal(t, []string{common.LoginPath}, nav.paths)

	require.NoError(t, auth.SetAuth(ctx, &models.User{ID: "u-1"}, "a", "r"))
	assert.Len(t, nav.paths, 1)

	require.NoError(t, auth.ClearAuth(ctx))
	assert.Equal(t, []string{common.LoginPath, common.LoginPath}, nav.paths)
}

func TestWatch_StopDetachesGuard(t *testing.T) {
	auth, err := state.New(&fakeStore{}, nil)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, auth.Restore(ctx))

	nav := &recordingNav{}
	stop := Watch(auth, New(), nav)
	require.Len(t, nav.paths, 1)

	stop()

	require.NoError(t, auth.SetAuth(ctx, &models.User{ID: "u-1"}, "a", "r"))
	require.NoError(t, auth.ClearAuth(ctx))

	assert.Len(t, nav.paths, 1)
}
