package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/vidtube/internal/client/client"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	loggedIn bool

	registered  client.RegisterInput
	loginName   string
	loginPass   string
	oldPass     string
	newPass     string
	accountName string
	accountMail string
	avatarPath  string
	coverPath   string
	refreshed   bool

	err error
}

var aliceProfile = &models.Profile{ID: "id-1", Username: "alice", FullName: "Alice", Email: "alice@x.com", Avatar: "https://media.test/1"}

func (f *fakeClient) Close() error               { return nil }
func (f *fakeClient) Ping(context.Context) error { return nil }
func (f *fakeClient) LoggedIn() bool             { return f.loggedIn }
func (f *fakeClient) Refresh(context.Context) error {
	f.refreshed = true
	return f.err
}

func (f *fakeClient) Register(_ context.Context, in client.RegisterInput) (*models.Profile, error) {
	f.registered = in
	if f.err != nil {
		return nil, f.err
	}
	return aliceProfile, nil
}

func (f *fakeClient) Login(_ context.Context, login, password string) (*models.Profile, error) {
	f.loginName, f.loginPass = login, password
	if f.err != nil {
		return nil, f.err
	}
	f.loggedIn = true
	return aliceProfile, nil
}

func (f *fakeClient) Logout(context.Context) error {
	f.loggedIn = false
	return f.err
}

func (f *fakeClient) CurrentUser(context.Context) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return aliceProfile, nil
}

func (f *fakeClient) ChangePassword(_ context.Context, oldPassword, newPassword string) error {
	f.oldPass, f.newPass = oldPassword, newPassword
	return f.err
}

func (f *fakeClient) UpdateAccountDetails(_ context.Context, fullName, email string) (*models.Profile, error) {
	f.accountName, f.accountMail = fullName, email
	return aliceProfile, f.err
}

func (f *fakeClient) UpdateAvatar(_ context.Context, path string) (*models.Profile, error) {
	f.avatarPath = path
	return aliceProfile, f.err
}

func (f *fakeClient) UpdateCover(_ context.Context, path string) (*models.Profile, error) {
	f.coverPath = path
	return aliceProfile, f.err
}

// stubInputs feeds answers to successive text and password prompts.
func stubInputs(t *testing.T, texts []string, passwords []string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		v := texts[0]
		texts = texts[1:]
		return v, nil
	}
	getPassword = func(_ io.Writer, _ string) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, io.EOF
		}
		v := passwords[0]
		passwords = passwords[1:]
		return []byte(v), nil
	}
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

func newTestApp(f *fakeClient) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &App{client: f, out: out, reader: bufio.NewReader(strings.NewReader(""))}, out
}

func TestRegister_Success(t *testing.T) {
	f := &fakeClient{}
	a, out := newTestApp(f)
	stubInputs(t, []string{"alice", "Alice", "alice@x.com", "/tmp/me.png", ""}, []string{"secret123"})

	require.NoError(t, a.Register(context.Background()))

	assert.Equal(t, client.RegisterInput{
		Username: "alice", FullName: "Alice", Email: "alice@x.com",
		Password: "secret123", AvatarPath: "/tmp/me.png",
	}, f.registered)
	assert.Contains(t, out.String(), "Registered!")
	assert.False(t, a.isLoggedIn())
}

func TestRegister_PromptError(t *testing.T) {
	f := &fakeClient{}
	a, _ := newTestApp(f)
	stubInputs(t, []string{"alice"}, nil)

	require.ErrorIs(t, a.Register(context.Background()), io.EOF)
	assert.Empty(t, f.registered.Username)
}

func TestLogin(t *testing.T) {
	f := &fakeClient{}
	a, out := newTestApp(f)
	stubInputs(t, []string{"alice@x.com"}, []string{"secret123"})

	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, "alice@x.com", f.loginName)
	assert.Equal(t, "secret123", f.loginPass)
	assert.Equal(t, "(alice)", a.getStatus())
	assert.Contains(t, out.String(), "Logged in as alice")
}

func TestLogin_Failure(t *testing.T) {
	f := &fakeClient{err: client.ErrUnauthorized}
	a, out := newTestApp(f)
	stubInputs(t, []string{"alice"}, []string{"wrong"})

	require.ErrorIs(t, a.Login(context.Background()), client.ErrUnauthorized)
	assert.Equal(t, "", a.getStatus())
	assert.Contains(t, out.String(), "Login failed")
}

func TestLogout_ForgetsUserEvenOnError(t *testing.T) {
	f := &fakeClient{loggedIn: true, err: client.ErrUnavailable}
	a, _ := newTestApp(f)
	a.userName = "alice"

	require.ErrorIs(t, a.Logout(context.Background()), client.ErrUnavailable)
	assert.Empty(t, a.userName)
	assert.False(t, a.isLoggedIn())
}

func TestChangePassword(t *testing.T) {
	f := &fakeClient{loggedIn: true}
	a, out := newTestApp(f)
	stubInputs(t, nil, []string{"old-pass", "new-pass"})

	require.NoError(t, a.ChangePassword(context.Background()))
	assert.Equal(t, "old-pass", f.oldPass)
	assert.Equal(t, "new-pass", f.newPass)
	assert.Contains(t, out.String(), "Password changed")
}

func TestRefresh(t *testing.T) {
	f := &fakeClient{loggedIn: true}
	a, _ := newTestApp(f)

	require.NoError(t, a.Refresh(context.Background()))
	assert.True(t, f.refreshed)

	f.err = errors.New("boom")
	require.Error(t, a.Refresh(context.Background()))
}

func TestProfileCommands(t *testing.T) {
	f := &fakeClient{loggedIn: true}
	a, out := newTestApp(f)
	stubInputs(t, []string{"Alice L", "a@new.com", "/tmp/a.png", "/tmp/c.jpg"}, nil)
	ctx := context.Background()

	require.NoError(t, a.UpdateAccount(ctx))
	require.NoError(t, a.UpdateAvatar(ctx))
	require.NoError(t, a.UpdateCover(ctx))
	require.NoError(t, a.WhoAmI(ctx))

	assert.Equal(t, "Alice L", f.accountName)
	assert.Equal(t, "a@new.com", f.accountMail)
	assert.Equal(t, "/tmp/a.png", f.avatarPath)
	assert.Equal(t, "/tmp/c.jpg", f.coverPath)
	assert.Contains(t, out.String(), "id:     id-1")
}
