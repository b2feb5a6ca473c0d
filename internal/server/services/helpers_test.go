package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/filex"
	"github.com/dmitrijs2005/vidtube/internal/server/auth"
	"github.com/dmitrijs2005/vidtube/internal/server/metrics"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/users"
	"github.com/dmitrijs2005/vidtube/internal/server/sessions"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var testSecrets = auth.Secrets{
	AccessSecret:  []byte("access-secret"),
	RefreshSecret: []byte("refresh-secret"),
	AccessTTL:     15 * time.Minute,
	RefreshTTL:    240 * time.Hour,
}

type authFixture struct {
	svc     *AuthService
	repo    *users.MemoryRepository
	clock   *manualClock
	metrics *metrics.AuthMetrics
}

func newAuthFixture(t *testing.T, minEntropy float64) *authFixture {
	t.Helper()

	clock := &manualClock{now: time.Now()}
	issuer, err := auth.NewTokenIssuer(testSecrets, clock)
	require.NoError(t, err)
	verifier, err := auth.NewTokenVerifier(testSecrets, clock)
	require.NoError(t, err)

	repo := users.NewMemoryRepository()
	m := metrics.NewAuthMetrics()

	svc := NewAuthService(AuthServiceConfig{
		Users:              repo,
		Sessions:           sessions.NewRecordStore(repo),
		Hasher:             auth.NewBcryptHasher(bcrypt.MinCost),
		Issuer:             issuer,
		Verifier:           verifier,
		MinPasswordEntropy: minEntropy,
		Metrics:            m,
	})
	return &authFixture{svc: svc, repo: repo, clock: clock, metrics: m}
}

func aliceInput() RegisterInput {
	return RegisterInput{
		Username: "alice",
		FullName: "Alice Liddell",
		Email:    "alice@x.com",
		Password: "secret123",
		Avatar:   "https://media.test/avatar.png",
	}
}

// fakeUploader honours the Uploader contract: staged files are removed on
// every attempt.
type fakeUploader struct {
	mu        sync.Mutex
	n         int
	uploaded  []string
	deleted   []string
	uploadErr map[string]error
	deleteErr error
}

func (f *fakeUploader) Upload(_ context.Context, localPath string) (string, error) {
	defer filex.RemoveStaged(localPath)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.uploadErr[filepath.Base(localPath)]; err != nil {
		return "", err
	}
	f.n++
	ref := fmt.Sprintf("https://media.test/%d%s", f.n, filepath.Ext(localPath))
	f.uploaded = append(f.uploaded, ref)
	return ref, nil
}

func (f *fakeUploader) Delete(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ref)
	return f.deleteErr
}

func stageFile(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte("img"), 0o600))
	return p
}

func fileGone(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	return os.IsNotExist(err)
}
