package seeds

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soma-campus/soma-backend/internal/db/dbtest"
	"github.com/soma-campus/soma-backend/internal/parties"
)

const sample = `
parties:
  - name: Unity Alliance
    leader: Amara Okafor
    links:
      website: https://unity.example
  - name: unity alliance
candidates:
  - name: Grace Njeri
    department: Computer Science
  - name: Grace Njeri
    department: Law
  - name: Broken Link
    links:
      facebook: not-a-url
`

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestSeedAllSkipsRejectedEntries(t *testing.T) {
	d := dbtest.Open(t)
	require.NoError(t, parties.Init(d))
	svc := parties.NewService(d, zap.NewNop())
	ctx := context.Background()

	f, err := Load(writeSeed(t, sample))
	require.NoError(t, err)
	require.Len(t, f.Parties, 2)
	assert.Equal(t, "https://unity.example", f.Parties[0].Links.Website)

	res, err := SeedAll(ctx, svc, f, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 3, Skipped: 2}, res)

	ps, err := svc.ListParties(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "Amara Okafor", ps[0].PartyLeader)

	// a second run changes nothing
	res, err = SeedAll(ctx, svc, f, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 0, Skipped: 5}, res)
}

func TestLoadShippedSeedFile(t *testing.T) {
	f, err := Load(filepath.Join("..", "..", "seeds", "soma.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, f.Parties)
	assert.NotEmpty(t, f.Candidates)
	for _, p := range f.Parties {
		assert.NotEmpty(t, p.Name)
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeSeed(t, "parties: [unclosed"))
	assert.Error(t, err)
}
