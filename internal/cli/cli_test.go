package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareit/internal/config"
	"shareit/internal/database"
)

const testFixture = `
users:
  - name: Alice
    email: alice@example.com
  - name: Carol
    email: carol@example.com
requests:
  - key: ladder
    requester: carol@example.com
    description: Need a ladder
items:
  - owner: alice@example.com
    name: Ladder
    description: Extension ladder
    available: true
    request: ladder
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`
database:
  path: %s
logging:
  level: error
  output: stderr
backup:
  storage_path: %s
exports:
  path: %s
`, filepath.Join(dir, "shareit.db"), filepath.Join(dir, "backups"), filepath.Join(dir, "exports"))
	return writeFile(t, dir, "config.yaml", cfg), dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeed(t *testing.T) {
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fixture, err := loadFixture(writeFile(t, t.TempDir(), "seed.yaml", testFixture))
	require.NoError(t, err)

	ctx := context.Background()
	services := newServices(db, nil, &config.Config{}, &logger)

	res, err := seed(ctx, services, fixture)
	require.NoError(t, err)
	assert.Equal(t, seedResult{Users: 2, Requests: 1, Items: 1}, res)

	reqs, err := services.Requests.ListOwn(ctx, 2)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0].Items, 1)
	assert.Equal(t, "Ladder", reqs[0].Items[0].Name)

	// users are matched by email on reseed
	res, err = seed(ctx, services, fixture)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Users)

	users, err := services.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestSeed_UnknownReferences(t *testing.T) {
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	services := newServices(db, nil, &config.Config{}, &logger)

	_, err = seed(context.Background(), services, &seedFixture{
		Items: []seedItem{{Owner: "nobody@example.com", Name: "Drill", Description: "d", Available: true}},
	})
	assert.ErrorContains(t, err, `unknown user "nobody@example.com"`)

	_, err = seed(context.Background(), services, &seedFixture{
		Users: []seedUser{{Name: "Alice", Email: "alice@example.com"}},
		Items: []seedItem{{Owner: "alice@example.com", Name: "Drill", Description: "d", Request: "missing"}},
	})
	assert.ErrorContains(t, err, `unknown request "missing"`)
}

func TestLoadFixture_RejectsUnknownFields(t *testing.T) {
	path := writeFile(t, t.TempDir(), "seed.yaml", "users:\n  - name: A\n    mail: a@example.com\n")
	_, err := loadFixture(path)
	assert.Error(t, err)
}

func TestConfigPath(t *testing.T) {
	flagConfig = ""
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, defaultConfigPath, configPath())

	t.Setenv("CONFIG_PATH", "/etc/shareit.yaml")
	assert.Equal(t, "/etc/shareit.yaml", configPath())

	flagConfig = "custom.yaml"
	t.Cleanup(func() { flagConfig = "" })
	assert.Equal(t, "custom.yaml", configPath())
}

func TestCommands(t *testing.T) {
	cfgPath, dir := writeConfig(t)

	out, err := execute(t, "--config", cfgPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version")
	assert.Contains(t, out, "(sqlite)")

	seedPath := writeFile(t, dir, "seed.yaml", testFixture)
	out, err = execute(t, "--config", cfgPath, "seed", "--file", seedPath)
	require.NoError(t, err)
	assert.Equal(t, "seeded 2 users, 1 requests, 1 items\n", out)

	out, err = execute(t, "--config", cfgPath, "export", "--owner", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "exported 0 bookings")
	exports, err := os.ReadDir(filepath.Join(dir, "exports"))
	require.NoError(t, err)
	require.Len(t, exports, 1)
	assert.True(t, strings.HasPrefix(exports[0].Name(), "bookings_owner_1_"))

	_, err = execute(t, "--config", cfgPath, "export", "--owner", "1", "--state", "SOMETIMES")
	assert.Error(t, err)

	out, err = execute(t, "--config", cfgPath, "backup")
	require.NoError(t, err)
	assert.Contains(t, out, "backup written to")
	backups, err := os.ReadDir(filepath.Join(dir, "backups"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestCommands_MissingConfig(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "migrate")
	assert.ErrorContains(t, err, "load config")
}
