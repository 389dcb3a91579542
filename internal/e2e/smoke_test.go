package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const billsFixture = `{"data":{"billingAccountByAuthContext":{"bills":[
	{"timeInterval":"2025-06-15T00:00:00-04:00/2025-07-14T00:00:00-04:00","segments":[
		{"serviceQuantities":[{"unit":"THERM","serviceQuantity":{"value":50}}],"usageCharges":{"value":45}}]}
]}}}`

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)
	require.NoError(t, writeTokenCacheFixture(home))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/cws/graphql"), r.URL.Path)
		_, _ = fmt.Fprint(w, billsFixture)
	}))
	defer server.Close()

	stdout, stderr, err := runNGM(t, binaryPath, home, server.URL, "cache", "show")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "status: hit")

	stdout, stderr, err = runNGM(t, binaryPath, home, server.URL, "usage", "--json")
	require.NoError(t, err, "stderr: %s", stderr)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, true, result["success"])
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "ngm-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/ngm")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build ngm binary: %s", string(output))
	return binaryPath
}

func runNGM(t *testing.T, binaryPath, home, opowerURL string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(filteredEnv(), "HOME="+home, "NGM_OPOWER_BASE_URL="+opowerURL)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// filteredEnv drops credentials and ngm settings inherited from the caller.
func filteredEnv() []string {
	env := make([]string, 0, len(os.Environ()))
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if key == "HOME" || key == "USERNAME" || key == "PASSWORD" || strings.HasPrefix(key, "NGM_") {
			continue
		}
		env = append(env, kv)
	}
	return env
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

func writeTokenCacheFixture(home string) error {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("e2e"))
	if err != nil {
		return err
	}

	data, err := json.Marshal(map[string]any{
		"tokens":       map[string]string{"access_token": token},
		"saved_at":     time.Now().UTC().Format(time.RFC3339Nano),
		"customer_urn": "urn:opower:customer:uuid:e2e",
	})
	if err != nil {
		return err
	}

	cacheDir := filepath.Join(home, ".ngnycmetro")
	if err := os.MkdirAll(cacheDir, 0o700); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(cacheDir, "tokens.json"), data, 0o600)
}
