package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marquee/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	outputDir  string
	configPath string
	workbook   string
}

func readTestdata(t *testing.T, pkg, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "internal", pkg, "testdata", name))
	require.NoError(t, err)
	return string(data)
}

// newSiteServer serves canned search, title, and review pages.
func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()
	findInception := readTestdata(t, "identification", "find_inception.html")
	titlePage := readTestdata(t, "attributes", "title_inception.html")
	reviewsPage := readTestdata(t, "attributes", "reviews_inception.html")
	emptySearch := `<html><body><section data-testid="find-results-section-title"><ul></ul></section></body></html>`

	mux := http.NewServeMux()
	mux.HandleFunc("/find/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("q") {
		case "Inception":
			fmt.Fprint(w, findInception)
		case "NoSuchMovie123":
			fmt.Fprint(w, emptySearch)
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/title/tt1375666/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, titlePage)
	})
	mux.HandleFunc("/title/tt1375666/reviews/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, reviewsPage)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func setupCLITestEnv(t *testing.T, baseURL string, titles ...string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	for _, key := range []string{"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD", "EMAIL_TO", "EMAIL_FROM"} {
		t.Setenv(key, "")
	}

	env := &cliTestEnv{
		baseDir:    base,
		outputDir:  filepath.Join(base, "output"),
		configPath: filepath.Join(base, "marquee.toml"),
		workbook:   filepath.Join(base, "movies.xlsx"),
	}
	testsupport.WriteWorkbook(t, env.workbook, "Movies", titles...)

	content := fmt.Sprintf(`[paths]
output_dir = %q
log_dir = %q

[source]
workbook = %q

[site]
base_url = %q
wait_timeout_seconds = 1
request_timeout_seconds = 5

[export]
email = false

[logging]
level = "warn"
`, env.outputDir, filepath.Join(base, "logs"), env.workbook, baseURL)
	require.NoError(t, os.WriteFile(env.configPath, []byte(content), 0o644))
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunScrapesStoresAndExports(t *testing.T) {
	server := newSiteServer(t)
	env := setupCLITestEnv(t, server.URL, "Inception", "NoSuchMovie123", "Unlisted Film")

	out, _, err := runCLI(t, []string{"run", "--parquet"}, env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Processed 3 of 3 titles: 1 matched, 1 without match, 1 failed")
	assert.Contains(t, out, "Exported 3 rows to "+filepath.Join(env.outputDir, "movies.csv"))

	data, err := os.ReadFile(filepath.Join(env.outputDir, "movies.csv"))
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "Inception", records[1][1])
	assert.Equal(t, "8.8", records[1][2])
	assert.Equal(t, "Action, Adventure, Sci-Fi", records[1][5])
	assert.Equal(t, "success", records[1][8])
	assert.Equal(t, "No exact match found", records[2][8])
	assert.True(t, strings.HasPrefix(records[3][8], "error: "))

	_, err = os.Stat(filepath.Join(env.outputDir, "movies.parquet"))
	assert.NoError(t, err)

	out, _, err = runCLI(t, []string{"rows", "--limit", "0"}, env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Inception")
	assert.Contains(t, out, "No exact match found")
	assert.Contains(t, out, "Showing 3 of 3 stored rows: 1 matched, 1 without match, 1 failed")

	out, _, err = runCLI(t, []string{"rows", "--limit", "1"}, env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Showing 1 of 3 stored rows: 0 matched, 0 without match, 1 failed")
}

func TestRunMissingColumnFailsBeforeProcessing(t *testing.T) {
	server := newSiteServer(t)
	env := setupCLITestEnv(t, server.URL)
	testsupport.WriteWorkbook(t, env.workbook, "Films", "Inception")

	_, _, err := runCLI(t, []string{"run"}, env.configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Movies" column`)

	_, statErr := os.Stat(filepath.Join(env.outputDir, "movies.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestResolvePrintsAttributes(t *testing.T) {
	server := newSiteServer(t)
	env := setupCLITestEnv(t, server.URL)

	out, _, err := runCLI(t, []string{"resolve", "Inception"}, env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "success")
	assert.Contains(t, out, "8.8")
	assert.Contains(t, out, "Review 1")

	_, statErr := os.Stat(filepath.Join(env.outputDir, "movies.sqlite3"))
	assert.True(t, os.IsNotExist(statErr), "resolve does not create the store")
}

func TestExportWithoutSMTPReportsNotice(t *testing.T) {
	env := setupCLITestEnv(t, "https://www.imdb.com")

	out, _, err := runCLI(t, []string{"export", "--email"}, env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 0 rows")
	assert.Contains(t, out, "Email not sent: SMTP settings are incomplete")
}

func TestRowsEmptyStore(t *testing.T) {
	env := setupCLITestEnv(t, "https://www.imdb.com")

	out, _, err := runCLI(t, []string{"rows"}, env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No stored results")
}

func TestConfigInitValidateAndShow(t *testing.T) {
	env := setupCLITestEnv(t, "https://www.imdb.com")

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")
	assert.Contains(t, out, "Email delivery configured: no")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote sample configuration")
	_, err = os.Stat(target)
	require.NoError(t, err)

	_, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, env.configPath)
	assert.Contains(t, out, "https://www.imdb.com")
}
