package commands_test

import (
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "ledgerlens-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "ledgerlens")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/ledgerlens")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runLedgerlens(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runLedgerlensEnv(t, nil, args...)
}

// runLedgerlensEnv runs the binary with extra environment entries, which
// override the defaults.
func runLedgerlensEnv(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(append(os.Environ(), "LEDGERLENS_LOG_LEVEL=warn"), env...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// editConfig applies string replacements to the project's ledgerlens.yaml.
func editConfig(t *testing.T, dir string, oldnew ...string) {
	t.Helper()
	path := filepath.Join(dir, "ledgerlens.yaml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)
	for i := 0; i+1 < len(oldnew); i += 2 {
		require.Contains(t, contents, oldnew[i])
		contents = strings.ReplaceAll(contents, oldnew[i], oldnew[i+1])
	}
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

// newProject runs init in a temp dir and returns its path.
func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	out, err := runLedgerlens(t, "init", dir, "--name", "Test Household")
	require.NoError(t, err, out)
	return dir
}

// stage copies a testdata file into the project's import/ folder.
func stage(t *testing.T, dir, fixture, name string) {
	t.Helper()
	src, err := os.Open(filepath.Join("..", "..", "testdata", fixture))
	require.NoError(t, err)
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, "import", name))
	require.NoError(t, err)
	defer dst.Close()

	_, err = io.Copy(dst, src)
	require.NoError(t, err)
}

// importBankExports stages both Chase fixtures and imports them.
func importBankExports(t *testing.T, dir string) {
	t.Helper()
	stage(t, dir, "chase_checking.csv", "checking-2025q1.csv")
	stage(t, dir, "chase_credit.csv", "credit-2025q1.csv")
	out, err := runLedgerlens(t, "import", "--repo", dir)
	require.NoError(t, err, out)
}
