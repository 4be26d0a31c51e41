package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// runCLI builds and runs the CLI binary, returning stdout, stderr, and exit code.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "regscrub")
	buildCmd := exec.Command("go", "build", "-o", binaryPath, ".")
	if err := buildCmd.Run(); err != nil {
		t.Fatalf("failed to build CLI: %v", err)
	}

	cmd := exec.Command(binaryPath, args...)
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("failed to run CLI: %v", err)
		}
	}

	return stdout, stderr, exitCode
}

// writeFixture writes content to a file under dir and returns its path.
func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
	return path
}

// pipelineConfig renders a JSON pipeline config for the given paths.
func pipelineConfig(inputPath, dir string) string {
	return fmt.Sprintf(`{
  "id": "test-run",
  "name": "Test Run",
  "input": {"type": "csv", "config": {"path": %q}},
  "output": {"type": "csv", "config": {
    "acceptedPath": %q,
    "rejectedPath": %q,
    "discardsPath": %q
  }}
}`,
		inputPath,
		filepath.Join(dir, "accepted.csv"),
		filepath.Join(dir, "rejected.csv"),
		filepath.Join(dir, "discards.csv"),
	)
}

const fixtureCSV = "BrandCode,Lang,RegistrationDate,FirstName,LastName,Phone\n" +
	"BR1,en,2023-04-01 09:30:00,maria elena,cruz,5551234\n" +
	"BR1,en,2023-04-01 09:30:00,jo3,smith,5551234\n" +
	"BR1,en,2023-04-01 09:30:00,ann,lee,555-1234\n"

func TestCLIHelp(t *testing.T) {
	stdout, _, exitCode := runCLI(t, "--help")

	if exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
	for _, want := range []string{"regscrub", "validate", "run", "version"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestCLIVersion(t *testing.T) {
	stdout, _, exitCode := runCLI(t, "version")

	if exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(stdout, "Version:") {
		t.Errorf("version output missing Version line: %s", stdout)
	}
}

func TestCLIValidateValid(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFixture(t, dir, "config.json", pipelineConfig("in.csv", dir))

	stdout, stderr, exitCode := runCLI(t, "validate", configPath)
	if exitCode != ExitSuccess {
		t.Fatalf("exit code = %d, want %d\nstderr: %s", exitCode, ExitSuccess, stderr)
	}
	if !strings.Contains(stdout, "valid") {
		t.Errorf("output missing 'valid': %s", stdout)
	}
}

func TestCLIValidateSchemaViolation(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFixture(t, dir, "config.json", `{"id": "x", "name": "y"}`)

	_, stderr, exitCode := runCLI(t, "validate", configPath)
	if exitCode != ExitValidationError {
		t.Fatalf("exit code = %d, want %d", exitCode, ExitValidationError)
	}
	if !strings.Contains(stderr, "Validation errors") {
		t.Errorf("stderr missing validation errors: %s", stderr)
	}
}

func TestCLIValidateParseError(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFixture(t, dir, "config.json", `{"id": `)

	_, stderr, exitCode := runCLI(t, "validate", configPath)
	if exitCode != ExitParseError {
		t.Fatalf("exit code = %d, want %d", exitCode, ExitParseError)
	}
	if !strings.Contains(stderr, "Parse errors") {
		t.Errorf("stderr missing parse errors: %s", stderr)
	}
}

func TestCLIRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	inputPath := writeFixture(t, dir, "in.csv", fixtureCSV)
	configPath := writeFixture(t, dir, "config.json", pipelineConfig(inputPath, dir))

	stdout, stderr, exitCode := runCLI(t, "run", configPath)
	if exitCode != ExitSuccess {
		t.Fatalf("exit code = %d, want %d\nstderr: %s", exitCode, ExitSuccess, stderr)
	}
	if !strings.Contains(stdout, "Rows accepted: 1") || !strings.Contains(stdout, "Rows rejected: 2") {
		t.Errorf("summary missing expected counts:\n%s", stdout)
	}

	accepted := readCSVFile(t, filepath.Join(dir, "accepted.csv"))
	if len(accepted) != 2 {
		t.Fatalf("accepted file has %d rows, want header + 1", len(accepted))
	}
	if accepted[1][0] != "Maria" || accepted[1][1] != "Elena Cruz" {
		t.Errorf("accepted row = %v", accepted[1])
	}

	rejected := readCSVFile(t, filepath.Join(dir, "rejected.csv"))
	if len(rejected) != 3 {
		t.Fatalf("rejected file has %d rows, want header + 2", len(rejected))
	}
	reasons := map[string]bool{}
	for _, row := range rejected[1:] {
		reasons[row[0]] = true
		if row[1] != "BR1" || row[2] != "en" {
			t.Errorf("rejected row missing restored BrandCode/Lang: %v", row)
		}
	}
	if !reasons["digitName"] || !reasons["nonNumericPhone"] {
		t.Errorf("rejected reasons = %v", reasons)
	}

	discards := readCSVFile(t, filepath.Join(dir, "discards.csv"))
	if len(discards) != 4 {
		t.Errorf("discards file has %d rows, want header + 3", len(discards))
	}
}

func TestCLIRunDryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	inputPath := writeFixture(t, dir, "in.csv", fixtureCSV)
	configPath := writeFixture(t, dir, "config.json", pipelineConfig(inputPath, dir))

	_, stderr, exitCode := runCLI(t, "run", "--dry-run", configPath)
	if exitCode != ExitSuccess {
		t.Fatalf("exit code = %d, want %d\nstderr: %s", exitCode, ExitSuccess, stderr)
	}

	for _, name := range []string{"accepted.csv", "rejected.csv", "discards.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s written during dry-run", name)
		}
	}
}

func TestCLIRunMissingInputFile(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFixture(t, dir, "config.json",
		pipelineConfig(filepath.Join(dir, "absent.csv"), dir))

	_, _, exitCode := runCLI(t, "run", configPath)
	if exitCode != ExitRuntimeError {
		t.Fatalf("exit code = %d, want %d", exitCode, ExitRuntimeError)
	}
	for _, name := range []string{"accepted.csv", "rejected.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s written for a failed run", name)
		}
	}
}

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return rows
}
