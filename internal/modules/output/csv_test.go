package output

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/regscrub/runtime/internal/record"
	"github.com/regscrub/runtime/pkg/pipeline"
)

func outputConfig(dir string, withDiscards bool) *pipeline.ModuleConfig {
	cfg := map[string]interface{}{
		"acceptedPath": filepath.Join(dir, "accepted.csv"),
		"rejectedPath": filepath.Join(dir, "rejected.csv"),
	}
	if withDiscards {
		cfg["discardsPath"] = filepath.Join(dir, "discards.csv")
	}
	return &pipeline.ModuleConfig{Type: TypeCSV, Config: cfg}
}

func readCSV(t *testing.T, path string) [][]string {
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

func TestNewCSVFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *pipeline.ModuleConfig
		wantErr error
	}{
		{"nil config", nil, ErrCSVOutputNilConfig},
		{
			"missing accepted",
			&pipeline.ModuleConfig{Type: TypeCSV, Config: map[string]interface{}{"rejectedPath": "r.csv"}},
			ErrCSVOutputMissingAccepted,
		},
		{
			"missing rejected",
			&pipeline.ModuleConfig{Type: TypeCSV, Config: map[string]interface{}{"acceptedPath": "a.csv"}},
			ErrCSVOutputMissingRejected,
		},
		{"valid", outputConfig(t.TempDir(), false), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCSVFromConfig(tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewCSVFromConfig() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAcceptedHeader(t *testing.T) {
	got := AcceptedHeader([]string{"Country"})
	want := []string{"FirstName", "LastName", "Registration Date", "Registration Time", "Phone", "Country"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AcceptedHeader = %v, want %v", got, want)
	}
}

func TestRejectedHeader(t *testing.T) {
	got := RejectedHeader(nil)
	want := []string{"Reason", "BrandCode", "Lang", "FirstName", "LastName", "RegistrationDate", "Registration Date", "Registration Time", "Phone"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RejectedHeader = %v, want %v", got, want)
	}
}

func TestWriteOutputs(t *testing.T) {
	dir := t.TempDir()
	m, err := NewCSVFromConfig(outputConfig(dir, true))
	if err != nil {
		t.Fatalf("NewCSVFromConfig: %v", err)
	}

	discards := record.NewDiscardLog()
	discards.Add(record.Discard{Line: 1, BrandCode: "BR1", Lang: "en"})
	discards.Add(record.Discard{Line: 2, BrandCode: "BR2", Lang: "de"})

	outcome := &Outcome{
		ExtraHeader: []string{"Country"},
		Accepted: []record.Row{
			{
				Line: 1, FirstName: "Ann", LastName: "Lee",
				RegistrationDate: "2023-04-01 09:30:00",
				RegDate:          "2023-04-01", RegTime: "09:30:00",
				Phone: "5551234",
				Extra: map[string]string{"Country": "SE"},
			},
		},
		Rejected: []record.Rejection{
			{
				Row: record.Row{
					Line: 2, FirstName: "Jo3", LastName: "Smith",
					RegistrationDate: "2023-04-02 10:00:00",
					RegDate:          "2023-04-02", RegTime: "10:00:00",
					Phone: "5559999",
					Extra: map[string]string{"Country": "NO"},
				},
				Reason: record.ReasonDigitName,
			},
		},
		Discards: discards,
	}

	if err := m.Write(context.Background(), outcome); err != nil {
		t.Fatalf("Write: %v", err)
	}

	accepted := readCSV(t, filepath.Join(dir, "accepted.csv"))
	wantAccepted := [][]string{
		{"FirstName", "LastName", "Registration Date", "Registration Time", "Phone", "Country"},
		{"Ann", "Lee", "2023-04-01", "09:30:00", "5551234", "SE"},
	}
	if !reflect.DeepEqual(accepted, wantAccepted) {
		t.Errorf("accepted file = %v, want %v", accepted, wantAccepted)
	}

	rejected := readCSV(t, filepath.Join(dir, "rejected.csv"))
	wantRejected := [][]string{
		{"Reason", "BrandCode", "Lang", "FirstName", "LastName", "RegistrationDate", "Registration Date", "Registration Time", "Phone", "Country"},
		{"digitName", "BR2", "de", "Jo3", "Smith", "2023-04-02 10:00:00", "2023-04-02", "10:00:00", "5559999", "NO"},
	}
	if !reflect.DeepEqual(rejected, wantRejected) {
		t.Errorf("rejected file = %v, want %v", rejected, wantRejected)
	}

	discardFile := readCSV(t, filepath.Join(dir, "discards.csv"))
	wantDiscards := [][]string{
		{"Row", "BrandCode", "Lang"},
		{"1", "BR1", "en"},
		{"2", "BR2", "de"},
	}
	if !reflect.DeepEqual(discardFile, wantDiscards) {
		t.Errorf("discards file = %v, want %v", discardFile, wantDiscards)
	}
}

func TestWriteRejectedRestoresPrunedColumns(t *testing.T) {
	dir := t.TempDir()
	m, err := NewCSVFromConfig(outputConfig(dir, false))
	if err != nil {
		t.Fatalf("NewCSVFromConfig: %v", err)
	}

	discards := record.NewDiscardLog()
	discards.Add(record.Discard{Line: 7, BrandCode: "BR7", Lang: "fr"})

	outcome := &Outcome{
		Rejected: []record.Rejection{
			// pruned before rejection, so BrandCode/Lang are empty on the row
			{Row: record.Row{Line: 7, FirstName: "Jo3", LastName: "Smith"}, Reason: record.ReasonDigitName},
		},
		Discards: discards,
	}

	if err := m.Write(context.Background(), outcome); err != nil {
		t.Fatalf("Write: %v", err)
	}

	rows := readCSV(t, filepath.Join(dir, "rejected.csv"))
	if len(rows) != 2 {
		t.Fatalf("rejected file has %d rows, want 2", len(rows))
	}
	if rows[1][1] != "BR7" || rows[1][2] != "fr" {
		t.Errorf("BrandCode/Lang = (%q, %q), want restored (BR7, fr)", rows[1][1], rows[1][2])
	}
}

func TestWriteEmptyOutcome(t *testing.T) {
	dir := t.TempDir()
	m, err := NewCSVFromConfig(outputConfig(dir, false))
	if err != nil {
		t.Fatalf("NewCSVFromConfig: %v", err)
	}

	if err := m.Write(context.Background(), &Outcome{}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	// header-only files
	if rows := readCSV(t, filepath.Join(dir, "accepted.csv")); len(rows) != 1 {
		t.Errorf("accepted file has %d rows, want header only", len(rows))
	}
	if rows := readCSV(t, filepath.Join(dir, "rejected.csv")); len(rows) != 1 {
		t.Errorf("rejected file has %d rows, want header only", len(rows))
	}
}

func TestWriteFailureLeavesNoPartialFile(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "no-such-dir")
	cfg := &pipeline.ModuleConfig{Type: TypeCSV, Config: map[string]interface{}{
		"acceptedPath": filepath.Join(missing, "accepted.csv"),
		"rejectedPath": filepath.Join(missing, "rejected.csv"),
	}}
	m, err := NewCSVFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewCSVFromConfig: %v", err)
	}

	if err := m.Write(context.Background(), &Outcome{}); err == nil {
		t.Fatal("expected error writing into missing directory")
	}
	if _, err := os.Stat(filepath.Join(missing, "accepted.csv")); !os.IsNotExist(err) {
		t.Error("partial accepted file left behind")
	}
}

func TestWriteFailureRollsBackEarlierFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := &pipeline.ModuleConfig{Type: TypeCSV, Config: map[string]interface{}{
		// accepted is writable, rejected is not
		"acceptedPath": filepath.Join(dir, "accepted.csv"),
		"rejectedPath": filepath.Join(dir, "no-such-dir", "rejected.csv"),
	}}
	m, err := NewCSVFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewCSVFromConfig: %v", err)
	}

	if err := m.Write(context.Background(), &Outcome{}); err == nil {
		t.Fatal("expected error writing into missing directory")
	}

	// the failed run must not commit the accepted file, nor leave temps
	if _, err := os.Stat(filepath.Join(dir, "accepted.csv")); !os.IsNotExist(err) {
		t.Error("failed run left accepted file behind")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		t.Errorf("failed run left %s behind", e.Name())
	}
}

func TestWriteCancelledContext(t *testing.T) {
	m, err := NewCSVFromConfig(outputConfig(t.TempDir(), false))
	if err != nil {
		t.Fatalf("NewCSVFromConfig: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Write(ctx, &Outcome{}); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
