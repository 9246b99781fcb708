package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/xuri/excelize/v2"
)

const pushDesign = `max_force_n: 100
min_force_n: 20
wire_diameter_mm: 2
coil_diameter_mm: 16
active_coils: 10
end_type: squared and ground
material:
  ap_mpa: 2211
  m: 0.145
  shear_yield_pct: 45
  shear_modulus_mpa: 81700
criterion: gerber
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	verbose, output, dbPath = false, "table", ""
	minerXLSX, minerSut, minerSe, minerAltMean, minerFreq = "", 0, 0, false, false
	reportOut, historyLimit = "", 20

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPushJSONIsRecorded(t *testing.T) {
	design := writeFile(t, "push.yaml", pushDesign)
	db := filepath.Join(t.TempDir(), "history.db")

	out, err := run(t, "push", design, "-o", "json", "--db", db)
	if err != nil {
		t.Fatal(err)
	}
	var res map[string]any
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %s: %v", out, err)
	}
	// k = G d / (8 C^3 Na) * 2C^2 / (1 + 2C^2) with C = 8
	C := 8.0
	chk.Float64(t, "rate", 1e-9, res["rate_n_per_mm"].(float64), 81700*2/(8*C*C*C*10)*(2*C*C)/(1+2*C*C))

	out, err = run(t, "history", "--db", db)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "spring/push") {
		t.Errorf("history:\n%s", out)
	}
}

func TestPushTable(t *testing.T) {
	out, err := run(t, "push", writeFile(t, "push.yaml", pushDesign))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Push spring geometry", "Rate, N/mm", "Fatigue"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
}

func TestUnknownDesignField(t *testing.T) {
	design := writeFile(t, "push.yaml", pushDesign+"colour: red\n")
	if _, err := run(t, "push", design); err == nil {
		t.Error("expected an error for an unknown field")
	}
}

func TestMinerFromWorkbook(t *testing.T) {
	f := excelize.NewFile()
	for i, row := range [][]any{{"n", "max", "min"}, {1000, 500, -500}, {10, 100, -100}} {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "duty.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "miner", "--xlsx", path, "--sut", "1000", "--se", "400", "-o", "json")
	if err != nil {
		t.Fatal(err)
	}
	var res struct {
		Groups []json.RawMessage `json:"groups"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Groups) != 2 {
		t.Errorf("groups = %d, expected 2", len(res.Groups))
	}
}

func TestMinerNeedsOneSource(t *testing.T) {
	if _, err := run(t, "miner"); err == nil {
		t.Error("expected an error without a duty")
	}
	if _, err := run(t, "miner", "duty.yaml", "--xlsx", "duty.xlsx"); err == nil {
		t.Error("expected an error with two duties")
	}
}

func TestReportWritesPDF(t *testing.T) {
	body := "project: Valve\nauthor: QA\npush:\n" + indent(pushDesign)
	path := writeFile(t, "valve.yaml", body)

	out, err := run(t, "report", path)
	if err != nil {
		t.Fatal(err)
	}
	pdf, err := os.ReadFile(strings.TrimSuffix(path, ".yaml") + ".pdf")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-1.")) {
		t.Errorf("not a PDF: %q", pdf[:8])
	}
	if !strings.HasPrefix(out, "wrote ") {
		t.Errorf("output %q", out)
	}
}

func TestHistoryNeedsDB(t *testing.T) {
	if _, err := run(t, "history"); err == nil {
		t.Error("expected an error without --db")
	}
}

func indent(s string) string {
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n") + "\n"
}
