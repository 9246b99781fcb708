// Package report renders calculation results as PDF documents.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/phpdave11/gofpdf"

	"Helix/internal/calc/calcerr"
	"Helix/internal/calc/diag"
	"Helix/internal/calc/fatigue"
	"Helix/internal/calc/spring"
	"Helix/internal/expr"
)

// Input names the document and carries exactly one calculation to report.
type Input struct {
	Project   string                 `json:"project" yaml:"project"`
	Author    string                 `json:"author" yaml:"author"`
	Title     string                 `json:"title" yaml:"title"`
	Notes     string                 `json:"notes" yaml:"notes"`
	Push      *spring.PushInput      `json:"push,omitempty" yaml:"push"`
	Extension *spring.ExtensionInput `json:"extension,omitempty" yaml:"extension"`
	Shaft     *fatigue.Input         `json:"shaft,omitempty" yaml:"shaft"`
	Miner     *fatigue.MinerInput    `json:"miner,omitempty" yaml:"miner"`
}

type Row struct {
	Label string
	Value string
}

type Section struct {
	Title string
	Rows  []Row
}

// Num formats a value for print. Infinite values read "infinite" and
// deferred ones print their expression.
func Num(v expr.Value) string {
	f, ok := v.Float()
	if !ok {
		return v.String()
	}
	return Float(f)
}

func Float(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "infinite"
	case math.IsNaN(f):
		return "undefined"
	case f != 0 && math.Abs(f) < 1e-3:
		return fmt.Sprintf("%.4g", f)
	}
	return humanize.FormatFloat("#,###.###", f)
}

// Sections runs the calculation in the input and lays its results out.
func Sections(in Input) ([]Section, error) {
	n := 0
	for _, set := range []bool{in.Push != nil, in.Extension != nil, in.Shaft != nil, in.Miner != nil} {
		if set {
			n++
		}
	}
	if n != 1 {
		return nil, calcerr.Invalid("a report covers exactly one calculation, got %d", n)
	}

	switch {
	case in.Push != nil:
		res, err := spring.CalculatePush(*in.Push)
		if err != nil {
			return nil, err
		}
		return pushSections(res), nil
	case in.Extension != nil:
		res, err := spring.CalculateExtension(*in.Extension)
		if err != nil {
			return nil, err
		}
		return extensionSections(res), nil
	case in.Shaft != nil:
		res, err := fatigue.Calculate(*in.Shaft)
		if err != nil {
			return nil, err
		}
		return shaftSections(res), nil
	}
	res, err := fatigue.Miner(*in.Miner)
	if err != nil {
		return nil, err
	}
	return []Section{minerSection(res)}, nil
}

func safetySection(title string, s fatigue.SafetyFactors) Section {
	return Section{Title: title, Rows: []Row{
		{"Criterion", s.Criterion.String()},
		{"Alternating stress, MPa", Num(s.Alternating)},
		{"Mean stress, MPa", Num(s.Mean)},
		{"Endurance limit, MPa", Num(s.Endurance)},
		{"Fatigue safety factor", Num(s.Fatigue)},
		{"Static safety factor", Num(s.Static)},
	}}
}

func noticeSection(l diag.List) Section {
	sec := Section{Title: "Design notices"}
	for _, n := range l {
		sec.Rows = append(sec.Rows, Row{string(n.Kind), n.Message})
	}
	if len(sec.Rows) == 0 {
		sec.Rows = []Row{{"-", "none"}}
	}
	return sec
}

func pushSections(r spring.PushResult) []Section {
	geom := Section{Title: "Push spring geometry", Rows: []Row{
		{"Ground truth", r.Role},
		{"Wire diameter, mm", Num(r.WireDiameter)},
		{"Coil diameter, mm", Num(r.CoilDiameter)},
		{"Spring index", Num(r.SpringIndex)},
		{"Active coils", Num(r.ActiveCoils)},
		{"Total coils", Num(r.TotalCoils)},
		{"Rate, N/mm", Num(r.Rate)},
		{"Free length, mm", Num(r.FreeLength)},
		{"Solid length, mm", Num(r.SolidLength)},
		{"Solid force, N", Num(r.SolidForce)},
	}}
	st := Section{Title: "Static check", Rows: []Row{
		{"Sut, MPa", Num(r.Strengths.Ultimate)},
		{"Ssy, MPa", Num(r.Strengths.ShearYield)},
		{"KB", Num(r.KB)},
		{"Shear stress at max force, MPa", Num(r.ShearStress)},
		{"Safety factor at max force", Num(r.StaticSafety)},
		{"Safety factor at solid", Num(r.SolidSafety)},
	}}
	if r.MinWireDiameter != nil {
		st.Rows = append(st.Rows,
			Row{"Minimum wire diameter, mm", Float(*r.MinWireDiameter)},
			Row{"Minimum wire diameter at solid, mm", Float(*r.MinWireDiameterSolid)},
		)
	}
	if r.AllowedForce != nil {
		st.Rows = append(st.Rows, Row{"Allowed force, N", Num(*r.AllowedForce)})
	}
	if r.Buckling != nil {
		st.Rows = append(st.Rows, Row{"Critical free length, mm", Num(r.Buckling.CriticalLength)})
	}
	if r.NaturalFrequency != nil {
		st.Rows = append(st.Rows, Row{"Natural frequency, Hz", Num(*r.NaturalFrequency)})
	}
	return []Section{geom, st, safetySection("Fatigue", r.Fatigue), noticeSection(r.Notices)}
}

func extensionSections(r spring.ExtensionResult) []Section {
	geom := Section{Title: "Extension spring geometry", Rows: []Row{
		{"Ground truth", r.Role},
		{"Wire diameter, mm", Num(r.WireDiameter)},
		{"Coil diameter, mm", Num(r.CoilDiameter)},
		{"Spring index", Num(r.SpringIndex)},
		{"Active coils", Num(r.ActiveCoils)},
		{"Body coils", Num(r.BodyCoils)},
		{"Rate, N/mm", Num(r.Rate)},
		{"Free length, mm", Num(r.FreeLength)},
	}}
	st := Section{Title: "Static check", Rows: []Row{
		{"Hook normal stress, MPa", Num(r.NormalStress)},
		{"Hook shear stress, MPa", Num(r.HookShearStress)},
		{"Body shear stress, MPa", Num(r.BodyShearStress)},
		{"Hook bending safety factor", Num(r.Static.HookNormal)},
		{"Hook torsion safety factor", Num(r.Static.HookShear)},
		{"Body safety factor", Num(r.Static.Body)},
	}}
	if r.MinWireDiameter != nil {
		st.Rows = append(st.Rows, Row{"Minimum wire diameter, mm", Float(r.MinWireDiameter.Governing)})
	}
	return []Section{
		geom,
		st,
		safetySection("Hook fatigue, bending", r.Fatigue.HookNormal),
		safetySection("Hook fatigue, torsion", r.Fatigue.HookShear),
		safetySection("Body fatigue", r.Fatigue.Body),
		noticeSection(r.Notices),
	}
}

func shaftSections(r fatigue.Result) []Section {
	end := Section{Title: "Endurance limit"}
	for _, f := range r.Endurance.Factors() {
		end.Rows = append(end.Rows, Row{f.Name, Num(f.Value)})
	}
	end.Rows = append(end.Rows, Row{"Kf", Num(r.Kf)}, Row{"Kfs", Num(r.Kfs)})
	out := []Section{end, safetySection("Shaft safety", r.Safety)}
	if r.Miner != nil {
		out = append(out, minerSection(*r.Miner))
	}
	return out
}

func minerSection(r fatigue.MinerResult) Section {
	sec := Section{Title: "Cumulative damage"}
	for i, g := range r.Groups {
		sec.Rows = append(sec.Rows, Row{
			fmt.Sprintf("Group %d: %s x %s/%s MPa", i+1, Float(g.Repetition), Float(g.Alternating), Float(g.Mean)),
			fmt.Sprintf("N = %s, D = %s", cycles(g.Cycles), Num(g.Damage)),
		})
	}
	sec.Rows = append(sec.Rows,
		Row{"Damage per " + strings.TrimSuffix(r.LifeUnit, "s"), Num(r.Damage)},
		Row{"Life, " + r.LifeUnit, cycles(r.Life)},
	)
	return sec
}

// cycles prints large counts in words.
func cycles(v expr.Value) string {
	f, ok := v.Float()
	if !ok || math.IsInf(f, 0) || f < 1e6 {
		return Num(v)
	}
	return humanize.CommafWithDigits(f, 0) + " (" + strings.TrimSpace(humanize.SIWithDigits(f, 2, "")) + ")"
}

// Render writes the PDF for in to w.
func Render(w io.Writer, in Input, now time.Time) error {
	sections, err := Sections(in)
	if err != nil {
		return err
	}
	if in.Title == "" {
		in.Title = "Fatigue Report"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(in.Title, false)
	pdf.SetAuthor(in.Author, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, in.Title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Project: %s", in.Project))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Author: %s", in.Author))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", now.Format("2006-01-02")))
	pdf.Ln(10)

	for _, s := range sections {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, s.Title)
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
		for _, r := range s.Rows {
			pdf.CellFormat(95, 6, r.Label, "B", 0, "L", false, 0, "")
			pdf.MultiCell(0, 6, r.Value, "B", "L", false)
		}
		pdf.Ln(4)
	}
	if in.Notes != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, in.Notes, "", "L", false)
	}
	return pdf.Output(w)
}
