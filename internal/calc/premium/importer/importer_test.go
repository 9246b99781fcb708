package importer

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"Helix/internal/calc/calcerr"
)

func workbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestReadDuty(t *testing.T) {
	data := workbook(t,
		[]any{"repetition", "max", "min"},
		[]any{1000, 500, -500},
		[]any{},
		[]any{10, 100, -100},
	)
	got, err := ReadDuty(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	want := [][3]float64{{1000, 500, -500}, {10, 100, -100}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, expected %v", got, want)
	}
}

func TestReadDutyRejects(t *testing.T) {
	cases := map[string][]byte{
		"bad cell":    workbook(t, []any{1000, 500, -500}, []any{10, "lots", -100}),
		"short row":   workbook(t, []any{1000, 500}),
		"header only": workbook(t, []any{"repetition", "max", "min"}),
	}
	for name, data := range cases {
		if _, err := ReadDuty(bytes.NewReader(data)); !errors.Is(err, calcerr.ErrInvalidArgument) {
			t.Errorf("%s: %v", name, err)
		}
	}
	if _, err := ReadDuty(strings.NewReader("not a workbook")); err == nil {
		t.Error("expected an error for a non-xlsx body")
	}
}

func TestHandler(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "duty.xlsx")
	fw.Write(workbook(t, []any{1000, 500, -500}, []any{10, 100, -100}))
	mw.WriteField("sut_mpa", "1000")
	mw.WriteField("se_mpa", "400")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	(&Handler{}).Miner(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"count":2`) {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	(&Handler{}).Miner(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("no file: status %d", rec.Code)
	}
}
