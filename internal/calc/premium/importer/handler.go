package importer

import (
	"encoding/json"
	"net/http"
	"strconv"

	"Helix/internal/calc/fatigue"
	"Helix/internal/repo"
)

type Handler struct {
	History *repo.Recorder
}

type MinerImportResult struct {
	Count  int                 `json:"count"`
	Groups [][3]float64        `json:"groups"`
	Miner  fatigue.MinerResult `json:"miner"`
}

// Miner takes a multipart form with the workbook in "file" and the
// sut_mpa, se_mpa, alt_mean and freq fields of the duty cycle.
func (h *Handler) Miner(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	groups, err := ReadDuty(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	input := fatigue.MinerInput{Groups: groups}
	input.SutMPa, _ = strconv.ParseFloat(r.FormValue("sut_mpa"), 64)
	input.SeMPa, _ = strconv.ParseFloat(r.FormValue("se_mpa"), 64)
	input.AltMean, _ = strconv.ParseBool(r.FormValue("alt_mean"))
	input.Freq, _ = strconv.ParseBool(r.FormValue("freq"))

	res, err := fatigue.Miner(input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	out := MinerImportResult{Count: len(groups), Groups: groups, Miner: res}
	h.History.Record(r.Context(), "miner/import", input, out)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
