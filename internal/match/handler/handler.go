package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"match-service/internal/config"
	"match-service/internal/fileio"
	"match-service/internal/match/model"
	matchSvc "match-service/internal/match/service"
	"match-service/internal/middleware"
	"match-service/internal/utils"
)

// Колонки по умолчанию — как в исходных выгрузках.
const (
	DefaultRefName   = "ITEM_NAME"
	DefaultRefCode   = "UPC"
	DefaultInputName = "Description"
)

// Match возвращает http.HandlerFunc для r.Post("/match", ...).
//
// Форма: файлы reference и input (.csv/.xlsx/.xls), колонки ref_name, ref_code,
// input_name, строки заголовков ref_header_row/input_header_row, threshold,
// scorer и format (json|csv|xlsx).
func Match(cfg config.Config, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		log := logger
		if rid := middleware.GetRequestID(r); rid != "" {
			log = logger.With().Str("req_id", rid).Logger()
		}
		defer r.Body.Close()

		if err := r.ParseMultipartForm(int64(cfg.MaxUploadMB) << 20); err != nil {
			writeError(w, http.StatusBadRequest, "bad multipart form: "+err.Error())
			return
		}

		format := strings.ToLower(orDefault(r.FormValue("format"), "json"))
		if format != "json" && format != "csv" && format != "xlsx" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", format))
			return
		}

		mapRef := model.Mapping{
			NameKey:   orDefault(r.FormValue("ref_name"), DefaultRefName),
			CodeKey:   orDefault(r.FormValue("ref_code"), DefaultRefCode),
			HeaderRow: atoi(r.FormValue("ref_header_row"), 1),
		}
		mapIn := model.Mapping{
			NameKey:   orDefault(r.FormValue("input_name"), DefaultInputName),
			HeaderRow: atoi(r.FormValue("input_header_row"), 1),
		}

		// Порог: из формы, иначе из конфига. Проверка диапазона — в сервисе.
		opts := model.Options{
			Threshold: cfg.DefaultThreshold,
			Scorer:    orDefault(r.FormValue("scorer"), cfg.Scorer),
			Workers:   cfg.Workers,
		}
		if s := r.FormValue("threshold"); strings.TrimSpace(s) != "" {
			v, ok := utils.ParseNumber(s)
			if !ok {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("threshold: not a number: %q", s))
				return
			}
			opts.Threshold = v
		}
		if opts.Workers == 0 {
			opts.Workers = runtime.GOMAXPROCS(0)
		}

		refTbl, err := readUpload(r, "reference", mapRef.HeaderRow)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		inTbl, err := readUpload(r, "input", mapIn.HeaderRow)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		refName := resolveColumn(refTbl.Header, mapRef.NameKey)
		refCode := resolveColumn(refTbl.Header, mapRef.CodeKey)
		inName := resolveColumn(inTbl.Header, mapIn.NameKey)
		switch {
		case refName < 0:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("reference: column %q not found", mapRef.NameKey))
			return
		case refCode < 0:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("reference: column %q not found", mapRef.CodeKey))
			return
		case inName < 0:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("input: column %q not found", mapIn.NameKey))
			return
		}

		log.Debug().
			Int("ref_rows", len(refTbl.Rows)).
			Int("input_rows", len(inTbl.Rows)).
			Str("ref_name_resolved", refTbl.Header[refName]).
			Str("ref_code_resolved", refTbl.Header[refCode]).
			Str("input_name_resolved", inTbl.Header[inName]).
			Msg("tables mapped")

		// Эталон собирается один раз на запрос, дальше только чтение
		ref, err := matchSvc.BuildReference(toEntries(refTbl, refName, refCode))
		if err != nil {
			writeMatchError(w, log, err)
			return
		}

		queries := toQueries(inTbl, inName)
		results, err := matchSvc.MatchBatch(r.Context(), queries, ref, opts)
		if err != nil {
			writeMatchError(w, log, err)
			return
		}

		stats := matchSvc.Tally(queries, results)
		stats.ElapsedMS = time.Since(start).Milliseconds()

		out := annotate(inTbl, results, refTbl.Header[refCode])
		switch format {
		case "csv":
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition", `attachment; filename="matched_output.csv"`)
			err = fileio.WriteCSV(w, out)
		case "xlsx":
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			w.Header().Set("Content-Disposition", `attachment; filename="matched_output.xlsx"`)
			err = fileio.WriteXLSX(w, out)
		default:
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Header().Set("Cache-Control", "no-store")
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			err = enc.Encode(model.Report{
				Header:   out.Header,
				Rows:     out.Rows,
				Results:  results,
				Stats:    stats,
				Opts:     opts,
				MapRef:   mapRef,
				MapInput: mapIn,
			})
		}
		if err != nil {
			log.Error().Err(err).Str("format", format).Msg("write response")
			return
		}

		log.Info().
			Int("reference", ref.Len()).
			Int("queries", stats.Queries).
			Int("matched", stats.Matched).
			Int("below_threshold", stats.BelowThreshold).
			Int("absent", stats.Absent).
			Float64("threshold", opts.Threshold).
			Str("scorer", opts.Scorer).
			Dur("elapsed", time.Since(start)).
			Msg("match done")
	}
}

func readUpload(r *http.Request, field string, headerRow int) (*fileio.Table, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing %s: %w", field, err)
	}
	defer func(f multipart.File) { _ = f.Close() }(f)

	t, err := fileio.ReadAny(f, hdr.Filename, headerRow)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", field, err)
	}
	if len(t.Header) == 0 {
		return nil, fmt.Errorf("%s: no header row", field)
	}
	return t, nil
}

func writeMatchError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var ce *matchSvc.ConfigError
	if errors.As(err, &ce) {
		writeError(w, http.StatusBadRequest, ce.Error())
		return
	}
	// отмена клиентом или таймаут — отвечать уже некому, просто логируем
	log.Warn().Err(err).Msg("match aborted")
	writeError(w, http.StatusServiceUnavailable, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
