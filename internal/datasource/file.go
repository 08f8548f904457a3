package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/wonny/stocksignal/internal/contracts"
	"github.com/wonny/stocksignal/pkg/logger"
)

// corpusFile is the on-disk JSON layout: {"data": [...]}
type corpusFile struct {
	Code string               `json:"code,omitempty"`
	Data []contracts.PriceRow `json:"data"`
}

// FileSource reads a pre-fetched corpus: <dir>/kr|us/<code>.json or .parquet
// ⭐ SSOT: 파일 기반 시세 수집
type FileSource struct {
	dir    string
	logger *logger.Logger
}

var _ contracts.DataSource = (*FileSource)(nil)

// NewFileSource creates a file corpus source rooted at dir
func NewFileSource(dir string, log *logger.Logger) *FileSource {
	return &FileSource{dir: dir, logger: log.WithField("module", "datasource.file")}
}

func (s *FileSource) Name() string { return "file" }

// Collect returns rows within [start, end], newest-first. A missing file is no data.
func (s *FileSource) Collect(ctx context.Context, code, market string, start, end time.Time) ([]contracts.PriceRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, path, err := s.load(code, market)
	if err != nil {
		return nil, err
	}
	if path == "" {
		s.logger.WithField("code", code).Warn("no corpus file")
		return nil, nil
	}

	from := contracts.CalendarDay(start)
	to := contracts.CalendarDay(end)
	out := make([]contracts.PriceRow, 0, len(rows))
	for _, r := range rows {
		d, err := contracts.ParseDay(r.Date)
		if err == nil && (d.Before(from) || d.After(to)) {
			continue
		}
		// unparseable dates are passed through for the store to reject
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })

	s.logger.WithFields(map[string]interface{}{
		"code":  code,
		"file":  filepath.Base(path),
		"count": len(out),
	}).Debug("Loaded corpus rows")
	return out, nil
}

func (s *FileSource) load(code, market string) ([]contracts.PriceRow, string, error) {
	base := CorpusPath(s.dir, code, market, "")

	jsonPath := base + ".json"
	data, err := os.ReadFile(jsonPath)
	switch {
	case err == nil:
		var f corpusFile
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, "", fmt.Errorf("decode %s: %w", jsonPath, err)
		}
		return f.Data, jsonPath, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, "", fmt.Errorf("read %s: %w", jsonPath, err)
	}

	parquetPath := base + ".parquet"
	if _, err := os.Stat(parquetPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("stat %s: %w", parquetPath, err)
	}
	rows, err := parquet.ReadFile[contracts.PriceRow](parquetPath)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", parquetPath, err)
	}
	return rows, parquetPath, nil
}

// CorpusPath returns <dir>/<group>/<code><ext>
func CorpusPath(dir, code, market, ext string) string {
	group := contracts.GroupUS
	if market == contracts.MarketKRX {
		group = contracts.GroupKR
	}
	return filepath.Join(dir, group, code+ext)
}

// WriteCorpus writes rows for one instrument in "json" or "parquet" format
// and returns the file path.
func WriteCorpus(dir string, inst contracts.Instrument, rows []contracts.PriceRow, format string) (string, error) {
	var ext string
	switch format {
	case "json":
		ext = ".json"
	case "parquet":
		ext = ".parquet"
	default:
		return "", fmt.Errorf("unsupported corpus format %q (json, parquet)", format)
	}

	path := CorpusPath(dir, inst.Code, inst.Market, ext)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create corpus dir: %w", err)
	}

	if format == "parquet" {
		if err := parquet.WriteFile(path, rows); err != nil {
			return "", fmt.Errorf("write %s: %w", path, err)
		}
		return path, nil
	}

	data, err := json.MarshalIndent(corpusFile{Code: inst.Code, Data: rows}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode corpus: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
