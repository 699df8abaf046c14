package ingest

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quantfeed/ohlcv-ingest/internal/logger"
	"github.com/quantfeed/ohlcv-ingest/internal/types"
	"github.com/quantfeed/ohlcv-ingest/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// FileResult is the outcome of loading a single CSV file.
type FileResult struct {
	Path    string
	Symbol  string
	Schema  Schema
	Records []types.MarketData
}

// LoadFile reads and validates a whole CSV file. Records are sorted by
// timestamp after loading, matching how export processes occasionally
// emit out-of-order tails. Loading stops at the first malformed row.
// An input with no valid rows is an error.
func LoadFile(path string, config ReaderConfig, log *logger.Logger) (*FileResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeFileOpenFailed, err, "failed to open %s", path)
	}
	defer file.Close()

	if config.Symbol == "" {
		config.Symbol = symbolFromPath(path)
	}

	reader := NewReader(file, config, log)

	var (
		records []types.MarketData
		rowErr  error
	)

	for data, err := range reader.Rows() {
		if err != nil {
			rowErr = err

			break
		}

		records = append(records, data)
	}

	if rowErr != nil {
		return nil, errors.Wrapf(errors.ErrCodeIngestFailed, rowErr, "failed to load %s", path)
	}

	if len(records) == 0 {
		return nil, errors.Newf(errors.ErrCodeEmptyFile, "%s contains no valid rows", path)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Time.Before(records[j].Time)
	})

	log.Info("loaded market data file",
		zap.String("path", path),
		zap.String("symbol", config.Symbol),
		zap.String("schema", string(reader.Schema())),
		zap.Int("records", len(records)))

	return &FileResult{
		Path:    path,
		Symbol:  config.Symbol,
		Schema:  reader.Schema(),
		Records: records,
	}, nil
}

// LoadDir loads every *.csv file in the data directory. Each file is loaded
// independently; the symbol defaults to the file stem unless the config sets
// one. A progress bar is rendered when showProgress is true.
func LoadDir(dir string, config ReaderConfig, log *logger.Logger, showProgress bool) ([]FileResult, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeFileReadFailed, err, "failed to scan %s", dir)
	}

	if len(paths) == 0 {
		return nil, errors.Newf(errors.ErrCodeNoInputFiles, "no CSV files found in %s", dir)
	}

	sort.Strings(paths)

	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.Default(int64(len(paths)), "loading")
	}

	results := make([]FileResult, 0, len(paths))

	for _, path := range paths {
		result, err := LoadFile(path, config, log)
		if err != nil {
			return nil, err
		}

		results = append(results, *result)

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	return results, nil
}

// symbolFromPath derives a symbol from the file stem, e.g. data/es_1m.csv -> ES_1M.
func symbolFromPath(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	return strings.ToUpper(stem)
}
