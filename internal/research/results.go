package research

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/avinier/multibagger/config"
	"github.com/avinier/multibagger/internal/dataflows"
	"github.com/avinier/multibagger/internal/models"
)

// ResultsWriter persists analysis reports as timestamped JSON files.
type ResultsWriter struct {
	dir string
}

func NewResultsWriter(cfg *config.Config) *ResultsWriter {
	return &ResultsWriter{dir: cfg.ResultsDir}
}

// SaveReport writes the report and returns the file path.
func (rw *ResultsWriter) SaveReport(report *models.Report) (string, error) {
	name := fmt.Sprintf("report_%s.json", time.Now().Format("20060102_150405"))
	path := filepath.Join(rw.dir, name)
	if err := dataflows.SaveDataToFile(report, path); err != nil {
		return "", err
	}
	return path, nil
}

// SaveResult writes one subject's result, used by single-symbol runs.
func (rw *ResultsWriter) SaveResult(result *models.CompositeResult) (string, error) {
	name := fmt.Sprintf("%s_%s.json", sanitizeSymbol(result.Symbol), time.Now().Format("20060102_150405"))
	path := filepath.Join(rw.dir, name)
	if err := dataflows.SaveDataToFile(result, path); err != nil {
		return "", err
	}
	return path, nil
}

func sanitizeSymbol(symbol string) string {
	out := make([]rune, 0, len(symbol))
	for _, r := range symbol {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
