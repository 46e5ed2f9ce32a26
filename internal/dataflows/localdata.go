package dataflows

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avinier/multibagger/config"
	"github.com/avinier/multibagger/internal/models"
)

// CompanyRecord is the locally curated data for one subject: statement
// history, shareholding, and institutional activity exported from
// filings. Yahoo does not carry these for NSE/BSE names.
type CompanyRecord struct {
	Symbol       string                     `json:"symbol"`
	CompanyName  string                     `json:"company_name"`
	Sector       string                     `json:"sector"`
	Industry     string                     `json:"industry"`
	Financials   []models.YearFinancials    `json:"financials"`
	Shareholding models.ShareholdingPattern `json:"shareholding"`
	Holdings     []models.HoldingRecord     `json:"holdings"`
}

// LocalStore reads curated company records from a JSON directory.
type LocalStore struct {
	dir string
}

func NewLocalStore(cfg *config.Config) *LocalStore {
	return &LocalStore{dir: filepath.Join(cfg.DataCacheDir, "company_data")}
}

// Load returns the curated record for a symbol, or nil when none
// exists. A missing record is not an error; the bundle is just thinner.
func (ls *LocalStore) Load(symbol string) (*CompanyRecord, error) {
	symbol = NormalizeSymbol(symbol)
	path := filepath.Join(ls.dir, fileNameFor(symbol))

	var record CompanyRecord
	if err := LoadDataFromFile(path, &record); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("company record for %s: %w", symbol, err)
	}
	return &record, nil
}

// Save writes a curated record, used by import tooling and tests.
func (ls *LocalStore) Save(record *CompanyRecord) error {
	symbol := NormalizeSymbol(record.Symbol)
	return SaveDataToFile(record, filepath.Join(ls.dir, fileNameFor(symbol)))
}

func fileNameFor(symbol string) string {
	return strings.ReplaceAll(symbol, ".", "_") + ".json"
}
