package engine

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Loader reads uploaded spreadsheets into raw datasets.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a Loader. A nil logger disables logging.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// Load opens path and reads it by extension.
func (l *Loader) Load(path, sheet string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return l.Read(f, filepath.Base(path), sheet)
}

// Read parses r as .xlsx or .csv/.tsv based on name. For workbooks, sheet
// selects the worksheet; empty means the first one.
func (l *Loader) Read(r io.Reader, name, sheet string) (*Dataset, error) {
	start := time.Now()

	var (
		header []string
		rows   [][]string
		err    error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		header, rows, err = readWorkbook(r, sheet)
	case ".csv", ".tsv", ".txt":
		header, rows, err = readDelimited(r)
	default:
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	ds := NewDataset(name, header, rows)
	l.logger.Info("dataset loaded",
		zap.String("name", name),
		zap.Int("rows", ds.Len()),
		zap.Int("columns", len(ds.Columns)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return ds, nil
}

func readWorkbook(r io.Reader, sheet string) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}
	if sheet == "" {
		sheet = sheets[0]
	} else {
		found := false
		for _, s := range sheets {
			if strings.EqualFold(s, sheet) {
				sheet, found = s, true
				break
			}
		}
		if !found {
			return nil, nil, fmt.Errorf("sheet %q not found (available: %s)", sheet, strings.Join(sheets, ", "))
		}
	}
	// Raw values keep date cells as serial numbers instead of locale-formatted text.
	all, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return splitHeader(all)
}

func readDelimited(r io.Reader) ([]string, [][]string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = sniffDelimiter(content)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return splitHeader(all)
}

// sniffDelimiter picks the most frequent of ',', ';' and tab on the header line.
func sniffDelimiter(content []byte) rune {
	line := content
	if i := bytes.IndexByte(content, '\n'); i != -1 {
		line = content[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// splitHeader separates the header row, names blank headers and drops blank rows.
func splitHeader(all [][]string) ([]string, [][]string, error) {
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("no header row")
	}
	header := make([]string, len(all[0]))
	for i, h := range all[0] {
		if strings.TrimSpace(h) == "" {
			h = fmt.Sprintf("unnamed_%d", i)
		}
		header[i] = h
	}
	rows := make([][]string, 0, len(all)-1)
	for _, row := range all[1:] {
		if blank(row) {
			continue
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
