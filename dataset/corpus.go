package dataset

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ReadCorpus loads one sentence per line (txt), per first column (csv) or per
// array element (json) from the given file. Blank sentences are dropped. The
// extension is checked before the file is opened so misconfiguration fails
// fast.
func ReadCorpus(path string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".csv", ".json":
	default:
		return nil, ErrUnsupportedExtension
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: cannot open corpus file: %w", err)
	}
	defer file.Close()

	var sentences []string
	switch ext {
	case ".txt":
		sentences, err = readTextCorpus(file)
	case ".csv":
		sentences, err = readCSVCorpus(file)
	case ".json":
		sentences, err = readJSONCorpus(file)
	}
	if err != nil {
		return nil, err
	}

	if len(sentences) == 0 {
		return nil, ErrEmptyCorpus
	}

	return sentences, nil
}

func readTextCorpus(r io.Reader) ([]string, error) {
	var sentences []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		sentences = append(sentences, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dataset: cannot read corpus file: %w", err)
	}
	return sentences, nil
}

func readCSVCorpus(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var sentences []string
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: cannot parse csv corpus: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		text := strings.TrimSpace(record[0])
		// A leading header row naming the column is skipped.
		if first {
			first = false
			lower := strings.ToLower(text)
			if lower == "text" || lower == "sentence" {
				continue
			}
		}
		if text == "" {
			continue
		}
		sentences = append(sentences, text)
	}
	return sentences, nil
}

func readJSONCorpus(r io.Reader) ([]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("dataset: cannot read corpus file: %w", err)
	}

	var plain []string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return trimNonEmpty(plain), nil
	}

	var records []struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("dataset: cannot parse json corpus: %w", err)
	}

	sentences := make([]string, 0, len(records))
	for _, rec := range records {
		sentences = append(sentences, rec.Text)
	}
	return trimNonEmpty(sentences), nil
}

func trimNonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
