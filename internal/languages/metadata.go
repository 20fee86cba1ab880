package languages

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Entry holds the names of one locale.
type Entry struct {
	// NativeName is empty when the platform reports the code itself.
	NativeName  string `json:"native_name"`
	EnglishName string `json:"english_name"`
}

// Metadata maps locale codes to their names.
type Metadata map[string]Entry

// LocaleStat is one record of the platform language statistics export.
type LocaleStat struct {
	ID                  int    `json:"id"`
	Name                string `json:"name"`
	TargetSentenceCount int    `json:"target_sentence_count"`
	NativeName          string `json:"native_name"`
	IsContributable     int    `json:"is_contributable"`
	IsTranslated        int    `json:"is_translated"`
	TextDirection       string `json:"text_direction"`
}

const (
	translationsStart = "# [Languages]"
	translationsEnd   = "# [/]"
)

// ParseTranslations reads `code = English name` lines from the
// `# [Languages]` ... `# [/]` block of a localization file.
func ParseTranslations(r io.Reader) (map[string]string, error) {
	names := map[string]string{}
	inBlock := false
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, translationsStart) {
			inBlock = true
		}
		if strings.Contains(line, translationsEnd) {
			inBlock = false
		}
		if !inBlock || strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		names[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// MergeMetadata combines the platform statistics with English translations,
// keeping contributable locales only.
func MergeMetadata(stats []LocaleStat, translations map[string]string) Metadata {
	meta := Metadata{}
	for _, stat := range stats {
		if stat.IsContributable != 1 {
			continue
		}
		entry := Entry{EnglishName: translations[stat.Name]}
		if stat.NativeName != stat.Name {
			entry.NativeName = stat.NativeName
		}
		meta[stat.Name] = entry
	}
	return meta
}

// ReadLocaleStats decodes the platform statistics export.
func ReadLocaleStats(path string) ([]LocaleStat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var stats []LocaleStat
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return stats, nil
}

// ReadMetadata loads a metadata.json file.
func ReadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	meta := Metadata{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return meta, nil
}

// WriteMetadata writes meta as JSON, replacing path atomically.
func WriteMetadata(path string, meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metadata dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "metadata-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp metadata: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close metadata: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}
