package sequencer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const snapshotLayout = "2006-01-02_15-04-05"

// SnapshotInfo describes a saved pattern file (for listing)
type SnapshotInfo struct {
	Filename  string
	Name      string // parsed from filename (empty if unnamed)
	Timestamp time.Time
}

// PatternsDir returns ~/.config/go-stepseq/patterns
func PatternsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-stepseq", "patterns"), nil
}

// ListSnapshots returns the pattern snapshots in dir, newest first
func ListSnapshots(dir string) ([]SnapshotInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var snaps []SnapshotInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		// 2024-01-15_14-30-00.json or 2024-01-15_14-30-00_name.json
		base := strings.TrimSuffix(name, ".json")
		if len(base) < len(snapshotLayout) {
			continue
		}
		ts, err := time.Parse(snapshotLayout, base[:len(snapshotLayout)])
		if err != nil {
			continue
		}

		info := SnapshotInfo{Filename: name, Timestamp: ts}
		if rest := base[len(snapshotLayout):]; len(rest) > 1 && rest[0] == '_' {
			info.Name = rest[1:]
		}
		snaps = append(snaps, info)
	}

	sort.Slice(snaps, func(i, j int) bool {
		if snaps[i].Timestamp.Equal(snaps[j].Timestamp) {
			return snaps[i].Filename > snaps[j].Filename
		}
		return snaps[i].Timestamp.After(snaps[j].Timestamp)
	})
	return snaps, nil
}

// SaveSnapshot writes seq to dir as a timestamped state message and
// returns the file name
func SaveSnapshot(dir, name string, seq Sequence, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create pattern dir: %w", err)
	}

	data, err := json.MarshalIndent(seq.Message(), "", "  ")
	if err != nil {
		return "", err
	}

	filename := now.Format(snapshotLayout)
	if name != "" {
		filename += "_" + sanitizeFilename(name)
	}
	filename += ".json"

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		return "", fmt.Errorf("write pattern: %w", err)
	}
	return filename, nil
}

// LoadSnapshot reads a snapshot (or the most recent if filename is empty)
// and normalizes it
func LoadSnapshot(dir, filename string) (Sequence, error) {
	if filename == "" {
		snaps, err := ListSnapshots(dir)
		if err != nil {
			return Sequence{}, err
		}
		if len(snaps) == 0 {
			return Sequence{}, fmt.Errorf("no patterns saved in %s", dir)
		}
		filename = snaps[0].Filename
	}

	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		return Sequence{}, err
	}

	var msg StateMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return Sequence{}, fmt.Errorf("parse pattern %s: %w", filename, err)
	}
	return msg.Normalize(), nil
}

// DeleteSnapshot deletes a snapshot file
func DeleteSnapshot(dir, filename string) error {
	return os.Remove(filepath.Join(dir, filename))
}

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	r := strings.NewReplacer(
		" ", "-", "/", "-", "\\", "-", ":", "-",
		"*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
	)
	return r.Replace(name)
}
