// Package config loads the driver-facing subset of engine configuration
// from a TOML file, the same file format raftstore binaries commonly use
// for their own node configuration. The engine itself never touches the
// filesystem -- this is ambient convenience for a standalone binary that
// embeds it.
package config

import "github.com/BurntSushi/toml"

// File is the on-disk shape of engine configuration.
type File struct {
	ID                     uint64 `toml:"id"`
	MaxPayloadEntries      uint64 `toml:"max-payload-entries"`
	MaxInSnapshotLogToKeep uint64 `toml:"max-in-snapshot-log-to-keep"`
	SnapshotLogsThreshold  uint64 `toml:"snapshot-logs-threshold"`
}

// LoadTOML parses path into a File, applying conservative defaults for
// MaxPayloadEntries, MaxInSnapshotLogToKeep and SnapshotLogsThreshold when
// left at zero. ID gets no default.
func LoadTOML(path string) (File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return File{}, err
	}
	f.setDefaults()
	return f, nil
}

func (f *File) setDefaults() {
	if f.MaxPayloadEntries == 0 {
		f.MaxPayloadEntries = 64
	}
	if f.MaxInSnapshotLogToKeep == 0 {
		f.MaxInSnapshotLogToKeep = 1000
	}
	if f.SnapshotLogsThreshold == 0 {
		f.SnapshotLogsThreshold = 10000
	}
}
